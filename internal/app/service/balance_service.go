package service

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/infrastructure/httpclient"
	"token_transfer/internal/pkg/metrics"
	"token_transfer/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BalanceServiceImpl implements port.BalanceAggregator.
type BalanceServiceImpl struct {
	networkProvider port.NetworkDefinitionProvider
	tokenProvider   port.TokenListProvider
	clientProvider  port.BlockchainClientProvider
	balanceAPI      httpclient.BalanceAPIClient
	limiter         *rate.Limiter
	maxConcurrent   int
	logger          port.Logger

	mu         sync.RWMutex
	chainID    uint64
	snapshot   entity.BalanceSnapshot
	generation uint64
}

var _ port.BalanceAggregator = (*BalanceServiceImpl)(nil)

// NewBalanceService creates the balance aggregator for the given chain.
// requestsPerSecond bounds calls to the balance API; maxConcurrent bounds in-flight lookups.
func NewBalanceService(
	np port.NetworkDefinitionProvider,
	tp port.TokenListProvider,
	cp port.BlockchainClientProvider,
	balanceAPI httpclient.BalanceAPIClient,
	chainID uint64,
	requestsPerSecond int,
	maxConcurrent int,
	l port.Logger,
) *BalanceServiceImpl {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &BalanceServiceImpl{
		networkProvider: np,
		tokenProvider:   tp,
		clientProvider:  cp,
		balanceAPI:      balanceAPI,
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		maxConcurrent:   maxConcurrent,
		logger:          l,
		chainID:         chainID,
		snapshot:        entity.BalanceSnapshot{ChainID: chainID, Tokens: []entity.TokenBalance{}},
	}
}

// NativeBalance returns the native balance of account on the current chain, or nil when it cannot be resolved.
func (s *BalanceServiceImpl) NativeBalance(ctx context.Context, account string) *entity.BalanceInfo {
	if account == "" {
		return nil
	}
	s.mu.RLock()
	chainID := s.chainID
	s.mu.RUnlock()

	netDef, ok := s.networkProvider.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		return nil
	}
	client, err := s.clientProvider.GetClient(netDef)
	if err != nil {
		s.logger.Warn("No client for native balance", "network", netDef.Name, "error", err)
		return nil
	}
	value, err := client.GetNativeBalance(ctx, account)
	if err != nil {
		s.logger.Warn("Failed to fetch native balance", "network", netDef.Name, "account", account, "error", err)
		return nil
	}
	return nativeInfo(netDef, value)
}

// Snapshot returns the last published balances.
func (s *BalanceServiceImpl) Snapshot() entity.BalanceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snapshot)
}

// Refresh resolves the native balance and every listed token balance of account on chainID,
// publishes the result and returns it. Only the most recent refresh may publish.
func (s *BalanceServiceImpl) Refresh(ctx context.Context, account string, chainID uint64) entity.BalanceSnapshot {
	start := time.Now()
	defer func() { metrics.BalanceRefreshSeconds.Observe(time.Since(start).Seconds()) }()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.chainID = chainID
	s.snapshot = entity.BalanceSnapshot{
		Account:   account,
		ChainID:   chainID,
		Tokens:    s.snapshot.Tokens,
		Native:    s.snapshot.Native,
		IsLoading: true,
	}
	s.mu.Unlock()

	result := s.resolve(ctx, account, chainID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("Dropping stale balance refresh", "account", account, "chainID", chainID)
		return copySnapshot(result)
	}
	s.snapshot = result
	return copySnapshot(result)
}

func (s *BalanceServiceImpl) resolve(ctx context.Context, account string, chainID uint64) entity.BalanceSnapshot {
	result := entity.BalanceSnapshot{Account: account, ChainID: chainID, Tokens: []entity.TokenBalance{}}
	if account == "" {
		return result
	}

	netDef, ok := s.networkProvider.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		s.logger.Warn("Balance refresh for unsupported chain", "chainID", chainID)
		return result
	}

	tokens, err := s.tokenProvider.GetTokens(ctx, netDef)
	if err != nil {
		s.logger.Warn("Failed to get token list", "network", netDef.Name, "error", err)
	}

	wellKnown := make(map[string]struct{}, len(netDef.WellKnownTokens))
	for _, addr := range netDef.WellKnownTokens {
		wellKnown[strings.ToLower(addr)] = struct{}{}
	}

	var direct, viaAPI []entity.TokenInfo
	for _, token := range tokens {
		if _, ok := wellKnown[strings.ToLower(token.Address)]; ok {
			direct = append(direct, token)
		} else {
			viaAPI = append(viaAPI, token)
		}
	}

	var (
		mu       sync.Mutex
		balances []entity.TokenBalance
	)
	native, directBalances, fallback := s.resolveDirect(ctx, netDef, account, direct)
	result.Native = native
	balances = append(balances, directBalances...)
	viaAPI = append(viaAPI, fallback...)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)
	for _, token := range viaAPI {
		eg.Go(func() error {
			if err := s.limiter.Wait(egCtx); err != nil {
				return nil
			}
			amount, err := s.balanceAPI.GetTokenBalance(egCtx, netDef.ChainID, token.Address, account)
			if err != nil {
				metrics.BalanceLookupsTotal.WithLabelValues("api", "error").Inc()
				s.logger.Debug("Failed to fetch token balance", "token", token.Symbol, "address", token.Address, "error", err)
				return nil
			}
			metrics.BalanceLookupsTotal.WithLabelValues("api", "ok").Inc()
			if amount.Sign() <= 0 {
				return nil
			}
			mu.Lock()
			balances = append(balances, entity.TokenBalance{
				TokenInfo:        token,
				Amount:           amount,
				FormattedBalance: utils.FormatBigInt(amount, token.Decimals),
			})
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	sortBalances(balances)
	if balances != nil {
		result.Tokens = balances
	}
	s.logger.Info("Balances refreshed", "network", netDef.Name, "account", account, "tokens", len(tokens), "nonZero", len(result.Tokens))
	return result
}

// resolveDirect reads the native balance and the well-known token balances in one JSON-RPC batch.
// Tokens whose lookup failed are returned for the API fallback.
func (s *BalanceServiceImpl) resolveDirect(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	account string,
	tokens []entity.TokenInfo,
) (*entity.BalanceInfo, []entity.TokenBalance, []entity.TokenInfo) {
	client, err := s.clientProvider.GetClient(netDef)
	if err != nil {
		s.logger.Warn("RPC client unavailable, using balance API only", "network", netDef.Name, "error", err)
		return nil, nil, tokens
	}

	requests := make([]entity.BalanceRequestItem, 0, len(tokens)+1)
	requests = append(requests, entity.BalanceRequestItem{
		Type:          entity.NativeBalanceRequest,
		WalletAddress: account,
		Token: entity.TokenInfo{
			ChainID:  netDef.ChainID,
			Address:  entity.ZeroAddress,
			Symbol:   netDef.NativeSymbol,
			Decimals: netDef.Decimals,
		},
	})
	for _, token := range tokens {
		requests = append(requests, entity.BalanceRequestItem{Type: entity.TokenBalanceRequest, WalletAddress: account, Token: token})
	}

	results, err := client.GetBalances(ctx, requests)
	if err != nil {
		metrics.BalanceLookupsTotal.WithLabelValues("rpc", "error").Add(float64(len(requests)))
		s.logger.Warn("Batch balance call failed", "network", netDef.Name, "error", err)
		return nil, nil, tokens
	}

	var (
		native   *entity.BalanceInfo
		balances []entity.TokenBalance
		fallback []entity.TokenInfo
	)
	for _, res := range results {
		if res.Error != nil {
			metrics.BalanceLookupsTotal.WithLabelValues("rpc", "error").Inc()
			s.logger.Debug("Direct balance lookup failed", "token", res.Request.Token.Symbol, "error", res.Error)
			if res.Request.Type == entity.TokenBalanceRequest {
				fallback = append(fallback, res.Request.Token)
			}
			continue
		}
		metrics.BalanceLookupsTotal.WithLabelValues("rpc", "ok").Inc()

		if res.Request.Type == entity.NativeBalanceRequest {
			native = nativeInfo(netDef, res.Balance)
			continue
		}
		if res.Balance == nil || res.Balance.Sign() <= 0 {
			continue
		}
		balances = append(balances, entity.TokenBalance{
			TokenInfo:        res.Request.Token,
			Amount:           res.Balance,
			FormattedBalance: res.FormattedBalance,
		})
	}
	return native, balances, fallback
}

func nativeInfo(netDef entity.NetworkDefinition, value *big.Int) *entity.BalanceInfo {
	if value == nil {
		value = big.NewInt(0)
	}
	return &entity.BalanceInfo{
		Value:     value,
		Raw:       value.String(),
		Decimals:  netDef.Decimals,
		Symbol:    netDef.NativeSymbol,
		Formatted: utils.FormatBigInt(value, netDef.Decimals),
	}
}

func sortBalances(balances []entity.TokenBalance) {
	sort.Slice(balances, func(i, j int) bool {
		si, sj := strings.ToUpper(balances[i].Symbol), strings.ToUpper(balances[j].Symbol)
		if si != sj {
			return si < sj
		}
		return strings.ToLower(balances[i].Address) < strings.ToLower(balances[j].Address)
	})
}

func copySnapshot(s entity.BalanceSnapshot) entity.BalanceSnapshot {
	out := s
	out.Tokens = make([]entity.TokenBalance, len(s.Tokens))
	copy(out.Tokens, s.Tokens)
	return out
}
