package service

import (
	"context"
	"strings"
	"sync"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/infrastructure/httpclient"
	"token_transfer/internal/pkg/metrics"
)

// CatalogFetchError is the catalog error text shown when the market list cannot be fetched.
const CatalogFetchError = "Failed to fetch tokens"

// tokenCatalogServiceImpl implements port.TokenCatalog on top of CoinGecko.
type tokenCatalogServiceImpl struct {
	networkProvider port.NetworkDefinitionProvider
	coinGecko       httpclient.CoinGeckoClient
	perPage         int
	logger          port.Logger

	mu       sync.RWMutex
	snapshot entity.CatalogSnapshot
	// fetchMu serialises fetches so a refetch never interleaves with a running one.
	fetchMu sync.Mutex
}

// NewTokenCatalogService creates the token catalog. Call Refetch once at session start.
func NewTokenCatalogService(
	np port.NetworkDefinitionProvider,
	cg httpclient.CoinGeckoClient,
	perPage int,
	l port.Logger,
) port.TokenCatalog {
	if perPage <= 0 {
		perPage = 100
	}
	return &tokenCatalogServiceImpl{
		networkProvider: np,
		coinGecko:       cg,
		perPage:         perPage,
		logger:          l,
		snapshot:        entity.CatalogSnapshot{Tokens: []entity.CatalogToken{}},
	}
}

// List returns the current catalog state.
func (s *tokenCatalogServiceImpl) List() entity.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot
	out.Tokens = make([]entity.CatalogToken, len(s.snapshot.Tokens))
	copy(out.Tokens, s.snapshot.Tokens)
	return out
}

// Refetch loads the top tokens by market cap and their per-chain contract addresses.
// A failed market fetch empties the list and records CatalogFetchError; a failed platform
// fetch keeps the tokens without addresses.
func (s *tokenCatalogServiceImpl) Refetch(ctx context.Context) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.mu.Lock()
	s.snapshot.IsLoading = true
	s.snapshot.Error = ""
	s.mu.Unlock()

	markets, err := s.coinGecko.GetTopMarkets(ctx, s.perPage)
	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues("error").Inc()
		s.logger.Error("Failed to fetch token catalog", "error", err)
		s.publish(entity.CatalogSnapshot{Tokens: []entity.CatalogToken{}, Error: CatalogFetchError})
		return
	}

	platforms := s.platformsByCoinID(ctx)

	tokens := make([]entity.CatalogToken, 0, len(markets))
	for _, m := range markets {
		if m.ID == "" {
			continue
		}
		p := platforms[m.ID]
		if p == nil {
			p = map[string]string{}
		}
		tokens = append(tokens, entity.CatalogToken{
			ID:        m.ID,
			Symbol:    strings.ToUpper(m.Symbol),
			Name:      m.Name,
			Platforms: p,
		})
	}

	metrics.CatalogFetchesTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Token catalog loaded", "count", len(tokens))
	s.publish(entity.CatalogSnapshot{Tokens: tokens})
}

// platformsByCoinID maps coin id -> chain id string -> contract address, limited to supported chains.
func (s *tokenCatalogServiceImpl) platformsByCoinID(ctx context.Context) map[string]map[string]string {
	chainByPlatform := make(map[string]string)
	for _, netDef := range s.networkProvider.GetAllNetworkDefinitions() {
		if netDef.CoinGeckoPlatform != "" {
			chainByPlatform[netDef.CoinGeckoPlatform] = netDef.ChainKey()
		}
	}

	coins, err := s.coinGecko.GetCoinsWithPlatforms(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch token platforms, catalog tokens will have no addresses", "error", err)
		return nil
	}

	out := make(map[string]map[string]string, len(coins))
	for _, coin := range coins {
		for platform, address := range coin.Platforms {
			chainKey, ok := chainByPlatform[platform]
			if !ok || address == "" {
				continue
			}
			if out[coin.ID] == nil {
				out[coin.ID] = make(map[string]string)
			}
			out[coin.ID][chainKey] = address
		}
	}
	return out
}

func (s *tokenCatalogServiceImpl) publish(snapshot entity.CatalogSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.IsLoading = false
	s.snapshot = snapshot
}
