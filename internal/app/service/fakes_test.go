package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	apientity "token_transfer/internal/entity"
)

const (
	testAccount   = "0x1111111111111111111111111111111111111111"
	testRecipient = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testToken     = "0x2222222222222222222222222222222222222222"
	testHash      = "0xabc0000000000000000000000000000000000000000000000000000000000001"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big int " + s)
	}
	return v
}

type fakeSession struct {
	session entity.Session
}

func (f fakeSession) Session() entity.Session { return f.session }

func connectedSession(chainID uint64) fakeSession {
	return fakeSession{session: entity.Session{Account: testAccount, ChainID: chainID, NativeSymbol: "ETH", Connected: true}}
}

// fakeWallet records dispatches. Receipts are delivered through the receipts channel.
type fakeWallet struct {
	mu sync.Mutex

	native    *entity.BalanceInfo
	nativeErr error
	tokens    map[string]*entity.BalanceInfo
	tokenErr  error

	sendErr   error
	writeErr  error
	sendHook  func()
	sends     []*big.Int
	sendTo    []string
	writes    []entity.ContractCall
	receipts  chan *entity.Receipt
	waitCalls int
}

var _ port.WalletClient = (*fakeWallet)(nil)

func newFakeWallet() *fakeWallet {
	return &fakeWallet{
		tokens:   make(map[string]*entity.BalanceInfo),
		receipts: make(chan *entity.Receipt, 1),
	}
}

func (f *fakeWallet) NativeBalance(context.Context, string) (*entity.BalanceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.native, f.nativeErr
}

func (f *fakeWallet) TokenBalance(_ context.Context, _ string, token string) (*entity.BalanceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return f.tokens[strings.ToLower(token)], nil
}

func (f *fakeWallet) SendValue(_ context.Context, to string, value *big.Int) (string, error) {
	f.mu.Lock()
	f.sends = append(f.sends, value)
	f.sendTo = append(f.sendTo, to)
	hook, err := f.sendHook, f.sendErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return "", err
	}
	return testHash, nil
}

func (f *fakeWallet) WriteContract(_ context.Context, call entity.ContractCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, call)
	if f.writeErr != nil {
		return "", f.writeErr
	}
	return testHash, nil
}

func (f *fakeWallet) WaitForReceipt(ctx context.Context, _ string) (*entity.Receipt, error) {
	f.mu.Lock()
	f.waitCalls++
	f.mu.Unlock()
	select {
	case r := <-f.receipts:
		if r == nil {
			return nil, errors.New("receipt lookup failed")
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeWallet) dispatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends) + len(f.writes)
}

func (f *fakeWallet) waitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waitCalls
}

// fakeChainClient serves balances from maps keyed by lower-cased token address.
type fakeChainClient struct {
	netDef   entity.NetworkDefinition
	native   *big.Int
	balances map[string]*big.Int
	failing  map[string]bool
	batchErr error

	mu      sync.Mutex
	batches [][]entity.BalanceRequestItem
}

var _ port.BlockchainClient = (*fakeChainClient)(nil)

func (f *fakeChainClient) GetNativeBalance(context.Context, string) (*big.Int, error) {
	if f.native == nil {
		return nil, errors.New("rpc down")
	}
	return f.native, nil
}

func (f *fakeChainClient) GetBalances(_ context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	f.mu.Lock()
	f.batches = append(f.batches, requests)
	f.mu.Unlock()
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	results := make([]entity.BalanceResultItem, 0, len(requests))
	for _, req := range requests {
		res := entity.BalanceResultItem{Request: req}
		switch {
		case req.Type == entity.NativeBalanceRequest:
			res.Balance = f.native
		case f.failing[strings.ToLower(req.Token.Address)]:
			res.Error = errors.New("execution reverted")
		default:
			res.Balance = f.balances[strings.ToLower(req.Token.Address)]
			if res.Balance == nil {
				res.Balance = big.NewInt(0)
			}
		}
		if res.Balance != nil {
			res.FormattedBalance = res.Balance.String()
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeChainClient) Definition() entity.NetworkDefinition { return f.netDef }

type fakeClientProvider struct {
	client port.BlockchainClient
	err    error
}

func (f fakeClientProvider) GetClient(entity.NetworkDefinition) (port.BlockchainClient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type fakeTokenList struct {
	tokens []entity.TokenInfo
	err    error
}

func (f fakeTokenList) GetTokens(context.Context, entity.NetworkDefinition) ([]entity.TokenInfo, error) {
	return f.tokens, f.err
}

// fakeBalanceAPI serves balances keyed by lower-cased token address.
type fakeBalanceAPI struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	errs     map[string]error
	calls    []string
}

func (f *fakeBalanceAPI) GetTokenBalance(_ context.Context, _ uint64, token, _ string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(token)
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if b, ok := f.balances[key]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeBalanceAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCoinGecko struct {
	markets    []apientity.CoinMarket
	marketsErr error
	coins      []apientity.CoinListItem
	coinsErr   error
}

func (f fakeCoinGecko) GetTopMarkets(context.Context, int) ([]apientity.CoinMarket, error) {
	return f.markets, f.marketsErr
}

func (f fakeCoinGecko) GetCoinsWithPlatforms(context.Context) ([]apientity.CoinListItem, error) {
	return f.coins, f.coinsErr
}
