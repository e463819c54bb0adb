package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"token_transfer/internal/domain/entity"
	networkdefinition "token_transfer/internal/infrastructure/network/definition"
	"token_transfer/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rpcWallet        = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	rpcTokenOK       = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	rpcTokenReverts  = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	rpcTokenNoReturn = "0x6b175474e89094c44da98b954eedeac495271d0f"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// newRPCNode serves eth_getBalance and eth_call, batched or single.
func newRPCNode(t *testing.T, batches *atomic.Int32) *httptest.Server {
	t.Helper()
	balanceWord, err := erc20().Methods["balanceOf"].Outputs.Pack(hexutil.MustDecodeBig("0x2625a0"))
	require.NoError(t, err)

	answer := func(req rpcRequest) rpcResponse {
		resp := rpcResponse{Version: "2.0", ID: req.ID}
		switch req.Method {
		case "eth_getBalance":
			resp.Result = "0xde0b6b3a7640000"
		case "eth_call":
			var call struct {
				To   string `json:"to"`
				Data string `json:"data"`
			}
			_ = json.Unmarshal(req.Params[0], &call)
			switch strings.ToLower(call.To) {
			case rpcTokenOK:
				resp.Result = hexutil.Encode(balanceWord)
			case rpcTokenReverts:
				resp.Error = &rpcError{Code: 3, Message: "execution reverted"}
			default:
				resp.Result = "0x"
			}
		default:
			resp.Error = &rpcError{Code: -32601, Message: "method not found"}
		}
		return resp
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if !assert.NoError(t, err) {
			return
		}
		w.Header().Set("Content-Type", "application/json")

		if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
			if batches != nil {
				batches.Add(1)
			}
			var reqs []rpcRequest
			if !assert.NoError(t, json.Unmarshal(body, &reqs)) {
				return
			}
			out := make([]rpcResponse, 0, len(reqs))
			for _, req := range reqs {
				out = append(out, answer(req))
			}
			_ = json.NewEncoder(w).Encode(out)
			return
		}

		var req rpcRequest
		if !assert.NoError(t, json.Unmarshal(body, &req)) {
			return
		}
		_ = json.NewEncoder(w).Encode(answer(req))
	}))
}

func newTestEVMClient(t *testing.T, url string) *EVMClient {
	t.Helper()
	rpcClient, err := rpc.DialContext(context.Background(), url)
	require.NoError(t, err)
	c := NewEVMClientFromRPC(networkdefinition.Ethereum, rpcClient, 2*time.Second)
	t.Cleanup(c.ethClient.Close)
	return c
}

func TestEVMClient_GetBalances(t *testing.T) {
	var batches atomic.Int32
	srv := newRPCNode(t, &batches)
	defer srv.Close()
	c := newTestEVMClient(t, srv.URL)

	requests := []entity.BalanceRequestItem{
		{Type: entity.NativeBalanceRequest, WalletAddress: rpcWallet, Token: entity.TokenInfo{Symbol: "ETH", Decimals: 18}},
		{Type: entity.TokenBalanceRequest, WalletAddress: rpcWallet, Token: entity.TokenInfo{Address: rpcTokenOK, Symbol: "USDC", Decimals: 6}},
		{Type: entity.TokenBalanceRequest, WalletAddress: rpcWallet, Token: entity.TokenInfo{Address: rpcTokenReverts, Symbol: "USDT", Decimals: 6}},
		{Type: entity.TokenBalanceRequest, WalletAddress: rpcWallet, Token: entity.TokenInfo{Address: rpcTokenNoReturn, Symbol: "DAI", Decimals: 18}},
		{Type: entity.BalanceRequestType(42), WalletAddress: rpcWallet, Token: entity.TokenInfo{Symbol: "???"}},
	}

	results, err := c.GetBalances(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, results, len(requests))
	assert.Equal(t, int32(1), batches.Load(), "one batch round trip")

	for i, r := range results {
		assert.Equal(t, requests[i].Token.Symbol, r.Request.Token.Symbol, "results keep request order")
	}

	require.NoError(t, results[0].Error)
	assert.Equal(t, "1000000000000000000", results[0].Balance.String())
	assert.Equal(t, "1", results[0].FormattedBalance)

	require.NoError(t, results[1].Error)
	assert.Equal(t, "2500000", results[1].Balance.String())
	assert.Equal(t, "2.5", results[1].FormattedBalance)

	require.Error(t, results[2].Error)
	assert.Contains(t, results[2].Error.Error(), "failed to fetch USDT balance")
	assert.Contains(t, results[2].Error.Error(), "execution reverted")
	assert.Nil(t, results[2].Balance)

	require.NoError(t, results[3].Error)
	assert.Equal(t, "0", results[3].Balance.String(), "empty return data reads as zero")

	assert.ErrorContains(t, results[4].Error, "unknown balance request type")
}

func TestEVMClient_GetBalancesEmpty(t *testing.T) {
	var batches atomic.Int32
	srv := newRPCNode(t, &batches)
	defer srv.Close()
	c := newTestEVMClient(t, srv.URL)

	results, err := c.GetBalances(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, batches.Load())
}

func TestEVMClient_GetBalancesBatchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newTestEVMClient(t, srv.URL)

	_, err := c.GetBalances(context.Background(), []entity.BalanceRequestItem{
		{Type: entity.NativeBalanceRequest, WalletAddress: rpcWallet, Token: entity.TokenInfo{Symbol: "ETH", Decimals: 18}},
	})
	assert.ErrorContains(t, err, "RPC batch call failed")
}

func TestEVMClient_SingleCalls(t *testing.T) {
	srv := newRPCNode(t, nil)
	defer srv.Close()
	c := newTestEVMClient(t, srv.URL)

	native, err := c.GetNativeBalance(context.Background(), rpcWallet)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", native.String())

	assert.Equal(t, uint64(1), c.Definition().ChainID)
}

func TestEVMClientProvider_FallsBackAndCaches(t *testing.T) {
	srv := newRPCNode(t, nil)
	defer srv.Close()

	netDef := networkdefinition.Sepolia
	netDef.PrimaryRPCURL = "bogus://node"
	netDef.FallbackRPCURLs = []string{srv.URL}

	p := NewEVMClientProvider(time.Second, logger.NewNop())
	defer p.Close()

	first, err := p.GetEVMClient(netDef)
	require.NoError(t, err)
	second, err := p.GetClient(netDef)
	require.NoError(t, err)
	assert.Same(t, first, second)

	balance, err := first.GetNativeBalance(context.Background(), common.HexToAddress(rpcWallet).Hex())
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())
}

func TestEVMClientProvider_AllEndpointsFail(t *testing.T) {
	netDef := networkdefinition.Gnosis
	netDef.PrimaryRPCURL = "bogus://node"
	netDef.FallbackRPCURLs = nil

	p := NewEVMClientProvider(time.Second, logger.NewNop())
	_, err := p.GetClient(netDef)
	assert.ErrorContains(t, err, "all RPC connection attempts failed")
}
