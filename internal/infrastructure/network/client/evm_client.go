package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

var _ port.BlockchainClient = (*EVMClient)(nil)

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func erc20() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(entity.ERC20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
	return parsedERC20ABI
}

// NewEVMClient dials the network's RPC endpoints in order and returns a client for the first that answers.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout time.Duration, rpcCallTimeout time.Duration) (*EVMClient, error) {
	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		rpcClient, err := rpc.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			return NewEVMClientFromRPC(netDef, rpcClient, rpcCallTimeout), nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// NewEVMClientFromRPC wraps an already dialed JSON-RPC client.
func NewEVMClientFromRPC(netDef entity.NetworkDefinition, rpcClient *rpc.Client, rpcCallTimeout time.Duration) *EVMClient {
	return &EVMClient{
		ethClient:      ethclient.NewClient(rpcClient),
		netDef:         netDef,
		rpcCallTimeout: rpcCallTimeout,
	}
}

// Eth exposes the underlying ethclient for the write side.
func (c *EVMClient) Eth() *ethclient.Client {
	return c.ethClient
}

// GetNativeBalance fetches the native currency balance of a wallet at the latest block.
func (c *EVMClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()
	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance for %s on %s: %w", walletAddress, c.netDef.Name, err)
	}
	return balance, nil
}

func unpackBalance(out []byte) (*big.Int, error) {
	if len(out) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := erc20().Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w. Raw: %s", err, hexutil.Encode(out))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int. Got: %T", unpacked[0])
	}
	return balance, nil
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
// Per-item failures are reported in the item's Error; the returned error is only set when the batch itself fails.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, 0, len(requests))
	elemIndex := make([]int, 0, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{Request: reqItem}
		wallet := common.HexToAddress(reqItem.WalletAddress)

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{wallet, "latest"},
				Result: new(hexutil.Big),
			})
		case entity.TokenBalanceRequest:
			callData, err := erc20().Pack("balanceOf", wallet)
			if err != nil {
				results[i].Error = fmt.Errorf("failed to pack balanceOf for %s: %w", reqItem.Token.Symbol, err)
				continue
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{map[string]interface{}{
					"to":   common.HexToAddress(reqItem.Token.Address),
					"data": hexutil.Bytes(callData),
				}, "latest"},
				Result: new(hexutil.Bytes),
			})
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.Token.Symbol)
			continue
		}
		elemIndex = append(elemIndex, i)
	}

	if len(batchElems) == 0 {
		return results, nil
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for n, elem := range batchElems {
		i := elemIndex[n]
		req := requests[i]
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s balance (wallet %s): %w", req.Token.Symbol, req.WalletAddress, elem.Error)
			continue
		}

		switch result := elem.Result.(type) {
		case *hexutil.Big:
			results[i].Balance = (*big.Int)(result)
		case *hexutil.Bytes:
			balance, err := unpackBalance(*result)
			if err != nil {
				results[i].Error = fmt.Errorf("%s: %w", req.Token.Symbol, err)
				continue
			}
			results[i].Balance = balance
		}

		if results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
		results[i].FormattedBalance = utils.FormatBigInt(results[i].Balance, req.Token.Decimals)
	}
	return results, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}
