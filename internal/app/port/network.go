package port

import (
	"context"
	"math/big"

	"token_transfer/internal/domain/entity"
)

// BlockchainClient defines the read side of a blockchain network connection.
type BlockchainClient interface {
	// GetNativeBalance fetches the native currency balance (e.g., ETH, xDAI) for a wallet.
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// GetBalances resolves several native/token balances in one JSON-RPC batch.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// WalletClient is the wallet-interaction boundary used by the transfer workflow.
// Every method is an opaque asynchronous operation returning a result or a failure
// whose message is meant to be classified, never parsed further.
type WalletClient interface {
	NativeBalance(ctx context.Context, account string) (*entity.BalanceInfo, error)
	TokenBalance(ctx context.Context, account string, token string) (*entity.BalanceInfo, error)
	SendValue(ctx context.Context, to string, value *big.Int) (string, error)
	WriteContract(ctx context.Context, call entity.ContractCall) (string, error)
	WaitForReceipt(ctx context.Context, hash string) (*entity.Receipt, error)
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all supported network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByChainID returns a network definition by its chain id.
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)

	// NativeSymbol returns the native token symbol for a chain, or "Unknown".
	NativeSymbol(chainID uint64) string
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
