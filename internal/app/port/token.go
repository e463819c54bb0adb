package port

import (
	"context"

	"token_transfer/internal/domain/entity"
)

// TokenListProvider returns the tokens whose balances are resolved on a chain.
type TokenListProvider interface {
	GetTokens(ctx context.Context, netDef entity.NetworkDefinition) ([]entity.TokenInfo, error)
}

// TokenCatalog is the market token catalog used by the token picker.
type TokenCatalog interface {
	List() entity.CatalogSnapshot
	Refetch(ctx context.Context)
}

// BalanceAggregator resolves native and token balances of the connected account.
type BalanceAggregator interface {
	NativeBalance(ctx context.Context, account string) *entity.BalanceInfo
	Refresh(ctx context.Context, account string, chainID uint64) entity.BalanceSnapshot
	Snapshot() entity.BalanceSnapshot
}
