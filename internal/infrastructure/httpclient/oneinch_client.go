package httpclient

import (
	"context"
	"math/big"

	"token_transfer/internal/entity"
)

// TokenListClient fetches the per-chain token list.
type TokenListClient interface {
	GetTokenList(ctx context.Context, chainID uint64) ([]entity.OneInchToken, error)
}

// BalanceAPIClient fetches a single token balance from a REST balance endpoint.
type BalanceAPIClient interface {
	GetTokenBalance(ctx context.Context, chainID uint64, tokenAddress, walletAddress string) (*big.Int, error)
}
