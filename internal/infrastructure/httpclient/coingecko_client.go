package httpclient

import (
	"context"

	"token_transfer/internal/entity"
)

// CoinGeckoClient defines the interface for interacting with the CoinGecko API.
type CoinGeckoClient interface {
	GetTopMarkets(ctx context.Context, perPage int) ([]entity.CoinMarket, error)
	GetCoinsWithPlatforms(ctx context.Context) ([]entity.CoinListItem, error)
}
