package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"token_transfer/internal/entity"
	"token_transfer/internal/infrastructure/httpclient"

	"go.uber.org/zap"
)

type coinGeckoClientImpl struct {
	rest    restClient
	baseURL string
}

// NewCoinGeckoClient creates a new CoinGecko API client. apiKey is optional (demo/pro key header).
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) httpclient.CoinGeckoClient {
	rest := newRESTClient(timeout, logger.Named("CoinGeckoClient"))
	if apiKey != "" {
		rest.headers["x-cg-demo-api-key"] = apiKey
	}
	return &coinGeckoClientImpl{
		rest:    rest,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetTopMarkets returns the first page of coins ordered by market cap.
func (c *coinGeckoClientImpl) GetTopMarkets(ctx context.Context, perPage int) ([]entity.CoinMarket, error) {
	if perPage <= 0 {
		perPage = 100
	}
	requestURL := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false", c.baseURL, perPage)
	c.rest.logger.Debug("Requesting top markets", zap.String("url", requestURL))

	var markets []entity.CoinMarket
	if err := c.rest.getJSON(ctx, requestURL, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// GetCoinsWithPlatforms returns every listed coin together with its per-platform contract addresses.
func (c *coinGeckoClientImpl) GetCoinsWithPlatforms(ctx context.Context) ([]entity.CoinListItem, error) {
	requestURL := c.baseURL + "/coins/list?include_platform=true"
	c.rest.logger.Debug("Requesting coin list with platforms", zap.String("url", requestURL))

	var coins []entity.CoinListItem
	if err := c.rest.getJSON(ctx, requestURL, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}
