package client

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"token_transfer/internal/entity"
	"token_transfer/internal/infrastructure/httpclient"

	"go.uber.org/zap"
)

// OneInchClient talks to the 1inch token list and balance endpoints.
type OneInchClient struct {
	rest             restClient
	tokenListBaseURL string
	balanceBaseURL   string
}

var (
	_ httpclient.TokenListClient  = (*OneInchClient)(nil)
	_ httpclient.BalanceAPIClient = (*OneInchClient)(nil)
)

// NewOneInchClient creates a new OneInchClient. apiKey is optional.
func NewOneInchClient(tokenListBaseURL, balanceBaseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *OneInchClient {
	rest := newRESTClient(timeout, logger.Named("OneInchClient"))
	if apiKey != "" {
		rest.headers["Authorization"] = "Bearer " + apiKey
	}
	return &OneInchClient{
		rest:             rest,
		tokenListBaseURL: strings.TrimRight(tokenListBaseURL, "/"),
		balanceBaseURL:   strings.TrimRight(balanceBaseURL, "/"),
	}
}

// GetTokenList returns the tokens listed for a chain. An absent or empty "tokens" object yields an empty list.
func (c *OneInchClient) GetTokenList(ctx context.Context, chainID uint64) ([]entity.OneInchToken, error) {
	requestURL := fmt.Sprintf("%s/v1.2/%d/tokens.json", c.tokenListBaseURL, chainID)
	c.rest.logger.Debug("Requesting token list", zap.String("url", requestURL))

	var list entity.OneInchTokenList
	if err := c.rest.getJSON(ctx, requestURL, &list); err != nil {
		return nil, err
	}

	tokens := make([]entity.OneInchToken, 0, len(list.Tokens))
	for addr, token := range list.Tokens {
		if token.Address == "" {
			token.Address = addr
		}
		tokens = append(tokens, token)
	}
	c.rest.logger.Debug("Token list received", zap.Uint64("chainID", chainID), zap.Int("count", len(tokens)))
	return tokens, nil
}

// GetTokenBalance returns the balance of tokenAddress held by walletAddress, in the token's smallest unit.
func (c *OneInchClient) GetTokenBalance(ctx context.Context, chainID uint64, tokenAddress, walletAddress string) (*big.Int, error) {
	query := url.Values{}
	query.Set("tokenAddress", tokenAddress)
	query.Set("walletAddress", walletAddress)
	requestURL := fmt.Sprintf("%s/v5.0/%d/balance?%s", c.balanceBaseURL, chainID, query.Encode())

	var body entity.OneInchBalance
	if err := c.rest.getJSON(ctx, requestURL, &body); err != nil {
		return nil, err
	}

	balance, ok := new(big.Int).SetString(strings.TrimSpace(body.Balance), 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q for token %s", body.Balance, tokenAddress)
	}
	return balance, nil
}
