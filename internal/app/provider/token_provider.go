package provider

import (
	"context"
	"sort"
	"strings"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/infrastructure/httpclient"
	networkdefinition "token_transfer/internal/infrastructure/network/definition"

	"github.com/patrickmn/go-cache"
)

// LocalTokenSource supplies locally configured tokens for a network.
type LocalTokenSource interface {
	LoadTokens(netDef entity.NetworkDefinition) ([]entity.TokenInfo, error)
}

type tokenProviderImpl struct {
	remote httpclient.TokenListClient
	local  LocalTokenSource
	logger port.Logger
	// tokensCache holds one merged list per chain for the lifetime of the process.
	tokensCache *cache.Cache
}

// NewTokenProvider creates the token list provider. local may be nil.
func NewTokenProvider(remote httpclient.TokenListClient, local LocalTokenSource, logger port.Logger) port.TokenListProvider {
	return &tokenProviderImpl{
		remote:      remote,
		local:       local,
		logger:      logger,
		tokensCache: cache.New(cache.NoExpiration, 0),
	}
}

// GetTokens returns the merged token list of a network: remote list, then local overrides,
// then the registry's well-known tokens when absent. A failed remote fetch degrades to the
// local and well-known tokens and is retried on the next call.
func (p *tokenProviderImpl) GetTokens(ctx context.Context, netDef entity.NetworkDefinition) ([]entity.TokenInfo, error) {
	cacheKey := netDef.ChainKey()
	if cached, found := p.tokensCache.Get(cacheKey); found {
		p.logger.Debug("Returning cached tokens", "network", netDef.Identifier)
		return cached.([]entity.TokenInfo), nil
	}

	merged := make(map[string]entity.TokenInfo)
	remoteOK := true

	remoteTokens, err := p.remote.GetTokenList(ctx, netDef.ChainID)
	if err != nil {
		remoteOK = false
		p.logger.Warn("Failed to fetch remote token list", "network", netDef.Identifier, "error", err)
	}
	for _, t := range remoteTokens {
		if t.Address == "" || t.Symbol == "" {
			continue
		}
		token := entity.TokenInfo{
			ChainID:  netDef.ChainID,
			Address:  t.Address,
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		}
		merged[token.Key()] = token
	}

	if p.local != nil {
		localTokens, err := p.local.LoadTokens(netDef)
		if err != nil {
			p.logger.Warn("Failed to load local tokens", "network", netDef.Identifier, "error", err)
		}
		for _, token := range localTokens {
			merged[token.Key()] = token
		}
	}

	for _, token := range networkdefinition.WellKnownTokens(netDef) {
		if _, exists := merged[token.Key()]; !exists {
			merged[token.Key()] = token
		}
	}

	tokens := make([]entity.TokenInfo, 0, len(merged))
	for _, token := range merged {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		si, sj := strings.ToUpper(tokens[i].Symbol), strings.ToUpper(tokens[j].Symbol)
		if si != sj {
			return si < sj
		}
		return tokens[i].Key() < tokens[j].Key()
	})

	if remoteOK {
		p.tokensCache.Set(cacheKey, tokens, cache.NoExpiration)
	}
	p.logger.Info("Token list ready", "network", netDef.Identifier, "count", len(tokens), "remote", remoteOK)
	return tokens, nil
}
