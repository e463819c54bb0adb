package tokenloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

// TokenFileLoader reads per-network token lists from <dir>/<network identifier>.json.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader.
func NewTokenLoader(tokenDirPath string, logger port.Logger) *TokenFileLoader {
	return &TokenFileLoader{
		tokenDirPath: tokenDirPath,
		logger:       logger,
	}
}

// LoadTokens returns the tokens listed for the network. A missing file yields no tokens and no error.
// Tokens without a chain id inherit the network's; tokens for another chain or without an address are skipped.
func (l *TokenFileLoader) LoadTokens(netDef entity.NetworkDefinition) ([]entity.TokenInfo, error) {
	filePath := filepath.Join(l.tokenDirPath, netDef.Identifier+".json")
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Debug("No local token file for network", "network", netDef.Identifier, "path", filePath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", filePath, err)
	}

	var tokensInFile []entity.TokenInfo
	if err := jsoniter.Unmarshal(data, &tokensInFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens from %s: %w", filePath, err)
	}

	valid := make([]entity.TokenInfo, 0, len(tokensInFile))
	for _, token := range tokensInFile {
		if token.ChainID == 0 {
			token.ChainID = netDef.ChainID
		}
		if token.ChainID != netDef.ChainID {
			l.logger.Warn("Token has mismatched ChainID in file, skipping token.",
				"file", filePath, "token_symbol", token.Symbol, "token_chain_id", token.ChainID, "expected_chain_id", netDef.ChainID)
			continue
		}
		if strings.TrimSpace(token.Address) == "" {
			l.logger.Warn("Token without address in file, skipping token.", "file", filePath, "token_symbol", token.Symbol)
			continue
		}
		valid = append(valid, token)
	}

	l.logger.Info("Loaded local tokens for network", "network", netDef.Identifier, "count", len(valid))
	return valid, nil
}
