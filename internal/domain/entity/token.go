package entity

import (
	"strconv"
	"strings"
)

// TokenInfo holds the details of a specific token.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Key identifies a token by chain and lower-cased contract address.
func (t TokenInfo) Key() string {
	return strconv.FormatUint(t.ChainID, 10) + ":" + strings.ToLower(t.Address)
}

// CatalogToken is an entry of the market token catalog.
// Platforms maps a chain id (decimal string) to the token's contract address on that chain.
type CatalogToken struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Platforms map[string]string `json:"platforms"`
}

// AddressOn returns the token contract address for the given chain, or "" if the token is not deployed there.
func (t CatalogToken) AddressOn(chainID uint64) string {
	if t.Platforms == nil {
		return ""
	}
	return t.Platforms[strconv.FormatUint(chainID, 10)]
}

// CatalogSnapshot is the state published by the token catalog provider.
type CatalogSnapshot struct {
	Tokens    []CatalogToken `json:"tokens"`
	IsLoading bool           `json:"isLoading"`
	Error     string         `json:"error,omitempty"`
}

// TokenOption is a catalog token as presented in the transfer form's token picker.
type TokenOption struct {
	Token      CatalogToken `json:"token"`
	Address    string       `json:"address,omitempty"`
	Balance    string       `json:"balance,omitempty"`
	Selectable bool         `json:"selectable"`
	Selected   bool         `json:"selected"`
}
