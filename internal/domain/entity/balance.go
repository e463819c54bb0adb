package entity

import "math/big"

// BalanceInfo is a balance as reported by the wallet-interaction layer.
type BalanceInfo struct {
	Value     *big.Int `json:"-"`
	Raw       string   `json:"value"`
	Decimals  uint8    `json:"decimals"`
	Symbol    string   `json:"symbol"`
	Formatted string   `json:"formatted"`
}

// IsPositive reports whether the balance is known and greater than zero.
func (b *BalanceInfo) IsPositive() bool {
	return b != nil && b.Value != nil && b.Value.Sign() > 0
}

// TokenBalance represents the amount of a specific token held by the connected account on a network.
type TokenBalance struct {
	TokenInfo
	Amount           *big.Int `json:"-"`
	FormattedBalance string   `json:"balance"`
}

// BalanceSnapshot is the state published by the balance aggregator.
type BalanceSnapshot struct {
	Account   string         `json:"account"`
	ChainID   uint64         `json:"chainId"`
	Native    *BalanceInfo   `json:"native,omitempty"`
	Tokens    []TokenBalance `json:"tokens"`
	IsLoading bool           `json:"isLoading"`
}
