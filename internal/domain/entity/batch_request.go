package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the balance of a specific token for a wallet.
	TokenBalanceRequest
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem is a single lookup in a JSON-RPC balance batch.
type BalanceRequestItem struct {
	Type          BalanceRequestType
	WalletAddress string
	Token         TokenInfo
}

// BalanceResultItem is the outcome of one BalanceRequestItem.
type BalanceResultItem struct {
	Request          BalanceRequestItem
	Balance          *big.Int
	FormattedBalance string
	Error            error
}
