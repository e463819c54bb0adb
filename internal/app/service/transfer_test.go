package service

import (
	"errors"
	"testing"
	"time"

	"token_transfer/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ethBalance(value string) *entity.BalanceInfo {
	return &entity.BalanceInfo{Value: wei(value), Decimals: 18, Symbol: "ETH"}
}

func TestValidateTransfer_NativeWithinBalance(t *testing.T) {
	req := entity.TransferRequest{Recipient: testRecipient, Amount: "1.5", Mode: entity.ModeNative}

	v, err := ValidateTransfer(req, ethBalance("2000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.Value.String())
	assert.Equal(t, common.HexToAddress(testRecipient), v.Recipient)
	assert.Equal(t, common.Address{}, v.Token)
}

func TestValidateTransfer_BalanceBoundary(t *testing.T) {
	available := ethBalance("2000000000000000000")

	_, err := ValidateTransfer(entity.TransferRequest{Recipient: testRecipient, Amount: "2", Mode: entity.ModeNative}, available)
	assert.NoError(t, err, "whole balance is transferable")

	_, err = ValidateTransfer(entity.TransferRequest{Recipient: testRecipient, Amount: "2.000000000000000001", Mode: entity.ModeNative}, available)
	assert.ErrorIs(t, err, entity.ErrInsufficientNativeBalance)

	_, err = ValidateTransfer(entity.TransferRequest{Recipient: testRecipient, Amount: "3", Mode: entity.ModeNative}, available)
	assert.ErrorIs(t, err, entity.ErrInsufficientNativeBalance)
}

func TestValidateTransfer_TokenUsesOwnDecimals(t *testing.T) {
	usdc := &entity.BalanceInfo{Value: wei("10000000"), Decimals: 6, Symbol: "USDC"}
	req := entity.TransferRequest{Recipient: testRecipient, Amount: "2.5", Mode: entity.ModeERC20, TokenAddress: testToken}

	v, err := ValidateTransfer(req, usdc)
	require.NoError(t, err)
	assert.Equal(t, "2500000", v.Value.String())
	assert.Equal(t, common.HexToAddress(testToken), v.Token)

	req.Amount = "10.000001"
	_, err = ValidateTransfer(req, usdc)
	assert.ErrorIs(t, err, entity.ErrInsufficientTokenBalance)

	req.Amount = "1.0000001"
	_, err = ValidateTransfer(req, usdc)
	assert.ErrorIs(t, err, entity.ErrInvalidAmount, "more fractional digits than the token has")
}

func TestValidateTransfer_UnknownOrZeroBalance(t *testing.T) {
	native := entity.TransferRequest{Recipient: testRecipient, Amount: "0.1", Mode: entity.ModeNative}
	erc20 := entity.TransferRequest{Recipient: testRecipient, Amount: "0.1", Mode: entity.ModeERC20, TokenAddress: testToken}

	_, err := ValidateTransfer(native, nil)
	assert.ErrorIs(t, err, entity.ErrInsufficientNativeBalance)
	_, err = ValidateTransfer(native, ethBalance("0"))
	assert.ErrorIs(t, err, entity.ErrInsufficientNativeBalance)

	_, err = ValidateTransfer(erc20, nil)
	assert.ErrorIs(t, err, entity.ErrInsufficientTokenBalance)
	_, err = ValidateTransfer(erc20, &entity.BalanceInfo{Decimals: 18})
	assert.ErrorIs(t, err, entity.ErrInsufficientTokenBalance)
}

func TestValidateTransfer_PrecisionDoesNotDependOnBalance(t *testing.T) {
	req := entity.TransferRequest{Recipient: testRecipient, Amount: "1.0000001", Mode: entity.ModeERC20, TokenAddress: testToken}

	for _, available := range []*entity.BalanceInfo{
		{Value: wei("10000000"), Decimals: 6},
		{Value: wei("0"), Decimals: 6},
		{Decimals: 6},
	} {
		_, err := ValidateTransfer(req, available)
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, "balance %v", available.Value)
	}
}

func TestValidateTransfer_ExtremeExponents(t *testing.T) {
	tests := []struct {
		amount string
		want   error
	}{
		{"1e100000000", entity.ErrInsufficientNativeBalance},
		{"1e79", entity.ErrInsufficientNativeBalance},
		{"1e-100000000", entity.ErrInvalidAmount},
		{"1e-19", entity.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			start := time.Now()
			_, err := ValidateTransfer(entity.TransferRequest{Recipient: testRecipient, Amount: tt.amount, Mode: entity.ModeNative}, ethBalance("2000000000000000000"))
			assert.ErrorIs(t, err, tt.want)
			assert.Less(t, time.Since(start), 100*time.Millisecond)
		})
	}
}

func TestValidateTransfer_FirstFailureWins(t *testing.T) {
	available := ethBalance("1000")
	tests := []struct {
		name string
		req  entity.TransferRequest
		want error
	}{
		{"empty recipient and bad amount", entity.TransferRequest{Amount: "abc"}, entity.ErrMissingFields},
		{"empty amount and bad recipient", entity.TransferRequest{Recipient: "nope"}, entity.ErrMissingFields},
		{"blank amount", entity.TransferRequest{Recipient: testRecipient, Amount: "   "}, entity.ErrMissingFields},
		{"bad recipient and bad amount", entity.TransferRequest{Recipient: "nope", Amount: "abc"}, entity.ErrInvalidRecipient},
		{"bad amount and insufficient", entity.TransferRequest{Recipient: testRecipient, Amount: "-5"}, entity.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTransfer(tt.req, available)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateTransfer_InvalidRecipient(t *testing.T) {
	for _, recipient := range []string{
		"742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"0X742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"0x742d35Cc6634C0532925a3b844Bc454e4438f44",
		"0x742d35Cc6634C0532925a3b844Bc454e4438f44e0",
		"0x742d35Cc6634C0532925a3b844Bc454e4438f44g",
		" 0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
	} {
		_, err := ValidateTransfer(entity.TransferRequest{Recipient: recipient, Amount: "1"}, ethBalance("1000000000000000000000"))
		assert.ErrorIs(t, err, entity.ErrInvalidRecipient, recipient)
	}
}

func TestValidateTransfer_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "0.0", "-1", "abc", "1.2.3", "1,5"} {
		_, err := ValidateTransfer(entity.TransferRequest{Recipient: testRecipient, Amount: amount}, ethBalance("1000000000000000000000"))
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, amount)
	}
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		channel FailureChannel
		want    string
	}{
		{"rejection", errors.New("MetaMask: user rejected the request"), ChannelNative, "Transaction was rejected by user"},
		{"rejection on submission", errors.New("user rejected transaction"), ChannelSubmission, "Transaction was rejected by user"},
		{"funds", errors.New("insufficient funds for gas * price + value: balance 0"), ChannelContract, "Insufficient funds for gas * price + value"},
		{"gas", errors.New("gas required exceeds allowance (21000)"), ChannelNative, "Transaction would exceed gas limit"},
		{"rejection wins over funds", errors.New("user rejected: insufficient funds"), ChannelContract, "Transaction was rejected by user"},
		{"submission fallback", errors.New("boom"), ChannelSubmission, "Transaction failed: boom"},
		{"contract fallback", errors.New("execution reverted"), ChannelContract, "Contract error: execution reverted"},
		{"native fallback", errors.New("nonce too low"), ChannelNative, "Transfer error: nonce too low"},
		{"case sensitive", errors.New("User Rejected"), ChannelNative, "Transfer error: User Rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFailure(tt.err, tt.channel))
			// deterministic for the same input
			assert.Equal(t, ClassifyFailure(tt.err, tt.channel), ClassifyFailure(tt.err, tt.channel))
		})
	}
	assert.Empty(t, ClassifyFailure(nil, ChannelNative))
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, ChannelContract, ChannelFor(entity.ModeERC20))
	assert.Equal(t, ChannelNative, ChannelFor(entity.ModeNative))
}

func sampleCatalog() []entity.CatalogToken {
	return []entity.CatalogToken{
		{ID: "tether", Symbol: "USDT", Name: "Tether", Platforms: map[string]string{"1": "0xdAC17F958D2ee523a2206206994597C13D831ec7"}},
		{ID: "usd-coin", Symbol: "USDC", Name: "USD Coin", Platforms: map[string]string{"1": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "100": "0xDDAfbb505ad214D7b80b1f830fcCc89B60fb7A83"}},
		{ID: "weth", Symbol: "WETH", Name: "Wrapped Ether", Platforms: map[string]string{"1": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"}},
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Platforms: map[string]string{}},
	}
}

func TestFilterTokens(t *testing.T) {
	catalog := sampleCatalog()

	got := FilterTokens(catalog, "usd")
	require.Len(t, got, 2)
	assert.Equal(t, "USDT", got[0].Symbol)
	assert.Equal(t, "USDC", got[1].Symbol)

	assert.Len(t, FilterTokens(catalog, ""), len(catalog))
	assert.Len(t, FilterTokens(catalog, "ETHER"), 2, "matches Tether and Wrapped Ether by name")
	assert.Empty(t, FilterTokens(catalog, "doge"))
	assert.Equal(t, sampleCatalog(), catalog, "catalog is not modified")
}

func TestTokenOptions_SelectableOnlyWithPositiveBalance(t *testing.T) {
	balances := []entity.TokenBalance{
		{TokenInfo: entity.TokenInfo{ChainID: 1, Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Decimals: 6}, Amount: wei("5000000"), FormattedBalance: "5"},
		{TokenInfo: entity.TokenInfo{ChainID: 1, Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Decimals: 6}, Amount: wei("0"), FormattedBalance: "0"},
	}

	options := TokenOptions(sampleCatalog(), balances, 1, "0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48")
	require.Len(t, options, 4)

	byID := make(map[string]entity.TokenOption)
	for _, o := range options {
		byID[o.Token.ID] = o
	}
	assert.True(t, byID["usd-coin"].Selectable)
	assert.True(t, byID["usd-coin"].Selected)
	assert.Equal(t, "5", byID["usd-coin"].Balance)
	assert.False(t, byID["tether"].Selectable, "zero balance")
	assert.False(t, byID["weth"].Selectable, "no balance")
	assert.False(t, byID["bitcoin"].Selectable)
	assert.Empty(t, byID["bitcoin"].Address)

	onGnosis := TokenOptions(sampleCatalog(), balances, 100, "")
	for _, o := range onGnosis {
		assert.False(t, o.Selectable, o.Token.ID)
	}
}

func TestSubmitLabel(t *testing.T) {
	assert.Equal(t, "Transfer", SubmitLabel(entity.TransferState{}))
	assert.Equal(t, "Estimating Gas...", SubmitLabel(entity.TransferState{Estimating: true}))
	assert.Equal(t, "Confirming...", SubmitLabel(entity.TransferState{Pending: true}))
	assert.Equal(t, "Processing...", SubmitLabel(entity.TransferState{Confirming: true}))
}
