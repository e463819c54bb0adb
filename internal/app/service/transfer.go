package service

import (
	"errors"
	"regexp"
	"strings"

	"token_transfer/internal/domain/entity"
	"token_transfer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// recipientPattern requires the 0x prefix, unlike common.IsHexAddress.
var recipientPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// FailureChannel identifies where a transfer failure was reported.
type FailureChannel int

const (
	// ChannelSubmission covers failures raised while preparing a submission.
	ChannelSubmission FailureChannel = iota
	// ChannelContract covers ERC-20 contract-write and receipt failures.
	ChannelContract
	// ChannelNative covers native value-transfer and receipt failures.
	ChannelNative
)

// ChannelFor returns the asynchronous failure channel of a token mode.
func ChannelFor(mode entity.TokenMode) FailureChannel {
	if mode == entity.ModeERC20 {
		return ChannelContract
	}
	return ChannelNative
}

var failurePrefixes = map[FailureChannel]string{
	ChannelSubmission: "Transaction failed: ",
	ChannelContract:   "Contract error: ",
	ChannelNative:     "Transfer error: ",
}

// ClassifyFailure maps a wallet failure to the message shown to the user.
// The known causes are matched on the failure text, first match wins, on every channel.
func ClassifyFailure(err error, channel FailureChannel) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "user rejected"):
		return "Transaction was rejected by user"
	case strings.Contains(msg, "insufficient funds"):
		return "Insufficient funds for gas * price + value"
	case strings.Contains(msg, "gas required exceeds allowance"):
		return "Transaction would exceed gas limit"
	}
	prefix, ok := failurePrefixes[channel]
	if !ok {
		prefix = failurePrefixes[ChannelSubmission]
	}
	return prefix + msg
}

// ValidateTransfer checks a request against the available balance of the selected token.
// Checks run in order and the first failure is returned: missing fields, recipient format,
// positive amount, then amount in smallest units not above the available balance.
// A nil or valueless available balance fails the balance check. The precision check runs
// whenever the token decimals are known, so it does not depend on the balance.
func ValidateTransfer(req entity.TransferRequest, available *entity.BalanceInfo) (entity.ValidatedTransfer, error) {
	recipient := req.Recipient
	amount := strings.TrimSpace(req.Amount)

	if recipient == "" || amount == "" {
		return entity.ValidatedTransfer{}, entity.ErrMissingFields
	}
	if !recipientPattern.MatchString(recipient) {
		return entity.ValidatedTransfer{}, entity.ErrInvalidRecipient
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil || !parsed.IsPositive() {
		return entity.ValidatedTransfer{}, entity.ErrInvalidAmount
	}

	insufficient := entity.ErrInsufficientNativeBalance
	if req.Mode == entity.ModeERC20 {
		insufficient = entity.ErrInsufficientTokenBalance
	}
	if available == nil {
		return entity.ValidatedTransfer{}, insufficient
	}

	// More fractional digits than the token has cannot be represented in smallest units.
	value, err := utils.ParseUnits(amount, available.Decimals)
	switch {
	case errors.Is(err, utils.ErrAmountOutOfRange):
		return entity.ValidatedTransfer{}, insufficient
	case err != nil:
		return entity.ValidatedTransfer{}, entity.ErrInvalidAmount
	}
	if !available.IsPositive() || value.Cmp(available.Value) > 0 {
		return entity.ValidatedTransfer{}, insufficient
	}

	validated := entity.ValidatedTransfer{
		Request:   req,
		Recipient: common.HexToAddress(recipient),
		Value:     value,
	}
	if req.Mode == entity.ModeERC20 {
		validated.Token = common.HexToAddress(req.TokenAddress)
	}
	return validated, nil
}

// FilterTokens returns the catalog tokens whose symbol or name contains query, ignoring case.
// An empty query matches every token. The catalog is not modified.
func FilterTokens(catalog []entity.CatalogToken, query string) []entity.CatalogToken {
	q := strings.ToLower(query)
	out := make([]entity.CatalogToken, 0, len(catalog))
	for _, token := range catalog {
		if strings.Contains(strings.ToLower(token.Symbol), q) || strings.Contains(strings.ToLower(token.Name), q) {
			out = append(out, token)
		}
	}
	return out
}

// TokenOptions presents catalog tokens for the token picker on chainID.
// A token is selectable only when balances hold a positive amount for its address on that chain.
func TokenOptions(catalog []entity.CatalogToken, balances []entity.TokenBalance, chainID uint64, selected string) []entity.TokenOption {
	byAddress := make(map[string]entity.TokenBalance, len(balances))
	for _, b := range balances {
		byAddress[strings.ToLower(b.Address)] = b
	}

	options := make([]entity.TokenOption, 0, len(catalog))
	for _, token := range catalog {
		opt := entity.TokenOption{Token: token, Address: token.AddressOn(chainID)}
		if opt.Address != "" {
			if b, ok := byAddress[strings.ToLower(opt.Address)]; ok {
				opt.Balance = b.FormattedBalance
				opt.Selectable = b.Amount != nil && b.Amount.Sign() > 0
			}
			opt.Selected = selected != "" && strings.EqualFold(selected, opt.Address)
		}
		options = append(options, opt)
	}
	return options
}

// SubmitLabel is the text of the submit action for the given in-flight flags.
func SubmitLabel(state entity.TransferState) string {
	switch {
	case state.Estimating:
		return "Estimating Gas..."
	case state.Pending:
		return "Confirming..."
	case state.Confirming:
		return "Processing..."
	default:
		return "Transfer"
	}
}
