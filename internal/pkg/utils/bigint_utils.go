package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxUnitDigits is the number of decimal digits of the largest uint256.
const maxUnitDigits = 78

var (
	// ErrTooManyDecimals is returned by ParseUnits when the amount is more precise than the token allows.
	ErrTooManyDecimals = errors.New("amount has more decimal places than the token supports")
	// ErrAmountOutOfRange is returned by ParseUnits when the amount in smallest units does not fit a uint256.
	ErrAmountOutOfRange = errors.New("amount exceeds the uint256 range")
)

// FormatBigInt converts a big.Int value in smallest units to a human-readable decimal string.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// ParseUnits converts a human-readable decimal amount into smallest units.
// Example: amount="1.5", decimals=6 => 1500000
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	// Bound the magnitude before scaling so huge exponents never build huge powers of ten.
	exp := int64(d.Exponent()) + int64(decimals)
	intDigits := int64(d.NumDigits()) + exp
	if intDigits > maxUnitDigits {
		return nil, ErrAmountOutOfRange
	}
	if intDigits <= 0 {
		return nil, ErrTooManyDecimals
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, ErrTooManyDecimals
	}
	return scaled.BigInt(), nil
}
