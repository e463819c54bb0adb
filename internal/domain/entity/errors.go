package entity

import "errors"

// Validation errors. Their text is shown to the user as-is.
var (
	ErrMissingFields             = errors.New("Please fill in all fields")
	ErrInvalidRecipient          = errors.New("Invalid recipient address")
	ErrInvalidAmount             = errors.New("Please enter a valid amount greater than 0")
	ErrInsufficientNativeBalance = errors.New("Insufficient native token balance")
	ErrInsufficientTokenBalance  = errors.New("Insufficient token balance")
)

var (
	// ErrSubmitDisabled is returned when Submit is called while the submit action is disabled.
	ErrSubmitDisabled = errors.New("submit is disabled")
	// ErrNotConnected is returned when no wallet session is connected.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrUserRejected is returned by the signer when the operator declines a transaction.
	ErrUserRejected = errors.New("user rejected the request")
)

// IsValidationError reports whether err is one of the synchronous input validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientNativeBalance) ||
		errors.Is(err, ErrInsufficientTokenBalance)
}
