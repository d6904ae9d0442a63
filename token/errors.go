package token

import "errors"

var (
	// ErrZeroAddress marks an operation aimed at the all-zero address.
	ErrZeroAddress = errors.New("token: address is not valid")
	// ErrInvalidAmount marks a nil or negative amount.
	ErrInvalidAmount = errors.New("token: amount is not valid")
	// ErrInsufficientBalance is returned when a debit exceeds the owner balance.
	ErrInsufficientBalance = errors.New("token: transfer amount exceeds balance")
	// ErrInsufficientAllowance is returned when a delegated debit exceeds the
	// spender allowance.
	ErrInsufficientAllowance = errors.New("token: transfer amount exceeds allowance")
	// ErrPermitExpired is returned when a permit deadline has elapsed.
	ErrPermitExpired = errors.New("token: permit expired")
	// ErrPermitInvalid is returned when the recovered signer does not match the
	// claimed owner or the signature cannot be parsed.
	ErrPermitInvalid = errors.New("token: invalid permit signature")
)
