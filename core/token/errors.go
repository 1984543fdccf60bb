package token

import "errors"

var (
	ErrStateNotConfigured  = errors.New("token: state not configured")
	ErrZeroAddress         = errors.New("token: zero address")
	ErrInvalidAmount       = errors.New("token: amount must be positive")
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	ErrCapExceeded         = errors.New("token: mint would exceed supply cap")
	ErrFutureLookup        = errors.New("token: timepoint not yet mined")
	ErrMintNotAuthorized   = errors.New("token: caller may not mint")
)
