package identity

import "errors"

var (
	ErrStateNotConfigured = errors.New("identity: state not configured")
	ErrZeroAddress        = errors.New("identity: zero address")
	ErrNoSelectedToken    = errors.New("identity: no selected token")
	ErrInvalidLevel       = errors.New("identity: invalid level")
)
