package allocpool

import "errors"

var (
	ErrStateNotConfigured     = errors.New("allocpool: state not configured")
	ErrRoundsNotConfigured    = errors.New("allocpool: round source not configured")
	ErrEmissionsNotConfigured = errors.New("allocpool: emission source not configured")
	ErrRegistryNotConfigured  = errors.New("allocpool: app registry not configured")
	ErrFundsNotConfigured     = errors.New("allocpool: funds not configured")
	ErrSinkNotConfigured      = errors.New("allocpool: rewards sink not configured")
	ErrAppNotFound            = errors.New("allocpool: app not found")
	ErrRoundActive            = errors.New("allocpool: round still active")
	ErrAlreadyClaimed         = errors.New("allocpool: earnings already claimed")
	ErrInsufficientBalance    = errors.New("allocpool: insufficient pool balance")
)
