package emissions

import "errors"

var (
	ErrStateNotConfigured  = errors.New("emissions: state not configured")
	ErrMinterNotConfigured = errors.New("emissions: token minter not configured")
	ErrNotBootstrapped     = errors.New("emissions: scheduler not bootstrapped")
	ErrAlreadyBootstrapped = errors.New("emissions: scheduler already bootstrapped")
	ErrAlreadyStarted      = errors.New("emissions: emissions already started")
	ErrCycleNotReady       = errors.New("emissions: cycle duration has not elapsed")
	ErrEmissionExceedsCap  = errors.New("emissions: emission would exceed supply cap")
	ErrCycleNotDistributed = errors.New("emissions: cycle not distributed")
)
