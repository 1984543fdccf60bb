package voterrewards

import "errors"

var (
	ErrStateNotConfigured  = errors.New("voterrewards: state not configured")
	ErrCyclesNotConfigured = errors.New("voterrewards: cycle source not configured")
	ErrFundsNotConfigured  = errors.New("voterrewards: funds not configured")
	ErrCycleNotEnded       = errors.New("voterrewards: cycle not ended")
	ErrNothingToClaim      = errors.New("voterrewards: nothing to claim")
	ErrInsufficientBalance = errors.New("voterrewards: insufficient balance")
)
