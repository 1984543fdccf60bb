package governance

import "errors"

var (
	ErrStateNotConfigured    = errors.New("governance: state not configured")
	ErrTokenNotConfigured    = errors.New("governance: voting token not configured")
	ErrRoundsNotConfigured   = errors.New("governance: round source not configured")
	ErrProposalNotFound      = errors.New("governance: proposal not found")
	ErrProposalExists        = errors.New("governance: proposal already exists")
	ErrProposalNotActive     = errors.New("governance: proposal not active")
	ErrAlreadyVoted          = errors.New("governance: voter already cast a vote on this proposal")
	ErrInvalidSupport        = errors.New("governance: invalid vote support")
	ErrBelowVotingThreshold  = errors.New("governance: voting power below threshold")
	ErrPersonhoodCheckFailed = errors.New("governance: personhood attestation failed")
	ErrWrongProposalState    = errors.New("governance: proposal in wrong state")
	ErrTimelockNotConfigured = errors.New("governance: timelock not configured")
	ErrDepositTooSmall       = errors.New("governance: deposit must be positive")
	ErrNothingToWithdraw     = errors.New("governance: no deposit to withdraw")
	ErrInvalidPayload        = errors.New("governance: invalid proposal payload")
)
