package allocation

import "errors"

var (
	ErrStateNotConfigured = errors.New("allocation: state not configured")
	ErrTokenNotConfigured = errors.New("allocation: voting token not configured")
	ErrRoundNotFound      = errors.New("allocation: round not found")
	ErrRoundNotActive     = errors.New("allocation: round not active")
	ErrRoundStillActive   = errors.New("allocation: round still active")
	ErrAlreadyVoted       = errors.New("allocation: voter already cast a ballot in this round")
	ErrAppNotEligible     = errors.New("allocation: app not eligible in this round")
	ErrBelowThreshold     = errors.New("allocation: voting power below threshold")
	ErrWeightExceedsPower = errors.New("allocation: vote weight exceeds voting power")
	ErrInvalidBallot      = errors.New("allocation: invalid ballot")
)
