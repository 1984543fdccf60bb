package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/types"
)

const (
	EventVoteRegistered            = "rewards.vote_registered"
	EventRewardClaimed             = "rewards.claimed"
	EventQuadraticRewardingToggled = "rewards.quadratic_rewarding_toggled"
	EventAppEarningsClaimed        = "allocpool.claimed"
)

// VoteRegistered records the reward-weighted contribution of a governor vote
// towards the voter's cycle accrual.
type VoteRegistered struct {
	Cycle      uint64
	Voter      common.Address
	Votes      *big.Int
	Weighted   *big.Int
	CycleTotal *big.Int
}

// EventType implements the Event interface.
func (VoteRegistered) EventType() string { return EventVoteRegistered }

// Event converts the struct into a types.Event payload.
func (e VoteRegistered) Event() *types.Event {
	attrs := map[string]string{
		"cycle":       strconv.FormatUint(e.Cycle, 10),
		"voter":       e.Voter.Hex(),
		"votes":       bigString(e.Votes),
		"weighted":    bigString(e.Weighted),
		"cycle_total": bigString(e.CycleTotal),
	}
	return &types.Event{Type: EventVoteRegistered, Attributes: attrs}
}

// RewardClaimed marks a voter's one-time claim against a finished cycle.
type RewardClaimed struct {
	Cycle  uint64
	Voter  common.Address
	Amount *big.Int
}

// EventType implements the Event interface.
func (RewardClaimed) EventType() string { return EventRewardClaimed }

// Event converts the struct into a types.Event payload.
func (e RewardClaimed) Event() *types.Event {
	attrs := map[string]string{
		"cycle":  strconv.FormatUint(e.Cycle, 10),
		"voter":  e.Voter.Hex(),
		"amount": bigString(e.Amount),
	}
	return &types.Event{Type: EventRewardClaimed, Attributes: attrs}
}

// AppEarningsClaimed records the three-way split performed when an app claims
// its round earnings.
type AppEarningsClaimed struct {
	Round       uint64
	AppID       common.Hash
	Team        *big.Int
	Pool        *big.Int
	Unallocated *big.Int
}

// EventType implements the Event interface.
func (AppEarningsClaimed) EventType() string { return EventAppEarningsClaimed }

// Event converts the struct into a types.Event payload.
func (e AppEarningsClaimed) Event() *types.Event {
	attrs := map[string]string{
		"round":       strconv.FormatUint(e.Round, 10),
		"app":         e.AppID.Hex(),
		"team":        bigString(e.Team),
		"pool":        bigString(e.Pool),
		"unallocated": bigString(e.Unallocated),
	}
	return &types.Event{Type: EventAppEarningsClaimed, Attributes: attrs}
}
