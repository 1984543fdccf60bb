package events

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/types"
)

const (
	EventRoundCreated       = "allocation.round_created"
	EventAllocationVoteCast = "allocation.vote"
	EventRoundFinalized     = "allocation.round_finalized"
)

// RoundCreated is emitted when the emissions scheduler opens a new allocation
// voting round with a frozen snapshot of eligible apps.
type RoundCreated struct {
	Round        uint64
	Proposer     common.Address
	VoteStart    uint64
	VoteEnd      uint64
	EligibleApps []common.Hash
}

// EventType implements the Event interface.
func (RoundCreated) EventType() string { return EventRoundCreated }

// Event converts the struct into a types.Event payload.
func (e RoundCreated) Event() *types.Event {
	apps := make([]string, len(e.EligibleApps))
	for i := range e.EligibleApps {
		apps[i] = e.EligibleApps[i].Hex()
	}
	attrs := map[string]string{
		"round":      strconv.FormatUint(e.Round, 10),
		"proposer":   e.Proposer.Hex(),
		"vote_start": strconv.FormatUint(e.VoteStart, 10),
		"vote_end":   strconv.FormatUint(e.VoteEnd, 10),
		"apps":       strings.Join(apps, ","),
	}
	return &types.Event{Type: EventRoundCreated, Attributes: attrs}
}

// AllocationVoteCast records a voter's per-app weight distribution within a
// round.
type AllocationVoteCast struct {
	Round   uint64
	Voter   common.Address
	Apps    []common.Hash
	Weights []*big.Int
	Weight  *big.Int
}

// EventType implements the Event interface.
func (AllocationVoteCast) EventType() string { return EventAllocationVoteCast }

// Event converts the struct into a types.Event payload.
func (e AllocationVoteCast) Event() *types.Event {
	apps := make([]string, len(e.Apps))
	for i := range e.Apps {
		apps[i] = e.Apps[i].Hex()
	}
	weights := make([]string, len(e.Weights))
	for i := range e.Weights {
		weights[i] = bigString(e.Weights[i])
	}
	attrs := map[string]string{
		"round":   strconv.FormatUint(e.Round, 10),
		"voter":   e.Voter.Hex(),
		"apps":    strings.Join(apps, ","),
		"weights": strings.Join(weights, ","),
		"weight":  bigString(e.Weight),
	}
	return &types.Event{Type: EventAllocationVoteCast, Attributes: attrs}
}

// RoundFinalized marks a round whose outcome has been recorded, including the
// pointer to the last succeeded round used for reward share lookups.
type RoundFinalized struct {
	Round         uint64
	State         string
	LastSucceeded uint64
}

// EventType implements the Event interface.
func (RoundFinalized) EventType() string { return EventRoundFinalized }

// Event converts the struct into a types.Event payload.
func (e RoundFinalized) Event() *types.Event {
	attrs := map[string]string{
		"round":          strconv.FormatUint(e.Round, 10),
		"state":          e.State,
		"last_succeeded": strconv.FormatUint(e.LastSucceeded, 10),
	}
	return &types.Event{Type: EventRoundFinalized, Attributes: attrs}
}
