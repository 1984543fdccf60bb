package allocation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RoundState enumerates the derived lifecycle of an allocation round. State is
// always recomputed from the round window and tallies, never cached.
type RoundState uint8

const (
	// RoundStateActive covers the voting window [voteStart, voteStart+duration].
	RoundStateActive RoundState = iota
	// RoundStateSucceeded marks an ended round that reached quorum.
	RoundStateSucceeded
	// RoundStateFailed marks an ended round that missed quorum. Reward
	// calculations for failed rounds fall back to the finalization pointer.
	RoundStateFailed
)

// String implements fmt.Stringer for logging and event emission.
func (s RoundState) String() string {
	switch s {
	case RoundStateActive:
		return "active"
	case RoundStateSucceeded:
		return "succeeded"
	case RoundStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Round captures the immutable metadata snapshotted when a round is created.
// The eligible app set and the earnings caps are frozen here so mid-round
// registry changes cannot alter an in-flight round.
type Round struct {
	ID                       uint64
	Proposer                 common.Address
	VoteStart                uint64
	VoteDuration             uint64
	EligibleApps             []common.Hash
	AppSharesCap             uint64
	BaseAllocationPercentage uint64
}

// VoteEnd returns the last block of the round's voting window.
func (r *Round) VoteEnd() uint64 {
	if r == nil {
		return 0
	}
	return r.VoteStart + r.VoteDuration
}

// IsEligible reports whether the app id is part of the round's frozen
// eligible-app snapshot.
func (r *Round) IsEligible(appID common.Hash) bool {
	if r == nil {
		return false
	}
	for _, id := range r.EligibleApps {
		if id == appID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the round.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	clone := *r
	clone.EligibleApps = append([]common.Hash(nil), r.EligibleApps...)
	return &clone
}

// AppVotes aggregates the tallies recorded for a single app within a round.
type AppVotes struct {
	Votes   *big.Int
	VotesQF *big.Int
}

// Clone returns a deep copy of the tallies.
func (v *AppVotes) Clone() *AppVotes {
	if v == nil {
		return &AppVotes{Votes: big.NewInt(0), VotesQF: big.NewInt(0)}
	}
	clone := &AppVotes{Votes: big.NewInt(0), VotesQF: big.NewInt(0)}
	if v.Votes != nil {
		clone.Votes = new(big.Int).Set(v.Votes)
	}
	if v.VotesQF != nil {
		clone.VotesQF = new(big.Int).Set(v.VotesQF)
	}
	return clone
}
