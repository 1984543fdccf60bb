package governance

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// ProposalState enumerates the derived lifecycle of a governor proposal. The
// state is always recomputed from the stored flags, deposits, tallies, and the
// timelock operation status; it is never cached.
type ProposalState uint8

const (
	// ProposalStatePending marks proposals whose start round has not begun.
	ProposalStatePending ProposalState = iota
	// ProposalStateActive marks proposals inside their voting window.
	ProposalStateActive
	// ProposalStateCanceled marks proposals withdrawn before execution.
	ProposalStateCanceled
	// ProposalStateDefeated marks proposals that missed quorum or whose
	// for-votes did not exceed the against-votes.
	ProposalStateDefeated
	// ProposalStateSucceeded marks proposals that passed and are not yet
	// queued on the timelock.
	ProposalStateSucceeded
	// ProposalStateQueued marks proposals waiting out the timelock delay.
	ProposalStateQueued
	// ProposalStateExecuted marks proposals whose payload has been applied.
	ProposalStateExecuted
	// ProposalStateDepositNotMet marks proposals that reached their voting
	// round without collecting the required deposit.
	ProposalStateDepositNotMet
)

// String implements fmt.Stringer for logging and event emission.
func (s ProposalState) String() string {
	switch s {
	case ProposalStatePending:
		return "pending"
	case ProposalStateActive:
		return "active"
	case ProposalStateCanceled:
		return "canceled"
	case ProposalStateDefeated:
		return "defeated"
	case ProposalStateSucceeded:
		return "succeeded"
	case ProposalStateQueued:
		return "queued"
	case ProposalStateExecuted:
		return "executed"
	case ProposalStateDepositNotMet:
		return "deposit_not_met"
	default:
		return "unknown"
	}
}

// VoteSupport enumerates the governor ballot options.
type VoteSupport uint8

const (
	VoteAgainst VoteSupport = iota
	VoteFor
	VoteAbstain
)

// Valid reports whether the support value is a recognised option.
func (s VoteSupport) Valid() bool { return s <= VoteAbstain }

// Proposal captures the call payload and bookkeeping for a governor proposal.
// The id is derived from the payload, so identical proposals collide by
// design and require a description variation to resubmit.
type Proposal struct {
	ID               common.Hash
	Proposer         common.Address
	Targets          []common.Address
	Values           []*big.Int
	Calldatas        [][]byte
	DescriptionHash  common.Hash
	StartRound       uint64
	DepositThreshold *big.Int
	DepositTotal     *big.Int
	Executed         bool
	Canceled         bool
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Targets = append([]common.Address(nil), p.Targets...)
	clone.Values = make([]*big.Int, len(p.Values))
	for i, v := range p.Values {
		clone.Values[i] = copyBigInt(v)
	}
	clone.Calldatas = make([][]byte, len(p.Calldatas))
	for i, c := range p.Calldatas {
		clone.Calldatas[i] = append([]byte(nil), c...)
	}
	clone.DepositThreshold = copyBigInt(p.DepositThreshold)
	clone.DepositTotal = copyBigInt(p.DepositTotal)
	return &clone
}

// ProposalVotes aggregates the running tally for a proposal. Depending on the
// round's quadratic-voting flag the tallies accumulate either raw weight or
// scaled quadratic power.
type ProposalVotes struct {
	Against *big.Int
	For     *big.Int
	Abstain *big.Int
}

// Clone returns a deep copy of the tallies with nil fields zeroed.
func (v *ProposalVotes) Clone() *ProposalVotes {
	clone := &ProposalVotes{Against: big.NewInt(0), For: big.NewInt(0), Abstain: big.NewInt(0)}
	if v == nil {
		return clone
	}
	if v.Against != nil {
		clone.Against = new(big.Int).Set(v.Against)
	}
	if v.For != nil {
		clone.For = new(big.Int).Set(v.For)
	}
	if v.Abstain != nil {
		clone.Abstain = new(big.Int).Set(v.Abstain)
	}
	return clone
}

// Total returns the combined tally across all three buckets.
func (v *ProposalVotes) Total() *big.Int {
	clone := v.Clone()
	total := new(big.Int).Add(clone.Against, clone.For)
	return total.Add(total, clone.Abstain)
}

type proposalDigest struct {
	Targets         []common.Address
	Values          []*big.Int
	Calldatas       [][]byte
	DescriptionHash common.Hash
}

// HashProposal derives the deterministic proposal id from the call payload and
// description hash.
func HashProposal(targets []common.Address, values []*big.Int, calldatas [][]byte, descriptionHash common.Hash) (common.Hash, error) {
	normalized := make([]*big.Int, len(values))
	for i, v := range values {
		normalized[i] = copyBigInt(v)
	}
	encoded, err := rlp.EncodeToBytes(proposalDigest{
		Targets:         targets,
		Values:          normalized,
		Calldatas:       calldatas,
		DescriptionHash: descriptionHash,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// HashDescription hashes a proposal description the same way ids are derived,
// so resubmissions only need to vary the description text.
func HashDescription(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
