package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/types"
)

const (
	EventProposalCreated         = "governance.proposed"
	EventProposalDeposit         = "governance.deposit"
	EventGovernanceVoteCast      = "governance.vote"
	EventProposalQueued          = "governance.queued"
	EventProposalExecuted        = "governance.executed"
	EventProposalCanceled        = "governance.canceled"
	EventQuadraticVotingToggled  = "governance.quadratic_voting_toggled"
	EventVotingThresholdUpdated  = "governance.voting_threshold_updated"
	EventDepositThresholdUpdated = "governance.deposit_threshold_updated"
)

// ProposalCreated is emitted when a proposal is admitted into the deposit
// phase.
type ProposalCreated struct {
	ProposalID       common.Hash
	Proposer         common.Address
	StartRound       uint64
	DepositThreshold *big.Int
	DescriptionHash  common.Hash
}

// EventType implements the Event interface.
func (ProposalCreated) EventType() string { return EventProposalCreated }

// Event converts the struct into a types.Event payload.
func (e ProposalCreated) Event() *types.Event {
	attrs := map[string]string{
		"id":                e.ProposalID.Hex(),
		"proposer":          e.Proposer.Hex(),
		"start_round":       strconv.FormatUint(e.StartRound, 10),
		"deposit_threshold": bigString(e.DepositThreshold),
		"description_hash":  e.DescriptionHash.Hex(),
	}
	return &types.Event{Type: EventProposalCreated, Attributes: attrs}
}

// ProposalDeposit records a deposit towards a proposal's activation threshold.
type ProposalDeposit struct {
	ProposalID common.Hash
	Depositor  common.Address
	Amount     *big.Int
	Total      *big.Int
}

// EventType implements the Event interface.
func (ProposalDeposit) EventType() string { return EventProposalDeposit }

// Event converts the struct into a types.Event payload.
func (e ProposalDeposit) Event() *types.Event {
	attrs := map[string]string{
		"id":        e.ProposalID.Hex(),
		"depositor": e.Depositor.Hex(),
		"amount":    bigString(e.Amount),
		"total":     bigString(e.Total),
	}
	return &types.Event{Type: EventProposalDeposit, Attributes: attrs}
}

// GovernanceVoteCast records a governor ballot with both raw weight and the
// quadratic power actually tallied.
type GovernanceVoteCast struct {
	ProposalID common.Hash
	Voter      common.Address
	Support    uint8
	Weight     *big.Int
	Power      *big.Int
	Reason     string
}

// EventType implements the Event interface.
func (GovernanceVoteCast) EventType() string { return EventGovernanceVoteCast }

// Event converts the struct into a types.Event payload.
func (e GovernanceVoteCast) Event() *types.Event {
	attrs := map[string]string{
		"id":      e.ProposalID.Hex(),
		"voter":   e.Voter.Hex(),
		"support": strconv.FormatUint(uint64(e.Support), 10),
		"weight":  bigString(e.Weight),
		"power":   bigString(e.Power),
	}
	if e.Reason != "" {
		attrs["reason"] = e.Reason
	}
	return &types.Event{Type: EventGovernanceVoteCast, Attributes: attrs}
}

// ProposalLifecycle marks queue, execute, and cancel transitions.
type ProposalLifecycle struct {
	Kind       string
	ProposalID common.Hash
	ETA        uint64
}

// EventType implements the Event interface.
func (e ProposalLifecycle) EventType() string { return e.Kind }

// Event converts the struct into a types.Event payload.
func (e ProposalLifecycle) Event() *types.Event {
	attrs := map[string]string{
		"id": e.ProposalID.Hex(),
	}
	if e.ETA > 0 {
		attrs["eta"] = strconv.FormatUint(e.ETA, 10)
	}
	return &types.Event{Type: e.Kind, Attributes: attrs}
}

// FlagToggled captures a checkpointed boolean flip with its before and after
// values.
type FlagToggled struct {
	Kind     string
	Block    uint64
	Previous bool
	Current  bool
}

// EventType implements the Event interface.
func (e FlagToggled) EventType() string { return e.Kind }

// Event converts the struct into a types.Event payload.
func (e FlagToggled) Event() *types.Event {
	attrs := map[string]string{
		"block":    strconv.FormatUint(e.Block, 10),
		"previous": strconv.FormatBool(e.Previous),
		"current":  strconv.FormatBool(e.Current),
	}
	return &types.Event{Type: e.Kind, Attributes: attrs}
}

// ThresholdUpdated carries the before and after values of a numeric governance
// parameter mutation.
type ThresholdUpdated struct {
	Kind     string
	Previous *big.Int
	Current  *big.Int
}

// EventType implements the Event interface.
func (e ThresholdUpdated) EventType() string { return e.Kind }

// Event converts the struct into a types.Event payload.
func (e ThresholdUpdated) Event() *types.Event {
	attrs := map[string]string{
		"previous": bigString(e.Previous),
		"current":  bigString(e.Current),
	}
	return &types.Event{Type: e.Kind, Attributes: attrs}
}
