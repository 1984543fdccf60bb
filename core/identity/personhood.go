package identity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
	"vebetterdao/native/checkpoints"
)

// Default explanations surfaced to voting when an attestation check fails.
const (
	reasonNoAttestation = "no attestation on record"
	reasonRevoked       = "attestation revoked"
)

// PersonhoodState is the persistence surface consumed by the attestation
// registry.
type PersonhoodState interface {
	IdentityPersonFlag(subject common.Address) (*checkpoints.Flag, error)
	IdentityPutPersonFlag(subject common.Address, flag *checkpoints.Flag) error
	IdentityRevocationReason(subject common.Address) (string, error)
	IdentitySetRevocationReason(subject common.Address, reason string) error
}

// Attestations is the proof-of-personhood registry. Attestation status is a
// checkpointed flag per subject so historical voting checks read the status as
// of the vote's snapshot block, not the current one.
type Attestations struct {
	state   PersonhoodState
	emitter events.Emitter
	blockFn func() uint64
}

// NewAttestations constructs an attestation registry with no-op dependencies.
func NewAttestations() *Attestations {
	return &Attestations{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
	}
}

// SetState wires the persistence backend.
func (a *Attestations) SetState(state PersonhoodState) { a.state = state }

// SetEmitter wires the event emitter.
func (a *Attestations) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	a.emitter = emitter
}

// SetBlockFunc wires the current-block clock.
func (a *Attestations) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		fn = func() uint64 { return 0 }
	}
	a.blockFn = fn
}

func (a *Attestations) block() uint64 {
	if a == nil || a.blockFn == nil {
		return 0
	}
	return a.blockFn()
}

// Attest marks the subject as a verified person from the current block
// onwards.
func (a *Attestations) Attest(subject common.Address) error {
	if a == nil || a.state == nil {
		return ErrStateNotConfigured
	}
	if subject == (common.Address{}) {
		return ErrZeroAddress
	}
	flag, err := a.state.IdentityPersonFlag(subject)
	if err != nil {
		return fmt.Errorf("identity: load attestation: %w", err)
	}
	if _, err := flag.Set(a.block(), true); err != nil {
		return fmt.Errorf("identity: checkpoint attestation: %w", err)
	}
	if err := a.state.IdentityPutPersonFlag(subject, flag); err != nil {
		return fmt.Errorf("identity: persist attestation: %w", err)
	}
	a.emitter.Emit(events.PersonAttested{Subject: subject, Block: a.block()})
	return nil
}

// Revoke withdraws the subject's attestation from the current block onwards.
// The reason is stored and surfaced to later voting attempts.
func (a *Attestations) Revoke(subject common.Address, reason string) error {
	if a == nil || a.state == nil {
		return ErrStateNotConfigured
	}
	if subject == (common.Address{}) {
		return ErrZeroAddress
	}
	flag, err := a.state.IdentityPersonFlag(subject)
	if err != nil {
		return fmt.Errorf("identity: load attestation: %w", err)
	}
	if _, err := flag.Set(a.block(), false); err != nil {
		return fmt.Errorf("identity: checkpoint revocation: %w", err)
	}
	if err := a.state.IdentityPutPersonFlag(subject, flag); err != nil {
		return fmt.Errorf("identity: persist revocation: %w", err)
	}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		trimmed = reasonRevoked
	}
	if err := a.state.IdentitySetRevocationReason(subject, trimmed); err != nil {
		return fmt.Errorf("identity: persist revocation reason: %w", err)
	}
	a.emitter.Emit(events.PersonRevoked{Subject: subject, Reason: trimmed, Block: a.block()})
	return nil
}

// IsPerson reports the subject's attestation status at the current block.
func (a *Attestations) IsPerson(subject common.Address) (bool, string, error) {
	return a.IsPersonAtTimepoint(subject, a.block())
}

// IsPersonAtTimepoint reports whether the subject held a valid attestation at
// the given block. The reason string explains a negative answer.
func (a *Attestations) IsPersonAtTimepoint(subject common.Address, timepoint uint64) (bool, string, error) {
	if a == nil || a.state == nil {
		return false, "", ErrStateNotConfigured
	}
	flag, err := a.state.IdentityPersonFlag(subject)
	if err != nil {
		return false, "", fmt.Errorf("identity: load attestation: %w", err)
	}
	if flag.Trace().Len() == 0 {
		return false, reasonNoAttestation, nil
	}
	if flag.EnabledAt(timepoint) {
		return true, "", nil
	}
	reason, err := a.state.IdentityRevocationReason(subject)
	if err != nil {
		return false, "", fmt.Errorf("identity: load revocation reason: %w", err)
	}
	if strings.TrimSpace(reason) == "" {
		reason = reasonNoAttestation
	}
	return false, reason, nil
}
