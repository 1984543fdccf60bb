package events

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/types"
)

const (
	EventPersonAttested = "identity.person_attested"
	EventPersonRevoked  = "identity.person_revoked"
)

// PersonAttested is emitted when an address receives a personhood attestation.
type PersonAttested struct {
	Subject common.Address
	Block   uint64
}

// EventType implements the Event interface.
func (PersonAttested) EventType() string { return EventPersonAttested }

// Event converts the struct into a types.Event payload.
func (e PersonAttested) Event() *types.Event {
	return &types.Event{
		Type: EventPersonAttested,
		Attributes: map[string]string{
			"subject": e.Subject.Hex(),
			"block":   strconv.FormatUint(e.Block, 10),
		},
	}
}

// PersonRevoked is emitted when an attestation is withdrawn.
type PersonRevoked struct {
	Subject common.Address
	Reason  string
	Block   uint64
}

// EventType implements the Event interface.
func (PersonRevoked) EventType() string { return EventPersonRevoked }

// Event converts the struct into a types.Event payload.
func (e PersonRevoked) Event() *types.Event {
	return &types.Event{
		Type: EventPersonRevoked,
		Attributes: map[string]string{
			"subject": e.Subject.Hex(),
			"reason":  e.Reason,
			"block":   strconv.FormatUint(e.Block, 10),
		},
	}
}
