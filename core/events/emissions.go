package events

import (
	"math/big"
	"strconv"

	"vebetterdao/core/types"
)

const (
	EventEmissionsBootstrapped = "emissions.bootstrapped"
	EventEmissionDistributed   = "emissions.distributed"
)

// EmissionsBootstrapped signals the one-time bootstrap mint that seeds cycle
// one and performs the migration transfer.
type EmissionsBootstrapped struct {
	XAllocations *big.Int
	Vote2Earn    *big.Int
	Treasury     *big.Int
	Migration    *big.Int
	Block        uint64
}

// EventType implements the Event interface.
func (EmissionsBootstrapped) EventType() string { return EventEmissionsBootstrapped }

// Event converts the struct into a types.Event payload.
func (e EmissionsBootstrapped) Event() *types.Event {
	attrs := map[string]string{
		"xallocations": bigString(e.XAllocations),
		"vote2earn":    bigString(e.Vote2Earn),
		"treasury":     bigString(e.Treasury),
		"migration":    bigString(e.Migration),
		"block":        strconv.FormatUint(e.Block, 10),
	}
	return &types.Event{Type: EventEmissionsBootstrapped, Attributes: attrs}
}

// EmissionDistributed captures the per-cycle emission amounts minted to the
// three destinations when a cycle is distributed.
type EmissionDistributed struct {
	Cycle        uint64
	XAllocations *big.Int
	Vote2Earn    *big.Int
	Treasury     *big.Int
	Total        *big.Int
	Block        uint64
}

// EventType implements the Event interface.
func (EmissionDistributed) EventType() string { return EventEmissionDistributed }

// Event converts the struct into a types.Event payload.
func (e EmissionDistributed) Event() *types.Event {
	attrs := map[string]string{
		"cycle":        strconv.FormatUint(e.Cycle, 10),
		"xallocations": bigString(e.XAllocations),
		"vote2earn":    bigString(e.Vote2Earn),
		"treasury":     bigString(e.Treasury),
		"total":        bigString(e.Total),
		"block":        strconv.FormatUint(e.Block, 10),
	}
	return &types.Event{Type: EventEmissionDistributed, Attributes: attrs}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
