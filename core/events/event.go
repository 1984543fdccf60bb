package events

import "vebetterdao/core/types"

// Event is a structured protocol occurrence: an emission cycle distributed,
// an allocation round opened or settled, a governance proposal moving through
// its lifecycle, a reward claim, or a registry change.
type Event interface {
	EventType() string
}

// Attributed is implemented by events that flatten into a string attribute
// payload. The journal, the websocket stream, and the indexer all consume
// events through this shape.
type Attributed interface {
	Event() *types.Event
}

// Emitter delivers events to subscribers. Engines hold an Emitter rather than
// the bus itself so tests can capture emissions directly.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards every event. Engines fall back to it when no bus is
// wired, keeping emit sites free of nil checks.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Event) {}

// Attributes flattens an event into its payload map, or nil when the event
// carries none.
func Attributes(event Event) map[string]string {
	carrier, ok := event.(Attributed)
	if !ok {
		return nil
	}
	detail := carrier.Event()
	if detail == nil {
		return nil
	}
	return detail.Attributes
}
