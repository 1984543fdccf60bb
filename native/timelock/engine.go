package timelock

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/governance"
)

// Operation is a scheduled execution gate: ready once the current block
// reaches ETA, done after execution. Canceled operations stay stored but read
// as unset.
type Operation struct {
	ETA      uint64
	Done     bool
	Canceled bool
}

// TimelockState is the persistence surface consumed by the engine.
type TimelockState interface {
	TimelockOperation(id common.Hash) (*Operation, bool, error)
	TimelockPutOperation(id common.Hash, op *Operation) error
}

// Engine is the execution-delay gate behind governor queue/execute. It
// implements the governor's Timelock collaborator.
type Engine struct {
	state   TimelockState
	blockFn func() uint64
}

// NewEngine constructs a timelock with no backend.
func NewEngine() *Engine {
	return &Engine{blockFn: func() uint64 { return 0 }}
}

// SetState wires the persistence backend.
func (e *Engine) SetState(state TimelockState) { e.state = state }

// SetBlockFunc wires the current-block clock.
func (e *Engine) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		fn = func() uint64 { return 0 }
	}
	e.blockFn = fn
}

func (e *Engine) block() uint64 {
	if e == nil || e.blockFn == nil {
		return 0
	}
	return e.blockFn()
}

// OperationStatus derives the lifecycle status of the operation.
func (e *Engine) OperationStatus(id common.Hash) (governance.TimelockStatus, error) {
	if e == nil || e.state == nil {
		return governance.TimelockUnset, ErrStateNotConfigured
	}
	op, ok, err := e.state.TimelockOperation(id)
	if err != nil {
		return governance.TimelockUnset, fmt.Errorf("timelock: load operation: %w", err)
	}
	if !ok || op.Canceled {
		return governance.TimelockUnset, nil
	}
	if op.Done {
		return governance.TimelockDone, nil
	}
	if e.block() >= op.ETA {
		return governance.TimelockReady, nil
	}
	return governance.TimelockWaiting, nil
}

// Schedule registers the operation with an ETA of delay blocks from now.
// Rescheduling a live operation is rejected; canceled and executed slots may
// be reused.
func (e *Engine) Schedule(id common.Hash, delay uint64) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	op, ok, err := e.state.TimelockOperation(id)
	if err != nil {
		return fmt.Errorf("timelock: load operation: %w", err)
	}
	if ok && !op.Canceled && !op.Done {
		return fmt.Errorf("%w: %s", ErrOperationExists, id.Hex())
	}
	scheduled := &Operation{ETA: e.block() + delay}
	if err := e.state.TimelockPutOperation(id, scheduled); err != nil {
		return fmt.Errorf("timelock: persist operation: %w", err)
	}
	return nil
}

// Execute marks a ready operation as done.
func (e *Engine) Execute(id common.Hash) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	op, ok, err := e.state.TimelockOperation(id)
	if err != nil {
		return fmt.Errorf("timelock: load operation: %w", err)
	}
	if !ok || op.Canceled {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id.Hex())
	}
	if op.Done {
		return fmt.Errorf("%w: %s", ErrOperationDone, id.Hex())
	}
	if e.block() < op.ETA {
		return fmt.Errorf("%w: ready at block %d", ErrOperationNotReady, op.ETA)
	}
	op.Done = true
	if err := e.state.TimelockPutOperation(id, op); err != nil {
		return fmt.Errorf("timelock: persist operation: %w", err)
	}
	return nil
}

// Cancel voids a pending operation.
func (e *Engine) Cancel(id common.Hash) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	op, ok, err := e.state.TimelockOperation(id)
	if err != nil {
		return fmt.Errorf("timelock: load operation: %w", err)
	}
	if !ok || op.Canceled {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id.Hex())
	}
	if op.Done {
		return fmt.Errorf("%w: %s", ErrOperationDone, id.Hex())
	}
	op.Canceled = true
	if err := e.state.TimelockPutOperation(id, op); err != nil {
		return fmt.Errorf("timelock: persist operation: %w", err)
	}
	return nil
}
