package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/checkpoints"
)

// LedgerState is the persistence contract for balances and the checkpointed
// voting-power and supply histories.
type LedgerState interface {
	TokenBalance(addr common.Address) (*big.Int, error)
	SetTokenBalance(addr common.Address, amount *big.Int) error
	TokenVotesTrace(addr common.Address) (*checkpoints.Trace, error)
	PutTokenVotesTrace(addr common.Address, trace *checkpoints.Trace) error
	TokenSupplyTrace() (*checkpoints.Trace, error)
	PutTokenSupplyTrace(trace *checkpoints.Trace) error
}

// Ledger is a capped, checkpointed token ledger. Every balance mutation also
// checkpoints the holder's voting power and the total supply at the current
// block, so historical lookups always see the state as of a past timepoint.
// Accounts are self-delegated: voting power equals balance.
type Ledger struct {
	state   LedgerState
	cap     *big.Int
	minter  common.Address
	blockFn func() uint64
}

// NewLedger constructs a ledger with the given immutable supply cap. A nil cap
// means uncapped.
func NewLedger(cap *big.Int) *Ledger {
	l := &Ledger{blockFn: func() uint64 { return 0 }}
	if cap != nil {
		l.cap = new(big.Int).Set(cap)
	}
	return l
}

// SetState wires the persistence backend.
func (l *Ledger) SetState(state LedgerState) { l.state = state }

// SetMinter restricts Mint to the supplied address. The emission scheduler is
// the only production minter.
func (l *Ledger) SetMinter(minter common.Address) { l.minter = minter }

// SetBlockFunc overrides the block height source.
func (l *Ledger) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		l.blockFn = func() uint64 { return 0 }
		return
	}
	l.blockFn = fn
}

func (l *Ledger) block() uint64 {
	if l == nil || l.blockFn == nil {
		return 0
	}
	return l.blockFn()
}

// Cap returns the immutable supply cap, or nil when uncapped.
func (l *Ledger) Cap() *big.Int {
	if l == nil || l.cap == nil {
		return nil
	}
	return new(big.Int).Set(l.cap)
}

// BalanceOf returns the current balance of the account.
func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrStateNotConfigured
	}
	return l.state.TokenBalance(addr)
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrStateNotConfigured
	}
	trace, err := l.state.TokenSupplyTrace()
	if err != nil {
		return nil, err
	}
	return trace.Latest(), nil
}

// GetVotes returns the account's current voting power.
func (l *Ledger) GetVotes(addr common.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrStateNotConfigured
	}
	trace, err := l.state.TokenVotesTrace(addr)
	if err != nil {
		return nil, err
	}
	return trace.Latest(), nil
}

// GetPastVotes returns the account's voting power as of the timepoint.
// Lookups at or past the current block fail: the checkpoint for the current
// block is still mutable.
func (l *Ledger) GetPastVotes(account common.Address, timepoint uint64) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrStateNotConfigured
	}
	if current := l.block(); timepoint >= current && current > 0 {
		return nil, fmt.Errorf("%w: timepoint %d, current block %d", ErrFutureLookup, timepoint, current)
	}
	trace, err := l.state.TokenVotesTrace(account)
	if err != nil {
		return nil, err
	}
	return trace.UpperLookupRecent(timepoint), nil
}

// GetPastTotalSupply returns the total supply as of the timepoint, with the
// same future-lookup restriction as GetPastVotes.
func (l *Ledger) GetPastTotalSupply(timepoint uint64) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrStateNotConfigured
	}
	if current := l.block(); timepoint >= current && current > 0 {
		return nil, fmt.Errorf("%w: timepoint %d, current block %d", ErrFutureLookup, timepoint, current)
	}
	trace, err := l.state.TokenSupplyTrace()
	if err != nil {
		return nil, err
	}
	return trace.UpperLookupRecent(timepoint), nil
}

// Mint issues new tokens to an account. Only the configured minter may call,
// and the post-mint supply must stay within the cap.
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrStateNotConfigured
	}
	if caller != l.minter || l.minter == (common.Address{}) {
		return fmt.Errorf("%w: %s", ErrMintNotAuthorized, caller.Hex())
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	next := new(big.Int).Add(supply, amount)
	if l.cap != nil && next.Cmp(l.cap) > 0 {
		return fmt.Errorf("%w: supply %s, cap %s", ErrCapExceeded, next, l.cap)
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	return l.checkpointSupply(next)
}

// Transfer moves tokens between accounts, checkpointing both sides' voting
// power.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrStateNotConfigured
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := l.state.TokenBalance(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), balance, amount)
	}
	remaining := new(big.Int).Sub(balance, amount)
	if err := l.state.SetTokenBalance(from, remaining); err != nil {
		return err
	}
	if err := l.checkpointVotes(from, remaining); err != nil {
		return err
	}
	return l.credit(to, amount)
}

func (l *Ledger) credit(to common.Address, amount *big.Int) error {
	balance, err := l.state.TokenBalance(to)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(balance, amount)
	if err := l.state.SetTokenBalance(to, next); err != nil {
		return err
	}
	return l.checkpointVotes(to, next)
}

func (l *Ledger) checkpointVotes(addr common.Address, value *big.Int) error {
	trace, err := l.state.TokenVotesTrace(addr)
	if err != nil {
		return err
	}
	if _, _, err := trace.Push(l.block(), value); err != nil {
		return err
	}
	return l.state.PutTokenVotesTrace(addr, trace)
}

func (l *Ledger) checkpointSupply(value *big.Int) error {
	trace, err := l.state.TokenSupplyTrace()
	if err != nil {
		return err
	}
	if _, _, err := trace.Push(l.block(), value); err != nil {
		return err
	}
	return l.state.PutTokenSupplyTrace(trace)
}
