package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/token"
	"vebetterdao/native/allocation"
	"vebetterdao/native/emissions"
)

// ledgerMinter lets the emissions engine mint as the emissions module account.
type ledgerMinter struct {
	ledger *token.Ledger
	caller common.Address
}

func (m *ledgerMinter) Mint(to common.Address, amount *big.Int) error {
	return m.ledger.Mint(m.caller, to, amount)
}

func (m *ledgerMinter) Cap() (*big.Int, error) {
	return m.ledger.Cap(), nil
}

func (m *ledgerMinter) TotalSupply() (*big.Int, error) {
	return m.ledger.TotalSupply()
}

// accountFunds exposes one module account's balance as a Funds collaborator.
type accountFunds struct {
	ledger  *token.Ledger
	account common.Address
}

func (f *accountFunds) Balance() (*big.Int, error) {
	return f.ledger.BalanceOf(f.account)
}

func (f *accountFunds) Transfer(to common.Address, amount *big.Int) error {
	return f.ledger.Transfer(f.account, to, amount)
}

// depositVault escrows governor proposal deposits in a module account.
type depositVault struct {
	ledger *token.Ledger
	vault  common.Address
}

func (v *depositVault) Lock(from common.Address, amount *big.Int) error {
	return v.ledger.Transfer(from, v.vault, amount)
}

func (v *depositVault) Release(to common.Address, amount *big.Int) error {
	return v.ledger.Transfer(v.vault, to, amount)
}

// rewardsSink moves each app's pool-side allocation into the sustainability
// rewards pot.
type rewardsSink struct {
	ledger *token.Ledger
	pool   common.Address
	pot    common.Address
}

func (s *rewardsSink) Deposit(amount *big.Int, appID common.Hash) error {
	return s.ledger.Transfer(s.pool, s.pot, amount)
}

// cycleSource narrows the emissions engine to the voter-rewards view of the
// cycle clock.
type cycleSource struct {
	engine *emissions.Engine
}

func (c *cycleSource) CurrentCycle() (uint64, error) {
	return c.engine.CurrentCycle()
}

func (c *cycleSource) CycleStartBlock(cycle uint64) (uint64, error) {
	return c.engine.CycleStartBlock(cycle)
}

func (c *cycleSource) IsCycleEnded(cycle uint64) (bool, error) {
	return c.engine.IsCycleEnded(cycle)
}

func (c *cycleSource) Vote2EarnAmount(cycle uint64) (*big.Int, error) {
	amounts, err := c.engine.CycleAmountsFor(cycle)
	if err != nil {
		return nil, err
	}
	return amounts.Vote2Earn, nil
}

// emissionSource narrows the emissions engine to the allocation pool's view.
type emissionSource struct {
	engine *emissions.Engine
}

func (e *emissionSource) XAllocationsAmount(cycle uint64) (*big.Int, error) {
	amounts, err := e.engine.CycleAmountsFor(cycle)
	if err != nil {
		return nil, err
	}
	return amounts.XAllocations, nil
}

// roundSource narrows the allocation engine to the governor's view of round
// windows: a proposal's snapshot is its start round's first block, its
// deadline the round's last.
type roundSource struct {
	engine *allocation.Engine
}

func (r *roundSource) CurrentRoundID() (uint64, error) {
	return r.engine.CurrentRoundID()
}

func (r *roundSource) RoundSnapshot(id uint64) (uint64, error) {
	round, err := r.engine.GetRound(id)
	if err != nil {
		return 0, err
	}
	return round.VoteStart, nil
}

func (r *roundSource) RoundDeadline(id uint64) (uint64, error) {
	round, err := r.engine.GetRound(id)
	if err != nil {
		return 0, err
	}
	return round.VoteEnd(), nil
}
