package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/checkpoints"
)

type mockLedgerState struct {
	balances map[common.Address]*big.Int
	votes    map[common.Address]*checkpoints.Trace
	supply   *checkpoints.Trace
}

func newMockLedgerState() *mockLedgerState {
	return &mockLedgerState{
		balances: make(map[common.Address]*big.Int),
		votes:    make(map[common.Address]*checkpoints.Trace),
		supply:   &checkpoints.Trace{},
	}
}

func (m *mockLedgerState) TokenBalance(addr common.Address) (*big.Int, error) {
	if b, ok := m.balances[addr]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (m *mockLedgerState) SetTokenBalance(addr common.Address, amount *big.Int) error {
	m.balances[addr] = new(big.Int).Set(amount)
	return nil
}

func (m *mockLedgerState) TokenVotesTrace(addr common.Address) (*checkpoints.Trace, error) {
	trace, ok := m.votes[addr]
	if !ok {
		trace = &checkpoints.Trace{}
		m.votes[addr] = trace
	}
	return trace, nil
}

func (m *mockLedgerState) PutTokenVotesTrace(addr common.Address, trace *checkpoints.Trace) error {
	m.votes[addr] = trace
	return nil
}

func (m *mockLedgerState) TokenSupplyTrace() (*checkpoints.Trace, error) { return m.supply, nil }

func (m *mockLedgerState) PutTokenSupplyTrace(trace *checkpoints.Trace) error {
	m.supply = trace
	return nil
}

type ledgerFixture struct {
	ledger *Ledger
	state  *mockLedgerState
	minter common.Address
	block  uint64
}

func newLedgerFixture(cap *big.Int) *ledgerFixture {
	fx := &ledgerFixture{
		state:  newMockLedgerState(),
		minter: common.Address{0x0e},
		block:  1,
	}
	ledger := NewLedger(cap)
	ledger.SetState(fx.state)
	ledger.SetMinter(fx.minter)
	ledger.SetBlockFunc(func() uint64 { return fx.block })
	fx.ledger = ledger
	return fx
}

func TestMintAuthorizationAndCap(t *testing.T) {
	fx := newLedgerFixture(big.NewInt(1000))
	alice := common.Address{0xaa}

	require.ErrorIs(t, fx.ledger.Mint(alice, alice, big.NewInt(10)), ErrMintNotAuthorized)
	require.ErrorIs(t, fx.ledger.Mint(fx.minter, common.Address{}, big.NewInt(10)), ErrZeroAddress)
	require.ErrorIs(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(0)), ErrInvalidAmount)

	require.NoError(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(900)))
	balance, err := fx.ledger.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(900), balance)

	require.ErrorIs(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(200)), ErrCapExceeded)
	supply, err := fx.ledger.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(900), supply)
}

func TestTransferMovesVotingPower(t *testing.T) {
	fx := newLedgerFixture(nil)
	alice := common.Address{0xaa}
	bob := common.Address{0xbb}

	fx.block = 10
	require.NoError(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(500)))

	fx.block = 20
	require.NoError(t, fx.ledger.Transfer(alice, bob, big.NewInt(200)))

	votes, err := fx.ledger.GetVotes(alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(300), votes)
	votes, err = fx.ledger.GetVotes(bob)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(200), votes)

	require.ErrorIs(t, fx.ledger.Transfer(bob, alice, big.NewInt(201)), ErrInsufficientBalance)
}

func TestHistoricalLookups(t *testing.T) {
	fx := newLedgerFixture(nil)
	alice := common.Address{0xaa}
	bob := common.Address{0xbb}

	fx.block = 10
	require.NoError(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(500)))
	fx.block = 20
	require.NoError(t, fx.ledger.Transfer(alice, bob, big.NewInt(200)))
	fx.block = 30
	require.NoError(t, fx.ledger.Mint(fx.minter, bob, big.NewInt(100)))
	fx.block = 40

	votes, err := fx.ledger.GetPastVotes(alice, 15)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), votes)
	votes, err = fx.ledger.GetPastVotes(alice, 25)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(300), votes)

	// Before any checkpoint the value is zero.
	votes, err = fx.ledger.GetPastVotes(bob, 15)
	require.NoError(t, err)
	require.Zero(t, votes.Sign())

	supply, err := fx.ledger.GetPastTotalSupply(25)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), supply)
	supply, err = fx.ledger.GetPastTotalSupply(35)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(600), supply)
}

func TestFutureLookupRejected(t *testing.T) {
	fx := newLedgerFixture(nil)
	alice := common.Address{0xaa}
	fx.block = 10
	require.NoError(t, fx.ledger.Mint(fx.minter, alice, big.NewInt(500)))

	_, err := fx.ledger.GetPastVotes(alice, 10)
	require.ErrorIs(t, err, ErrFutureLookup)
	_, err = fx.ledger.GetPastTotalSupply(11)
	require.ErrorIs(t, err, ErrFutureLookup)
}
