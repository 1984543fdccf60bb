package identity

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/checkpoints"
)

type mockPersonhoodState struct {
	flags   map[common.Address]*checkpoints.Flag
	reasons map[common.Address]string
}

func newMockPersonhoodState() *mockPersonhoodState {
	return &mockPersonhoodState{
		flags:   make(map[common.Address]*checkpoints.Flag),
		reasons: make(map[common.Address]string),
	}
}

func (m *mockPersonhoodState) IdentityPersonFlag(subject common.Address) (*checkpoints.Flag, error) {
	if flag, ok := m.flags[subject]; ok {
		return flag, nil
	}
	return new(checkpoints.Flag), nil
}

func (m *mockPersonhoodState) IdentityPutPersonFlag(subject common.Address, flag *checkpoints.Flag) error {
	m.flags[subject] = flag
	return nil
}

func (m *mockPersonhoodState) IdentityRevocationReason(subject common.Address) (string, error) {
	return m.reasons[subject], nil
}

func (m *mockPersonhoodState) IdentitySetRevocationReason(subject common.Address, reason string) error {
	m.reasons[subject] = reason
	return nil
}

func TestAttestationLifecycle(t *testing.T) {
	state := newMockPersonhoodState()
	block := uint64(10)
	attestations := NewAttestations()
	attestations.SetState(state)
	attestations.SetBlockFunc(func() uint64 { return block })

	alice := common.BytesToAddress([]byte("alice"))

	ok, reason, err := attestations.IsPerson(alice)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "no attestation on record", reason)

	require.NoError(t, attestations.Attest(alice))
	ok, reason, err = attestations.IsPerson(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, reason)

	block = 50
	require.NoError(t, attestations.Revoke(alice, "duplicate account"))
	ok, reason, err = attestations.IsPerson(alice)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "duplicate account", reason)
}

func TestAttestationHistoricalLookup(t *testing.T) {
	state := newMockPersonhoodState()
	block := uint64(10)
	attestations := NewAttestations()
	attestations.SetState(state)
	attestations.SetBlockFunc(func() uint64 { return block })

	bob := common.BytesToAddress([]byte("bob"))
	require.NoError(t, attestations.Attest(bob))
	block = 40
	require.NoError(t, attestations.Revoke(bob, ""))

	// Snapshot checks read the status as of the timepoint.
	ok, _, err := attestations.IsPersonAtTimepoint(bob, 9)
	require.NoError(t, err)
	require.False(t, ok)

	ok, _, err = attestations.IsPersonAtTimepoint(bob, 25)
	require.NoError(t, err)
	require.True(t, ok)

	ok, reason, err := attestations.IsPersonAtTimepoint(bob, 45)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "attestation revoked", reason)
}

func TestAttestRejectsZeroAddress(t *testing.T) {
	attestations := NewAttestations()
	attestations.SetState(newMockPersonhoodState())

	require.ErrorIs(t, attestations.Attest(common.Address{}), ErrZeroAddress)
	require.ErrorIs(t, attestations.Revoke(common.Address{}, "x"), ErrZeroAddress)
}

type mockGalaxyState struct {
	selected map[common.Address]uint64
	levels   map[uint64]uint64
	nodes    map[uint64]uint64
}

func newMockGalaxyState() *mockGalaxyState {
	return &mockGalaxyState{
		selected: make(map[common.Address]uint64),
		levels:   make(map[uint64]uint64),
		nodes:    make(map[uint64]uint64),
	}
}

func (m *mockGalaxyState) GalaxySelectedToken(owner common.Address) (uint64, bool, error) {
	id, ok := m.selected[owner]
	return id, ok, nil
}

func (m *mockGalaxyState) GalaxySetSelectedToken(owner common.Address, tokenID uint64) error {
	m.selected[owner] = tokenID
	return nil
}

func (m *mockGalaxyState) GalaxyTokenLevel(tokenID uint64) (uint64, error) {
	return m.levels[tokenID], nil
}

func (m *mockGalaxyState) GalaxySetTokenLevel(tokenID uint64, level uint64) error {
	m.levels[tokenID] = level
	return nil
}

func (m *mockGalaxyState) GalaxyAttachedNode(tokenID uint64) (uint64, bool, error) {
	id, ok := m.nodes[tokenID]
	return id, ok, nil
}

func (m *mockGalaxyState) GalaxySetAttachedNode(tokenID uint64, nodeID uint64) error {
	m.nodes[tokenID] = nodeID
	return nil
}

func TestGalaxyMemberMultipliers(t *testing.T) {
	state := newMockGalaxyState()
	members := NewMembers()
	members.SetState(state)

	alice := common.BytesToAddress([]byte("alice"))

	_, ok, err := members.SelectedToken(alice)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, members.SelectToken(alice, 7))
	tokenID, ok, err := members.SelectedToken(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), tokenID)

	// Unleveled tokens carry no boost.
	mult, err := members.LevelMultiplier(7)
	require.NoError(t, err)
	require.Zero(t, mult)

	require.NoError(t, members.SetTokenLevel(7, 5))
	mult, err = members.LevelMultiplier(7)
	require.NoError(t, err)
	require.Equal(t, uint64(100), mult)

	require.ErrorIs(t, members.SetTokenLevel(7, 0), ErrInvalidLevel)
	require.ErrorIs(t, members.SetTokenLevel(7, MaxLevel+1), ErrInvalidLevel)
}

func TestGalaxyNodeAttachment(t *testing.T) {
	members := NewMembers()
	members.SetState(newMockGalaxyState())

	_, ok, err := members.AttachedNode(7)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, members.AttachNode(7, 3))
	nodeID, ok, err := members.AttachedNode(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3), nodeID)
}
