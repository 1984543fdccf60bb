package identity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// levelMultipliers maps a galaxy-member NFT level to its reward multiplier in
// percent. Level 1 carries no boost.
var levelMultipliers = []uint64{0, 0, 10, 20, 50, 100, 150, 200, 400, 900, 2400}

// MaxLevel is the highest galaxy-member level with a defined multiplier.
var MaxLevel = uint64(len(levelMultipliers) - 1)

// GalaxyState is the persistence surface consumed by the member registry.
type GalaxyState interface {
	GalaxySelectedToken(owner common.Address) (uint64, bool, error)
	GalaxySetSelectedToken(owner common.Address, tokenID uint64) error
	GalaxyTokenLevel(tokenID uint64) (uint64, error)
	GalaxySetTokenLevel(tokenID uint64, level uint64) error
	GalaxyAttachedNode(tokenID uint64) (uint64, bool, error)
	GalaxySetAttachedNode(tokenID uint64, nodeID uint64) error
}

// Members tracks galaxy-member NFT selections, levels, and node attachments.
// It backs the reward-multiplier lookups of the voter-rewards accrual.
type Members struct {
	state GalaxyState
}

// NewMembers constructs a member registry without a backend.
func NewMembers() *Members {
	return &Members{}
}

// SetState wires the persistence backend.
func (m *Members) SetState(state GalaxyState) { m.state = state }

// SelectToken records the NFT the owner puts forward for reward boosts.
func (m *Members) SelectToken(owner common.Address, tokenID uint64) error {
	if m == nil || m.state == nil {
		return ErrStateNotConfigured
	}
	if owner == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := m.state.GalaxySetSelectedToken(owner, tokenID); err != nil {
		return fmt.Errorf("identity: persist token selection: %w", err)
	}
	return nil
}

// SetTokenLevel records the NFT's upgrade level.
func (m *Members) SetTokenLevel(tokenID uint64, level uint64) error {
	if m == nil || m.state == nil {
		return ErrStateNotConfigured
	}
	if level == 0 || level > MaxLevel {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if err := m.state.GalaxySetTokenLevel(tokenID, level); err != nil {
		return fmt.Errorf("identity: persist token level: %w", err)
	}
	return nil
}

// AttachNode binds a delegation node to the NFT.
func (m *Members) AttachNode(tokenID uint64, nodeID uint64) error {
	if m == nil || m.state == nil {
		return ErrStateNotConfigured
	}
	if err := m.state.GalaxySetAttachedNode(tokenID, nodeID); err != nil {
		return fmt.Errorf("identity: persist node attachment: %w", err)
	}
	return nil
}

// SelectedToken returns the owner's selected NFT, if any.
func (m *Members) SelectedToken(owner common.Address) (uint64, bool, error) {
	if m == nil || m.state == nil {
		return 0, false, ErrStateNotConfigured
	}
	return m.state.GalaxySelectedToken(owner)
}

// LevelMultiplier returns the reward multiplier in percent for the NFT's
// current level. Unknown tokens boost nothing.
func (m *Members) LevelMultiplier(tokenID uint64) (uint64, error) {
	if m == nil || m.state == nil {
		return 0, ErrStateNotConfigured
	}
	level, err := m.state.GalaxyTokenLevel(tokenID)
	if err != nil {
		return 0, err
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelMultipliers[level], nil
}

// AttachedNode returns the delegation node bound to the NFT, if any.
func (m *Members) AttachedNode(tokenID uint64) (uint64, bool, error) {
	if m == nil || m.state == nil {
		return 0, false, ErrStateNotConfigured
	}
	return m.state.GalaxyAttachedNode(tokenID)
}
