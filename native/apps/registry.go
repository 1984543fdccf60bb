package apps

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"vebetterdao/core/events"
	"vebetterdao/native/checkpoints"
)

// PercentDenominator bounds whole-percent app parameters.
const PercentDenominator = 100

// App is an ecosystem application competing for allocation-round votes. The id
// is the keccak hash of the name, so names are unique by construction.
type App struct {
	ID                       common.Hash
	Name                     string
	Admin                    common.Address
	TeamWallet               common.Address
	TeamAllocationPercentage uint64
	MetadataURI              string
	CreatedAtBlock           uint64
}

// Clone returns a copy of the app record.
func (a *App) Clone() *App {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// AppID derives the canonical id for an app name.
func AppID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// RegistryState is the persistence contract for app records and their
// checkpointed eligibility flags.
type RegistryState interface {
	AppsGet(id common.Hash) (*App, bool, error)
	AppsPut(app *App) error
	AppsAll() ([]common.Hash, error)
	AppsEligibilityFlag(id common.Hash) (*checkpoints.Flag, error)
	AppsPutEligibilityFlag(id common.Hash, flag *checkpoints.Flag) error
}

// Registry manages app registration, team-split settings, and the
// checkpointed voting-eligibility flags consumed by round snapshots.
type Registry struct {
	state   RegistryState
	emitter events.Emitter
	blockFn func() uint64
}

// NewRegistry constructs a registry with no-op dependencies.
func NewRegistry() *Registry {
	return &Registry{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
	}
}

// SetState wires the persistence backend.
func (r *Registry) SetState(state RegistryState) { r.state = state }

// SetEmitter configures the event emitter. Nil resets to a no-op emitter.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetBlockFunc overrides the block height source.
func (r *Registry) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		r.blockFn = func() uint64 { return 0 }
		return
	}
	r.blockFn = fn
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

// Register admits a new app and marks it voting-eligible from the current
// block onward.
func (r *Registry) Register(name string, admin, teamWallet common.Address, metadataURI string) (common.Hash, error) {
	if r == nil || r.state == nil {
		return common.Hash{}, ErrStateNotConfigured
	}
	if name == "" {
		return common.Hash{}, ErrInvalidName
	}
	if admin == (common.Address{}) || teamWallet == (common.Address{}) {
		return common.Hash{}, ErrZeroAddress
	}
	id := AppID(name)
	if _, exists, err := r.state.AppsGet(id); err != nil {
		return common.Hash{}, err
	} else if exists {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrAppExists, name)
	}
	block := r.blockFn()
	app := &App{
		ID:             id,
		Name:           name,
		Admin:          admin,
		TeamWallet:     teamWallet,
		MetadataURI:    metadataURI,
		CreatedAtBlock: block,
	}
	if err := r.state.AppsPut(app); err != nil {
		return common.Hash{}, err
	}
	flag, err := r.state.AppsEligibilityFlag(id)
	if err != nil {
		return common.Hash{}, err
	}
	if _, err := flag.Set(block, true); err != nil {
		return common.Hash{}, err
	}
	if err := r.state.AppsPutEligibilityFlag(id, flag); err != nil {
		return common.Hash{}, err
	}
	e := events.FlagToggled{Kind: events.EventAppEligibilityUpdated, Block: block, Current: true}
	r.emit(e)
	return id, nil
}

// Get loads an app record by id.
func (r *Registry) Get(id common.Hash) (*App, error) {
	if r == nil || r.state == nil {
		return nil, ErrStateNotConfigured
	}
	app, exists, err := r.state.AppsGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, id.Hex())
	}
	return app.Clone(), nil
}

// AppExists reports whether the id names a registered app.
func (r *Registry) AppExists(id common.Hash) (bool, error) {
	if r == nil || r.state == nil {
		return false, ErrStateNotConfigured
	}
	_, exists, err := r.state.AppsGet(id)
	return exists, err
}

// TeamWalletAddress returns the app's payout wallet.
func (r *Registry) TeamWalletAddress(id common.Hash) (common.Address, error) {
	app, err := r.Get(id)
	if err != nil {
		return common.Address{}, err
	}
	return app.TeamWallet, nil
}

// TeamAllocationPercentage returns the app's team cut in whole percent.
func (r *Registry) TeamAllocationPercentage(id common.Hash) (uint64, error) {
	app, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return app.TeamAllocationPercentage, nil
}

// SetTeamAllocationPercentage updates the team cut. The new value applies to
// claims computed after the update, including unclaimed past rounds.
func (r *Registry) SetTeamAllocationPercentage(id common.Hash, percentage uint64) error {
	if r == nil || r.state == nil {
		return ErrStateNotConfigured
	}
	if percentage > PercentDenominator {
		return fmt.Errorf("%w: %d", ErrInvalidPercentage, percentage)
	}
	app, err := r.Get(id)
	if err != nil {
		return err
	}
	previous := app.TeamAllocationPercentage
	app.TeamAllocationPercentage = percentage
	if err := r.state.AppsPut(app); err != nil {
		return err
	}
	r.emit(events.ThresholdUpdated{
		Kind:     events.EventTeamPercentageUpdated,
		Previous: new(big.Int).SetUint64(previous),
		Current:  new(big.Int).SetUint64(percentage),
	})
	return nil
}

// SetTeamWallet updates the app's payout wallet.
func (r *Registry) SetTeamWallet(id common.Hash, wallet common.Address) error {
	if r == nil || r.state == nil {
		return ErrStateNotConfigured
	}
	if wallet == (common.Address{}) {
		return ErrZeroAddress
	}
	app, err := r.Get(id)
	if err != nil {
		return err
	}
	app.TeamWallet = wallet
	return r.state.AppsPut(app)
}

// SetVotingEligibility checkpoints the app's eligibility at the current block.
// Rounds already snapshotted keep their frozen eligible set.
func (r *Registry) SetVotingEligibility(id common.Hash, eligible bool) error {
	if r == nil || r.state == nil {
		return ErrStateNotConfigured
	}
	if _, err := r.Get(id); err != nil {
		return err
	}
	flag, err := r.state.AppsEligibilityFlag(id)
	if err != nil {
		return err
	}
	block := r.blockFn()
	previous, err := flag.Set(block, eligible)
	if err != nil {
		return err
	}
	if err := r.state.AppsPutEligibilityFlag(id, flag); err != nil {
		return err
	}
	r.emit(events.FlagToggled{
		Kind:     events.EventAppEligibilityUpdated,
		Block:    block,
		Previous: previous,
		Current:  eligible,
	})
	return nil
}

// IsEligibleAt reports the app's checkpointed eligibility as of the timepoint.
func (r *Registry) IsEligibleAt(id common.Hash, timepoint uint64) (bool, error) {
	if r == nil || r.state == nil {
		return false, ErrStateNotConfigured
	}
	flag, err := r.state.AppsEligibilityFlag(id)
	if err != nil {
		return false, err
	}
	return flag.EnabledAt(timepoint), nil
}

// AllEligibleApps returns the ids of every app eligible as of the timepoint.
// Round snapshots freeze this set at round creation.
func (r *Registry) AllEligibleApps(timepoint uint64) ([]common.Hash, error) {
	if r == nil || r.state == nil {
		return nil, ErrStateNotConfigured
	}
	ids, err := r.state.AppsAll()
	if err != nil {
		return nil, err
	}
	eligible := make([]common.Hash, 0, len(ids))
	for _, id := range ids {
		ok, err := r.IsEligibleAt(id, timepoint)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, id)
		}
	}
	return eligible, nil
}
