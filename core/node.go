package core

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"vebetterdao/core/events"
	"vebetterdao/core/identity"
	"vebetterdao/core/state"
	"vebetterdao/core/token"
	"vebetterdao/native/allocation"
	"vebetterdao/native/allocpool"
	"vebetterdao/native/apps"
	"vebetterdao/native/auth"
	"vebetterdao/native/emissions"
	"vebetterdao/native/governance"
	"vebetterdao/native/timelock"
	"vebetterdao/native/voterrewards"
	"vebetterdao/storage"
	"vebetterdao/storage/trie"
)

// ModuleAddress derives a deterministic account address for a protocol module.
func ModuleAddress(name string) common.Address {
	hash := ethcrypto.Keccak256([]byte("vebetterdao/module/" + name))
	return common.BytesToAddress(hash[12:])
}

// Protocol-owned accounts. Emission mints land on the pool accounts; engines
// move funds out of them as claims settle.
var (
	EmissionsAccount    = ModuleAddress("emissions")
	XAllocationsAccount = ModuleAddress("x-allocations-pool")
	Vote2EarnAccount    = ModuleAddress("vote2earn-pool")
	TreasuryAccount     = ModuleAddress("treasury")
	GovernorVault       = ModuleAddress("governor-vault")
	RewardsPotAccount   = ModuleAddress("sustainability-pot")
	MigrationAccount    = ModuleAddress("migration")
)

// Config carries the node's genesis settings.
type Config struct {
	Owner           common.Address
	TokenCap        *big.Int
	InitialBalances map[common.Address]*big.Int
	Emissions       emissions.Params
	Allocation      allocation.Params
	Governance      governance.Params
}

// DefaultConfig returns launch parameters with an unset owner.
func DefaultConfig() Config {
	supplyCap, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	return Config{
		TokenCap:   supplyCap,
		Emissions:  emissions.DefaultParams(),
		Allocation: allocation.DefaultParams(),
		Governance: governance.DefaultParams(),
	}
}

// Node wires the state manager, token ledger, and every protocol engine into
// one facade. All privileged operations check the caller against the
// permission sets before reaching an engine.
type Node struct {
	mu      sync.Mutex
	db      *storage.StateDB
	manager *state.Manager
	root    common.Hash
	height  atomic.Uint64

	bus          *events.Bus
	ledger       *token.Ledger
	apps         *apps.Registry
	emissions    *emissions.Engine
	allocation   *allocation.Engine
	governor     *governance.Engine
	pool         *allocpool.Engine
	rewards      *voterrewards.Engine
	attestations *identity.Attestations
	galaxy       *identity.Members
	timelock     *timelock.Engine
	authorizer   *auth.Authorizer
}

// NewNode opens the state at root (nil for genesis) and wires every engine.
// On genesis the owner receives all permission sets and the configured initial
// balances are minted.
func NewNode(db *storage.StateDB, root []byte, cfg Config) (*Node, error) {
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("core: config owner is required")
	}
	if err := cfg.Emissions.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Allocation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Governance.Validate(); err != nil {
		return nil, err
	}
	tr, err := trie.NewTrie(db, root)
	if err != nil {
		return nil, fmt.Errorf("core: open state trie: %w", err)
	}
	manager := state.NewManager(tr)

	n := &Node{
		db:      db,
		manager: manager,
		bus:     events.NewBus(),
	}
	height, err := manager.ChainHeight()
	if err != nil {
		return nil, err
	}
	n.height.Store(height)
	blockFn := func() uint64 { return n.height.Load() }

	n.ledger = token.NewLedger(cfg.TokenCap)
	n.ledger.SetState(manager)
	n.ledger.SetMinter(EmissionsAccount)
	n.ledger.SetBlockFunc(blockFn)

	n.apps = apps.NewRegistry()
	n.apps.SetState(manager)
	n.apps.SetEmitter(n.bus)
	n.apps.SetBlockFunc(blockFn)

	n.attestations = identity.NewAttestations()
	n.attestations.SetState(manager)
	n.attestations.SetEmitter(n.bus)
	n.attestations.SetBlockFunc(blockFn)

	n.galaxy = identity.NewMembers()
	n.galaxy.SetState(manager)

	n.timelock = timelock.NewEngine()
	n.timelock.SetState(manager)
	n.timelock.SetBlockFunc(blockFn)

	n.authorizer = auth.NewAuthorizer()
	n.authorizer.SetState(manager)

	n.rewards = voterrewards.NewEngine()
	n.rewards.SetState(manager)
	n.rewards.SetGalaxySource(n.galaxy)
	n.rewards.SetFunds(&accountFunds{ledger: n.ledger, account: Vote2EarnAccount})
	n.rewards.SetEmitter(n.bus)
	n.rewards.SetBlockFunc(blockFn)

	n.allocation = allocation.NewEngine(cfg.Allocation)
	n.allocation.SetState(manager)
	n.allocation.SetToken(n.ledger)
	n.allocation.SetAppSource(n.apps)
	n.allocation.SetVoteRegistrar(n.rewards)
	n.allocation.SetEmitter(n.bus)
	n.allocation.SetBlockFunc(blockFn)

	n.emissions = emissions.NewEngine(cfg.Emissions)
	n.emissions.SetState(manager)
	n.emissions.SetMinter(&ledgerMinter{ledger: n.ledger, caller: EmissionsAccount})
	n.emissions.SetRoundStarter(n.allocation)
	n.emissions.SetDestinations(emissions.Destinations{
		XAllocations: XAllocationsAccount,
		Vote2Earn:    Vote2EarnAccount,
		Treasury:     TreasuryAccount,
		Migration:    MigrationAccount,
	})
	n.emissions.SetEmitter(n.bus)
	n.emissions.SetBlockFunc(blockFn)
	n.rewards.SetCycleSource(&cycleSource{engine: n.emissions})

	n.governor = governance.NewEngine(cfg.Governance)
	n.governor.SetState(manager)
	n.governor.SetToken(n.ledger)
	n.governor.SetRoundSource(&roundSource{engine: n.allocation})
	n.governor.SetPersonhood(n.attestations)
	n.governor.SetTimelock(n.timelock)
	n.governor.SetDepositVault(&depositVault{ledger: n.ledger, vault: GovernorVault})
	n.governor.SetVoteRegistrar(n.rewards)
	n.governor.SetEmitter(n.bus)
	n.governor.SetBlockFunc(blockFn)

	n.pool = allocpool.NewEngine()
	n.pool.SetState(manager)
	n.pool.SetRoundReader(n.allocation)
	n.pool.SetEmissionSource(&emissionSource{engine: n.emissions})
	n.pool.SetAppRegistry(n.apps)
	n.pool.SetFunds(&accountFunds{ledger: n.ledger, account: XAllocationsAccount})
	n.pool.SetRewardsSink(&rewardsSink{ledger: n.ledger, pool: XAllocationsAccount, pot: RewardsPotAccount})
	n.pool.SetTreasury(TreasuryAccount)
	n.pool.SetEmitter(n.bus)

	if root == nil {
		if err := n.bootstrapGenesis(cfg); err != nil {
			return nil, err
		}
	} else {
		n.root = common.BytesToHash(root)
	}
	return n, nil
}

func (n *Node) bootstrapGenesis(cfg Config) error {
	for _, permission := range []auth.Permission{
		auth.PermissionEmissionsAdmin,
		auth.PermissionRoundAdmin,
		auth.PermissionGovernorAdmin,
		auth.PermissionAppAdmin,
		auth.PermissionAttestor,
		auth.PermissionTreasury,
	} {
		if err := n.authorizer.Grant(permission, cfg.Owner); err != nil {
			return err
		}
	}
	for addr, amount := range cfg.InitialBalances {
		if err := n.ledger.Mint(EmissionsAccount, addr, amount); err != nil {
			return fmt.Errorf("core: genesis mint: %w", err)
		}
	}
	root, err := n.manager.Commit(common.Hash{}, 0)
	if err != nil {
		return fmt.Errorf("core: commit genesis: %w", err)
	}
	n.root = root
	return n.db.WriteHeadRoot(root.Bytes())
}

// Events exposes the node's event bus for RPC streaming and indexing.
func (n *Node) Events() *events.Bus { return n.bus }

// Height returns the current block height.
func (n *Node) Height() uint64 { return n.height.Load() }

// Root returns the last committed state root.
func (n *Node) Root() common.Hash {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.root
}

// AdvanceBlock moves the chain one block forward, distributes a due emission
// cycle, and commits the state. The emissions module itself proposes rounds
// opened by scheduled distributions.
func (n *Node) AdvanceBlock() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	height := n.height.Load() + 1
	n.height.Store(height)
	if err := n.manager.SetChainHeight(height); err != nil {
		n.height.Store(height - 1)
		return 0, err
	}
	due, err := n.emissions.Distributable()
	if err != nil {
		n.height.Store(height - 1)
		return 0, fmt.Errorf("core: check distribution schedule: %w", err)
	}
	if due {
		if _, err := n.emissions.Distribute(EmissionsAccount); err != nil {
			n.height.Store(height - 1)
			return 0, fmt.Errorf("core: scheduled distribution: %w", err)
		}
	}
	root, err := n.manager.Commit(n.root, height)
	if err != nil {
		n.height.Store(height - 1)
		return 0, fmt.Errorf("core: commit block %d: %w", height, err)
	}
	n.root = root
	if err := n.db.WriteHeadRoot(root.Bytes()); err != nil {
		return 0, fmt.Errorf("core: record head root: %w", err)
	}
	return height, nil
}

// --- emissions ---

func (n *Node) BootstrapEmissions(caller common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionEmissionsAdmin); err != nil {
		return err
	}
	return n.emissions.Bootstrap()
}

func (n *Node) StartEmissions(caller common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionEmissionsAdmin); err != nil {
		return err
	}
	return n.emissions.Start(caller)
}

func (n *Node) DistributeEmissions(caller common.Address) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionEmissionsAdmin); err != nil {
		return 0, err
	}
	return n.emissions.Distribute(caller)
}

func (n *Node) CurrentCycle() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.emissions.CurrentCycle()
}

func (n *Node) CycleAmounts(cycle uint64) (*emissions.CycleAmounts, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.emissions.CycleAmountsFor(cycle)
}

func (n *Node) TotalEmissions() (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.emissions.TotalEmissions()
}

// --- allocation rounds ---

func (n *Node) StartRound(caller common.Address) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionRoundAdmin); err != nil {
		return 0, err
	}
	return n.allocation.StartNewRound(caller)
}

func (n *Node) CurrentRoundID() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.CurrentRoundID()
}

func (n *Node) GetRound(id uint64) (*allocation.Round, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.GetRound(id)
}

func (n *Node) RoundState(id uint64) (allocation.RoundState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.RoundStateOf(id)
}

func (n *Node) FinalizeRound(id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.FinalizeRound(id)
}

func (n *Node) CastAllocationVotes(roundID uint64, voter common.Address, appIDs []common.Hash, weights []*big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.CastVotes(roundID, voter, appIDs, weights)
}

func (n *Node) RoundAppVotes(roundID uint64, appID common.Hash) (*allocation.AppVotes, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.AppVotesOf(roundID, appID)
}

func (n *Node) RoundTotals(roundID uint64) (*big.Int, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.RoundTotals(roundID)
}

func (n *Node) HasVotedInRound(roundID uint64, voter common.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocation.HasVoted(roundID, voter)
}

func (n *Node) UpdateAllocationQuorum(caller common.Address, numerator uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return err
	}
	return n.allocation.UpdateQuorumNumerator(numerator)
}

// --- governance ---

func (n *Node) Propose(proposer common.Address, targets []common.Address, values []*big.Int, calldatas [][]byte, description string, startRound uint64) (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Propose(proposer, targets, values, calldatas, description, startRound)
}

func (n *Node) DepositForProposal(id common.Hash, depositor common.Address, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Deposit(id, depositor, amount)
}

func (n *Node) WithdrawProposalDeposit(id common.Hash, depositor common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.WithdrawDeposit(id, depositor)
}

func (n *Node) CastGovernanceVote(id common.Hash, voter common.Address, support governance.VoteSupport, reason string) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.CastVote(id, voter, support, reason)
}

func (n *Node) ProposalState(id common.Hash) (governance.ProposalState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.State(id)
}

func (n *Node) GetProposal(id common.Hash) (*governance.Proposal, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.GetProposal(id)
}

func (n *Node) ProposalVotes(id common.Hash) (*governance.ProposalVotes, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Votes(id)
}

func (n *Node) QueueProposal(id common.Hash) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Queue(id)
}

func (n *Node) ExecuteProposal(id common.Hash) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Execute(id)
}

func (n *Node) CancelProposal(id common.Hash, caller common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governor.Cancel(id, caller)
}

func (n *Node) ToggleQuadraticVoting(caller common.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return false, err
	}
	return n.governor.ToggleQuadraticVoting()
}

func (n *Node) UpdateGovernanceQuorum(caller common.Address, numerator uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return err
	}
	return n.governor.UpdateQuorumNumerator(numerator)
}

// --- allocation pool ---

func (n *Node) AppEarnings(roundID uint64, appID common.Hash) (*allocpool.Earnings, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.ClaimableAmount(roundID, appID)
}

func (n *Node) ClaimAppEarnings(roundID uint64, appID common.Hash) (*allocpool.Earnings, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Claim(roundID, appID)
}

func (n *Node) AppEarningsClaimed(roundID uint64, appID common.Hash) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Claimed(roundID, appID)
}

// --- voter rewards ---

func (n *Node) VoterRewardAmount(cycle uint64, voter common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rewards.RewardAmount(cycle, voter)
}

func (n *Node) ClaimVoterReward(cycle uint64, voter common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rewards.ClaimReward(cycle, voter)
}

func (n *Node) ToggleQuadraticRewarding(caller common.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return false, err
	}
	return n.rewards.ToggleQuadraticRewarding()
}

// --- apps ---

func (n *Node) RegisterApp(caller common.Address, name string, admin, teamWallet common.Address, metadataURI string) (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAppAdmin); err != nil {
		return common.Hash{}, err
	}
	return n.apps.Register(name, admin, teamWallet, metadataURI)
}

func (n *Node) SetAppEligibility(caller common.Address, id common.Hash, eligible bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAppAdmin); err != nil {
		return err
	}
	return n.apps.SetVotingEligibility(id, eligible)
}

func (n *Node) SetAppTeamWallet(caller common.Address, id common.Hash, wallet common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAppAdmin); err != nil {
		return err
	}
	return n.apps.SetTeamWallet(id, wallet)
}

func (n *Node) SetAppTeamPercentage(caller common.Address, id common.Hash, percentage uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAppAdmin); err != nil {
		return err
	}
	return n.apps.SetTeamAllocationPercentage(id, percentage)
}

func (n *Node) GetApp(id common.Hash) (*apps.App, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.apps.Get(id)
}

func (n *Node) EligibleApps(timepoint uint64) ([]common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.apps.AllEligibleApps(timepoint)
}

// --- identity ---

func (n *Node) Attest(caller, subject common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAttestor); err != nil {
		return err
	}
	return n.attestations.Attest(subject)
}

func (n *Node) RevokeAttestation(caller, subject common.Address, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAttestor); err != nil {
		return err
	}
	return n.attestations.Revoke(subject, reason)
}

func (n *Node) IsPerson(subject common.Address) (bool, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attestations.IsPerson(subject)
}

func (n *Node) SelectGalaxyToken(owner common.Address, tokenID uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.galaxy.SelectToken(owner, tokenID)
}

func (n *Node) SetGalaxyTokenLevel(caller common.Address, tokenID, level uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAttestor); err != nil {
		return err
	}
	return n.galaxy.SetTokenLevel(tokenID, level)
}

func (n *Node) AttachGalaxyNode(caller common.Address, tokenID, nodeID uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionAttestor); err != nil {
		return err
	}
	return n.galaxy.AttachNode(tokenID, nodeID)
}

// --- permissions ---

func (n *Node) GrantPermission(caller common.Address, permission auth.Permission, addr common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return err
	}
	return n.authorizer.Grant(permission, addr)
}

func (n *Node) RevokePermission(caller common.Address, permission auth.Permission, addr common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.authorizer.Require(caller, auth.PermissionGovernorAdmin); err != nil {
		return err
	}
	return n.authorizer.Revoke(permission, addr)
}

func (n *Node) HasPermission(permission auth.Permission, addr common.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.authorizer.Has(permission, addr)
}

// --- token ---

func (n *Node) Transfer(from, to common.Address, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Transfer(from, to, amount)
}

func (n *Node) BalanceOf(addr common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.BalanceOf(addr)
}

func (n *Node) TotalSupply() (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.TotalSupply()
}

func (n *Node) VotingPower(addr common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.GetVotes(addr)
}
