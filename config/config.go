package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core"
	"vebetterdao/native/allocation"
	"vebetterdao/native/emissions"
	"vebetterdao/native/governance"
)

// Config is the TOML node configuration.
type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	RPCAuthToken   string `toml:"RPCAuthToken"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	NetworkName    string `toml:"NetworkName"`

	Owner    string `toml:"Owner"`
	TokenCap string `toml:"TokenCap"`

	Emissions  EmissionsConfig  `toml:"Emissions"`
	Allocation AllocationConfig `toml:"Allocation"`
	Governance GovernanceConfig `toml:"Governance"`
}

// EmissionsConfig mirrors the emission schedule knobs. Amounts are decimal
// strings so token-scale values survive TOML round-trips.
type EmissionsConfig struct {
	InitialXAllocation     string `toml:"InitialXAllocation"`
	XAllocationDecayRate   uint64 `toml:"XAllocationDecayRate"`
	XAllocationDecayPeriod uint64 `toml:"XAllocationDecayPeriod"`
	Vote2EarnDecayRate     uint64 `toml:"Vote2EarnDecayRate"`
	Vote2EarnDecayPeriod   uint64 `toml:"Vote2EarnDecayPeriod"`
	MaxVote2EarnDecay      uint64 `toml:"MaxVote2EarnDecay"`
	TreasuryPercentage     uint64 `toml:"TreasuryPercentage"`
	CycleDuration          uint64 `toml:"CycleDuration"`
	MigrationAmount        string `toml:"MigrationAmount"`
}

// AllocationConfig mirrors the round parameters.
type AllocationConfig struct {
	VotingPeriod             uint64 `toml:"VotingPeriod"`
	VotingThreshold          string `toml:"VotingThreshold"`
	QuorumNumerator          uint64 `toml:"QuorumNumerator"`
	AppSharesCap             uint64 `toml:"AppSharesCap"`
	BaseAllocationPercentage uint64 `toml:"BaseAllocationPercentage"`
}

// GovernanceConfig mirrors the governor parameters.
type GovernanceConfig struct {
	VotingThreshold     string `toml:"VotingThreshold"`
	QuorumNumerator     uint64 `toml:"QuorumNumerator"`
	DepositThresholdBps uint64 `toml:"DepositThresholdBps"`
	TimelockDelay       uint64 `toml:"TimelockDelay"`
}

// Load reads the configuration at path, creating a default file when none
// exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = defaults.RPCAddress
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = defaults.MetricsAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(c.NetworkName) == "" {
		c.NetworkName = defaults.NetworkName
	}
	if c.Emissions == (EmissionsConfig{}) {
		c.Emissions = defaults.Emissions
	}
	if c.Allocation == (AllocationConfig{}) {
		c.Allocation = defaults.Allocation
	}
	if c.Governance == (GovernanceConfig{}) {
		c.Governance = defaults.Governance
	}
	if strings.TrimSpace(c.TokenCap) == "" {
		c.TokenCap = defaults.TokenCap
	}
}

// Default returns the launch configuration with an unset owner.
func Default() *Config {
	emissionDefaults := emissions.DefaultParams()
	allocationDefaults := allocation.DefaultParams()
	governanceDefaults := governance.DefaultParams()
	return &Config{
		RPCAddress:     ":8669",
		MetricsAddress: ":9464",
		DataDir:        "./vebetterdao-data",
		NetworkName:    "vebetterdao-local",
		TokenCap:       "1000000000000000000000000000",
		Emissions: EmissionsConfig{
			InitialXAllocation:     emissionDefaults.InitialXAllocation.String(),
			XAllocationDecayRate:   emissionDefaults.XAllocationDecayRate,
			XAllocationDecayPeriod: emissionDefaults.XAllocationDecayPeriod,
			Vote2EarnDecayRate:     emissionDefaults.Vote2EarnDecayRate,
			Vote2EarnDecayPeriod:   emissionDefaults.Vote2EarnDecayPeriod,
			MaxVote2EarnDecay:      emissionDefaults.MaxVote2EarnDecay,
			TreasuryPercentage:     emissionDefaults.TreasuryPercentage,
			CycleDuration:          emissionDefaults.CycleDuration,
			MigrationAmount:        emissionDefaults.MigrationAmount.String(),
		},
		Allocation: AllocationConfig{
			VotingPeriod:             allocationDefaults.VotingPeriod,
			VotingThreshold:          allocationDefaults.VotingThreshold.String(),
			QuorumNumerator:          allocationDefaults.QuorumNumerator,
			AppSharesCap:             allocationDefaults.AppSharesCap,
			BaseAllocationPercentage: allocationDefaults.BaseAllocationPercentage,
		},
		Governance: GovernanceConfig{
			VotingThreshold:     governanceDefaults.VotingThreshold.String(),
			QuorumNumerator:     governanceDefaults.QuorumNumerator,
			DepositThresholdBps: governanceDefaults.DepositThresholdBps,
			TimelockDelay:       governanceDefaults.TimelockDelay,
		},
	}
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}

func parseAmount(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("config: %s: invalid amount %q", field, raw)
	}
	return value, nil
}

// Validate checks the configuration without building node parameters.
func (c *Config) Validate() error {
	_, err := c.NodeConfig()
	return err
}

// NodeConfig converts the file representation into the node's typed genesis
// configuration.
func (c *Config) NodeConfig() (core.Config, error) {
	owner := strings.TrimSpace(c.Owner)
	if !common.IsHexAddress(owner) {
		return core.Config{}, fmt.Errorf("config: Owner %q is not a hex address", c.Owner)
	}
	tokenCap, err := parseAmount("TokenCap", c.TokenCap)
	if err != nil {
		return core.Config{}, err
	}
	initial, err := parseAmount("Emissions.InitialXAllocation", c.Emissions.InitialXAllocation)
	if err != nil {
		return core.Config{}, err
	}
	migration, err := parseAmount("Emissions.MigrationAmount", c.Emissions.MigrationAmount)
	if err != nil {
		return core.Config{}, err
	}
	allocationThreshold, err := parseAmount("Allocation.VotingThreshold", c.Allocation.VotingThreshold)
	if err != nil {
		return core.Config{}, err
	}
	governanceThreshold, err := parseAmount("Governance.VotingThreshold", c.Governance.VotingThreshold)
	if err != nil {
		return core.Config{}, err
	}

	cfg := core.Config{
		Owner:    common.HexToAddress(owner),
		TokenCap: tokenCap,
		Emissions: emissions.Params{
			InitialXAllocation:     initial,
			XAllocationDecayRate:   c.Emissions.XAllocationDecayRate,
			XAllocationDecayPeriod: c.Emissions.XAllocationDecayPeriod,
			Vote2EarnDecayRate:     c.Emissions.Vote2EarnDecayRate,
			Vote2EarnDecayPeriod:   c.Emissions.Vote2EarnDecayPeriod,
			MaxVote2EarnDecay:      c.Emissions.MaxVote2EarnDecay,
			TreasuryPercentage:     c.Emissions.TreasuryPercentage,
			CycleDuration:          c.Emissions.CycleDuration,
			MigrationAmount:        migration,
		},
		Allocation: allocation.Params{
			VotingPeriod:             c.Allocation.VotingPeriod,
			VotingThreshold:          allocationThreshold,
			QuorumNumerator:          c.Allocation.QuorumNumerator,
			AppSharesCap:             c.Allocation.AppSharesCap,
			BaseAllocationPercentage: c.Allocation.BaseAllocationPercentage,
		},
		Governance: governance.Params{
			VotingThreshold:     governanceThreshold,
			QuorumNumerator:     c.Governance.QuorumNumerator,
			DepositThresholdBps: c.Governance.DepositThresholdBps,
			TimelockDelay:       c.Governance.TimelockDelay,
		},
	}
	if err := cfg.Emissions.Validate(); err != nil {
		return core.Config{}, err
	}
	if err := cfg.Allocation.Validate(); err != nil {
		return core.Config{}, err
	}
	if err := cfg.Governance.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}
