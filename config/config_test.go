package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8669", cfg.RPCAddress)
	require.Equal(t, "vebetterdao-local", cfg.NetworkName)
	require.NotEmpty(t, cfg.Emissions.InitialXAllocation)
}

func TestLoadAppliesDefaultsToSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("Owner = \"0x1111111111111111111111111111111111111111\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8669", cfg.RPCAddress)
	require.Equal(t, "./vebetterdao-data", cfg.DataDir)
	require.NoError(t, cfg.Validate())
}

func TestNodeConfigRejectsBadOwner(t *testing.T) {
	cfg := Default()
	cfg.Owner = "not-an-address"
	_, err := cfg.NodeConfig()
	require.ErrorContains(t, err, "Owner")
}

func TestNodeConfigRejectsBadAmount(t *testing.T) {
	cfg := Default()
	cfg.Owner = "0x1111111111111111111111111111111111111111"
	cfg.Emissions.InitialXAllocation = "twelve"
	_, err := cfg.NodeConfig()
	require.ErrorContains(t, err, "InitialXAllocation")
}

func TestNodeConfigRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Owner = "0x1111111111111111111111111111111111111111"

	nodeCfg, err := cfg.NodeConfig()
	require.NoError(t, err)
	require.Equal(t, cfg.Emissions.CycleDuration, nodeCfg.Emissions.CycleDuration)
	require.Equal(t, cfg.Allocation.QuorumNumerator, nodeCfg.Allocation.QuorumNumerator)
	require.Equal(t, cfg.Governance.TimelockDelay, nodeCfg.Governance.TimelockDelay)
	require.Equal(t, "2000000000000000000000000", nodeCfg.Emissions.InitialXAllocation.String())
}
