package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Load(nil))
	assert.False(t, cfg.GetBool(ConfigDebug))
	assert.Equal(t, 1, cfg.GetInt(ConfigThreads))
	assert.Equal(t, "equiv5", cfg.GetString(ConfigBranching))
	assert.InDelta(t, 0.25, cfg.GetFloat64(ConfigSnapshotTableMemoryFraction), 1e-9)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SCHAFKOPF_SAMPLES", "50")
	t.Setenv("SCHAFKOPF_THREADS", "2")
	cfg := &Config{}
	require.NoError(t, cfg.Load([]string{"--threads", "8", "--debug", "--alpha-beta"}))
	assert.Equal(t, 8, cfg.GetInt(ConfigThreads))
	assert.Equal(t, 50, cfg.GetInt(ConfigSamples))
	assert.True(t, cfg.GetBool(ConfigDebug))
	assert.True(t, cfg.GetBool(ConfigAlphaBeta))
}

func TestUnknownFlag(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Load([]string{"--players", "5"}))
}

func TestAdjustRelativePaths(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Load([]string{"--ruleset-path", "data/house.toml"}))
	cfg.AdjustRelativePaths("/opt/schafkopf")
	assert.Equal(t, filepath.Join("/opt/schafkopf", "data/house.toml"), cfg.GetString(ConfigRulesetPath))

	require.NoError(t, cfg.Load([]string{"--ruleset-path", "/etc/house.toml"}))
	cfg.AdjustRelativePaths("/opt/schafkopf")
	assert.Equal(t, "/etc/house.toml", cfg.GetString(ConfigRulesetPath))
	assert.Contains(t, cfg.SanitizedSettings(), ConfigRulesetPath)
}

func TestArgs(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Load([]string{"--threads", "4", "--", "rank", "-samples", "10"}))
	assert.Equal(t, []string{"rank", "-samples", "10"}, cfg.Args())
	assert.Equal(t, 4, cfg.GetInt(ConfigThreads))
}
