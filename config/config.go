package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug                       = "debug"
	ConfigCPUProfile                  = "cpu-profile"
	ConfigMemProfile                  = "mem-profile"
	ConfigRulesetPath                 = "ruleset-path"
	ConfigThreads                     = "threads"
	ConfigSamples                     = "samples"
	ConfigDepthThreshold              = "depth-threshold"
	ConfigIterationMode               = "iteration-mode"
	ConfigBranching                   = "branching"
	ConfigSnapshotCache               = "snapshot-cache"
	ConfigAlphaBeta                   = "alpha-beta"
	ConfigStrategy                    = "strategy"
	ConfigSnapshotTableMemoryFraction = "snapshot-table-memory-fraction"
	ConfigSimLogPath                  = "sim-log-path"
	ConfigSeed                        = "seed"
)

// Config wraps viper. Values come, in increasing priority, from defaults,
// SCHAFKOPF_* environment variables and command line flags.
type Config struct {
	sync.Mutex
	*viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.SetEnvPrefix("schafkopf")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("schafkopf", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.String(ConfigRulesetPath, "./data/rulesets/default.toml", "TOML file with the house rules")
	fs.Int(ConfigThreads, 1, "search threads")
	fs.Int(ConfigSamples, 200, "sampled deals per question")
	fs.Int(ConfigDepthThreshold, 3, "enumerate deals once the hand has at most this many cards")
	fs.String(ConfigIterationMode, "auto", "how hidden hands are generated: auto, enumerate or sample")
	fs.String(ConfigBranching, "equiv5", "filter below the root: none, oracle or equivN")
	fs.Bool(ConfigSnapshotCache, true, "cache searched positions")
	fs.Bool(ConfigAlphaBeta, false, "use alpha-beta where the contract has parties")
	fs.String(ConfigStrategy, "selfish-min", "strategy that ranks the cards")
	fs.Float64(ConfigSnapshotTableMemoryFraction, 0.25, "share of system memory for the snapshot tables")
	fs.String(ConfigSimLogPath, "", "file that receives one yaml document per searched deal")
	fs.String(ConfigSeed, "", "seed for reproducible sampling")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	return c.BindPFlags(fs)
}

// Args are the command line arguments left after the flags.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths resolves relative file settings against basePath,
// normally the directory of the executable.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigRulesetPath} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(basePath, p))
	}
}

// SanitizedSettings is every setting in a form fit for logging.
func (c *Config) SanitizedSettings() map[string]any {
	ret := make(map[string]any)
	for _, key := range c.AllKeys() {
		ret[key] = c.Get(key)
	}
	return ret
}

func (c *Config) String() string {
	return fmt.Sprint(c.SanitizedSettings())
}
