// Package config loads the fuzzing environment: the flat set of
// options that governs one shard's run (spec §6). Defaults are filled
// in code; a TOML file, when present, overlays them, in the same
// spirit as the scheduler/gateway components loading .env overlays
// over coded defaults.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Environment is the full set of options recognized by a shard
// process.
type Environment struct {
	Seed   uint64 `toml:"seed"`
	Workdir string `toml:"workdir"`

	Binary        string   `toml:"binary"`
	ExtraBinaries []string `toml:"extra_binaries"`

	TotalShards  int `toml:"total_shards"`
	MyShardIndex int `toml:"my_shard_index"`

	NumRuns         int `toml:"num_runs"`
	BatchSize       int `toml:"batch_size"`
	MutateBatchSize int `toml:"mutate_batch_size"`

	UseCorpusWeights          bool `toml:"use_corpus_weights"`
	FeatureFrequencyThreshold int  `toml:"feature_frequency_threshold"`
	PruneFrequency            int  `toml:"prune_frequency"`
	MaxCorpusSize             int  `toml:"max_corpus_size"`
	UseCoverageFrontier       bool `toml:"use_coverage_frontier"`
	UsePCPairFeatures         bool `toml:"use_pcpair_features"`

	LoadOtherShardFrequency int  `toml:"load_other_shard_frequency"`
	SerializeShardLoads     bool `toml:"serialize_shard_loads"`
	FullSync                bool `toml:"full_sync"`
	DistillShards           bool `toml:"distill_shards"`
	MergeFrom               string `toml:"merge_from"`

	InputFilter    string `toml:"input_filter"`
	ForkServer     bool   `toml:"fork_server"`
	ExitOnCrash    bool   `toml:"exit_on_crash"`
	MaxNumCrashReports int `toml:"max_num_crash_reports"`
	FunctionFilter string `toml:"function_filter"`

	ClangCoverageBinary string `toml:"clang_coverage_binary"`
	CorpusDir           string `toml:"corpus_dir"`
	ExperimentName      string `toml:"experiment_name"`
	LogLevel            string `toml:"log_level"`
}

// Default returns an Environment populated with the same defaults a
// bare invocation would use: one shard, a modest batch size, and the
// frequency threshold prescribed by the feature-set design.
func Default() Environment {
	return Environment{
		Seed:                      1,
		Workdir:                   ".",
		TotalShards:               1,
		MyShardIndex:              0,
		NumRuns:                   1 << 20,
		BatchSize:                 100,
		MutateBatchSize:           10,
		FeatureFrequencyThreshold: 32,
		PruneFrequency:            10000,
		MaxCorpusSize:             1 << 20,
		LoadOtherShardFrequency:   100,
		MaxNumCrashReports:        10,
		LogLevel:                  "info",
	}
}

// Load starts from Default and overlays fields present in the TOML
// file at path. A missing path is not an error: it means "use
// defaults", matching how a shard can be launched with no config file
// at all.
func Load(path string) (Environment, error) {
	env := Default()
	if path == "" {
		return env, nil
	}
	if _, err := toml.DecodeFile(path, &env); err != nil {
		return Environment{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return env, nil
}

// Validate performs the fail-fast configuration checks spec §7
// assigns to construction time: an out-of-range shard index, or a
// binary that was never named, are configuration errors, not runtime
// ones.
func (e Environment) Validate() error {
	if e.Binary == "" {
		return fmt.Errorf("config: binary is required")
	}
	if e.TotalShards <= 0 {
		return fmt.Errorf("config: total_shards must be positive")
	}
	if e.MyShardIndex < 0 || e.MyShardIndex >= e.TotalShards {
		return fmt.Errorf("config: my_shard_index %d out of range [0,%d)", e.MyShardIndex, e.TotalShards)
	}
	if e.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive")
	}
	if e.MutateBatchSize <= 0 {
		return fmt.Errorf("config: mutate_batch_size must be positive")
	}
	return nil
}
