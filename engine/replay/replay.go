// Package replay is a deterministic stress-test harness for the
// fuzzing loop, in the same spirit as store/fuzz/fuzz.go: a single
// byte source (RANDFILE) drives every random decision, so a failing
// run can be replayed exactly by pointing at the same file again.
// Where the teacher drives randomized transaction/block generation
// for its data tree, this package drives randomized shard
// configurations and in-memory target behavior for the fuzzing loop.
package replay

import (
	"context"

	"github.com/coinexchain/randsrc"

	"github.com/moeing-labs/centifuzz/config"
	"github.com/moeing-labs/centifuzz/engine"
	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/feature"
	"github.com/moeing-labs/centifuzz/storage/localfs"
	"go.uber.org/zap"
)

// ScenarioConfig bounds how large a generated scenario may be, the
// randsrc analogue of the teacher's FuzzConfig.
type ScenarioConfig struct {
	MaxNumRuns   uint32
	MaxBatchSize uint32
	MaxShards    uint32
}

// DefaultScenarioConfig returns modest bounds suitable for a quick
// stress pass.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{MaxNumRuns: 500, MaxBatchSize: 40, MaxShards: 4}
}

// GenerateEnvironment draws a randomized, always-valid Environment
// from rs.
func GenerateEnvironment(rs randsrc.RandSrc, cfg ScenarioConfig, workdir string) config.Environment {
	env := config.Default()
	env.Binary = "stub-target"
	env.Workdir = workdir
	env.Seed = rs.GetUint64()
	env.TotalShards = 1 + int(rs.GetUint32()%cfg.MaxShards)
	env.MyShardIndex = int(rs.GetUint32()) % env.TotalShards
	env.BatchSize = 1 + int(rs.GetUint32()%cfg.MaxBatchSize)
	env.MutateBatchSize = 1 + int(rs.GetUint32()%10)
	env.NumRuns = 1 + int(rs.GetUint32()%cfg.MaxNumRuns)
	env.UseCorpusWeights = rs.GetUint32()%2 == 0
	env.UsePCPairFeatures = rs.GetUint32()%2 == 0
	env.UseCoverageFrontier = rs.GetUint32()%2 == 0
	env.PruneFrequency = 1 + int(rs.GetUint32()%50)
	env.MaxCorpusSize = 10 + int(rs.GetUint32()%200)
	return env
}

// randomizedExecutor assigns each never-before-seen input a fresh
// feature drawn from a bounded space, so distinct scenarios still
// converge (feature space collisions are expected and harmless).
type randomizedExecutor struct {
	rs      randsrc.RandSrc
	spaceSz uint64
	seen    map[string]uint64
}

func newRandomizedExecutor(rs randsrc.RandSrc, spaceSz uint64) *randomizedExecutor {
	return &randomizedExecutor{rs: rs, spaceSz: spaceSz, seen: make(map[string]uint64)}
}

func (e *randomizedExecutor) Execute(ctx context.Context, binary string, inputs [][]byte) (execproto.BatchResult, bool) {
	results := make([]execproto.InputResult, len(inputs))
	for i, in := range inputs {
		key := string(in)
		f, ok := e.seen[key]
		if !ok {
			f = feature.PCFeature(e.rs.GetUint64() % e.spaceSz)
			e.seen[key] = f
		}
		results[i] = execproto.InputResult{Features: []uint64{f}}
	}
	return execproto.BatchResult{Results: results, NumOutputsRead: len(inputs)}, true
}

// RunOneScenario builds a Loop from a randomly generated Environment
// and runs it to completion, returning the final corpus size. It
// returns an error only when the workdir cannot be opened: any
// configuration GenerateEnvironment can produce is expected to run
// cleanly, which is exactly the property this harness exists to
// stress.
func RunOneScenario(rs randsrc.RandSrc, cfg ScenarioConfig, workdir string) (numActive int, err error) {
	env := GenerateEnvironment(rs, cfg, workdir)
	fb, err := localfs.New(workdir)
	if err != nil {
		return 0, err
	}
	exec := newRandomizedExecutor(rs, 4096)
	l := engine.NewLoop(env, exec, fb, zap.NewNop())
	l.Run(context.Background())
	return l.NumActiveForTest(), nil
}
