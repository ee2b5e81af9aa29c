// Package engine implements the per-shard fuzzing loop (spec §4.7):
// startup shard loading, batch mutation and execution, grading
// through the feature set and corpus, peer-shard absorption, pruning,
// and crash reporting. One Loop runs single-threaded inside one OS
// process, mirroring moeingads.go's own single-writer, no-internal-
// goroutines design for its data tree.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/moeing-labs/centifuzz/config"
	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/feature"
	"github.com/moeing-labs/centifuzz/mutator"
	"github.com/moeing-labs/centifuzz/shardio"
	"github.com/moeing-labs/centifuzz/shardrng"
	"github.com/moeing-labs/centifuzz/telemetry"
	"go.uber.org/zap"
)

// noExitRequested is the sentinel meaning request_early_exit has not
// been called yet.
const noExitRequested = -1

// dummyValidInput is the fixed warmup payload executed once at
// startup and inserted into an empty corpus, matching spec §4.7's
// "dummy valid input" step.
var dummyValidInput = []byte{0}

// Loop owns everything one shard process needs across its lifetime.
type Loop struct {
	env    config.Environment
	exec   execproto.Executor
	fb     execproto.FileBackend
	logger *zap.Logger
	timer  *telemetry.PhaseTimer

	fs       *feature.Set
	corpus   *feature.Corpus
	frontier feature.Frontier
	mut      *mutator.Mutator
	writer   *shardio.Writer
	rng      *shardrng.RNG

	binaryHash string
	paths      config.ShardPaths

	numActiveAtLastPrune int
	crashReportCount     int
	seenPairs            map[uint64]struct{}
	functionFilter       functionFilter

	earlyExit atomic.Int32
}

// NewLoop wires a Loop from its collaborators. binaryHash identifies
// the target binary (spec §6's work directory layout keys files by
// it); centifuzz derives it as the content hash of the binary path
// string rather than hashing the binary's bytes, since Executor does
// not expose the binary's contents to this package.
func NewLoop(env config.Environment, exec execproto.Executor, fb execproto.FileBackend, logger *zap.Logger) *Loop {
	binaryHash := shardrng.Hash([]byte(env.Binary))
	l := &Loop{
		env:        env,
		exec:       exec,
		fb:         fb,
		logger:     logger,
		timer:      telemetry.NewPhaseTimer(),
		fs:         feature.NewSet(uint8(env.FeatureFrequencyThreshold)),
		corpus:     feature.NewCorpus(),
		mut:        mutator.New(mutator.DefaultKnobs(), seedFor(env)),
		rng:        shardrng.New(seedFor(env) ^ 0xA5A5A5A5),
		binaryHash: binaryHash,
		paths:          env.Paths(binaryHash, env.MyShardIndex),
		seenPairs:      make(map[uint64]struct{}),
		functionFilter: newFunctionFilter(env.FunctionFilter),
	}
	l.earlyExit.Store(noExitRequested)
	if env.UseCoverageFrontier {
		l.frontier = newDefaultFrontier()
	} else {
		l.frontier = feature.NoFrontier{}
	}
	l.writer = shardio.NewWriter(fb, l.paths.Corpus, l.paths.Features)
	return l
}

func seedFor(env config.Environment) uint64 {
	return env.Seed ^ (uint64(env.MyShardIndex) << 32)
}

// RequestEarlyExit is safe to call from a signal handler: it only
// performs a single atomic store. code must be non-zero.
func (l *Loop) RequestEarlyExit(code int) {
	if code == 0 {
		code = 1
	}
	l.earlyExit.CompareAndSwap(noExitRequested, int32(code))
}

// EarlyExitRequested reports whether an early exit was requested and,
// if so, the code it was requested with.
func (l *Loop) EarlyExitRequested() (bool, int) {
	v := l.earlyExit.Load()
	if v == noExitRequested {
		return false, 0
	}
	return true, int(v)
}

// Run executes the full startup sequence and main loop, always
// finalizing with a telemetry dump and an "end-fuzz" log line even on
// early exit, and returns the process exit code (spec §6).
func (l *Loop) Run(ctx context.Context) int {
	defer l.finalize()

	if err := l.env.Validate(); err != nil {
		l.logger.Error("configuration error", zap.Error(err))
		return 2
	}

	l.runStartup(ctx)

	crashed := l.runMainLoop(ctx)

	if requested, code := l.EarlyExitRequested(); requested {
		return code
	}
	if crashed {
		return 1
	}
	return 0
}

func (l *Loop) finalize() {
	l.writer.Sync()
	stats := feature.Stats{NumActive: l.corpus.NumActive(), NumTotal: l.corpus.NumTotal()}
	_ = telemetry.DumpCorpusStats(l.fb, l.env.Workdir, l.annotation(), telemetry.CorpusStats{
		NumActive:   stats.NumActive,
		NumTotal:    stats.NumTotal,
		NumFeatures: l.fs.Size(),
		CoveragePCs: len(l.fs.ToCoveragePCs()),
		Experiment:  l.env.ExperimentName,
	})
	_ = telemetry.DumpRusageReport(l.fb, l.env.Workdir, l.annotation(), l.timer.Snapshot())
	l.logger.Info("end-fuzz",
		zap.Int("num_active", stats.NumActive),
		zap.Int("num_total", stats.NumTotal))
}

// NumActiveForTest exposes the corpus's active record count for
// harnesses (engine/replay) that need to assert on the outcome of a
// full run without reaching into Loop's internals.
func (l *Loop) NumActiveForTest() int {
	return l.corpus.NumActive()
}

func (l *Loop) annotation() string {
	if l.env.ExperimentName != "" {
		return l.env.ExperimentName
	}
	return fmt.Sprintf("%s.%d", l.binaryHash, l.env.MyShardIndex)
}
