package engine

import (
	"context"

	"github.com/moeing-labs/centifuzz/telemetry"
	"go.uber.org/zap"
)

// crossoverLevel is the percentage chance MutateMany crosses two
// corpus inputs before mutating, matching the modest crossover rate
// libFuzzer-style engines default to.
const crossoverLevel = 10

// runMainLoop runs batches until num_runs inputs have been attempted
// or an early exit is requested, and reports whether any batch
// crashed. It always checks EarlyExitRequested before starting
// another batch and between grading steps, per spec §4.7's
// cancellation semantics.
func (l *Loop) runMainLoop(ctx context.Context) (crashed bool) {
	batches := (l.env.NumRuns + l.env.BatchSize - 1) / l.env.BatchSize
	for batchIndex := 0; batchIndex < batches; batchIndex++ {
		if requested, _ := l.EarlyExitRequested(); requested {
			return crashed
		}
		if l.runBatch(ctx, batchIndex) {
			crashed = true
			if l.env.ExitOnCrash {
				l.RequestEarlyExit(1)
				return crashed
			}
		}
	}
	return crashed
}

// runBatch executes one batch of mutate -> execute -> grade, and
// returns true if the primary or an extra binary reported a failure.
func (l *Loop) runBatch(ctx context.Context, batchIndex int) (crashed bool) {
	var mutants [][]byte
	var seedCmpArgs []byte

	l.timer.Track("mutate", func() {
		seeds := l.pickSeeds()
		if len(seeds) > 0 {
			seedCmpArgs = seeds[0].CmpArgs
		}
		if len(seedCmpArgs) > 0 {
			l.mut.SetCmpDictionary(seedCmpArgs)
		}
		inputs := make([][]byte, len(seeds))
		for i, s := range seeds {
			inputs[i] = s.Input
		}
		l.mut.MutateMany(inputs, l.env.BatchSize, crossoverLevel, &mutants)
	})

	var newCoverage bool
	l.timer.Track("execute", func() {
		res, ok := l.exec.Execute(ctx, l.env.Binary, mutants)
		if !ok {
			crashed = true
			l.reportCrash(ctx, l.env.Binary, mutants, res)
		}
		for _, extra := range l.env.ExtraBinaries {
			extraRes, extraOK := l.exec.Execute(ctx, extra, mutants)
			if !extraOK {
				crashed = true
				l.reportCrash(ctx, extra, mutants, extraRes)
			}
		}
		if !ok {
			return
		}
		l.timer.Track("grade", func() {
			for i, r := range res.Results {
				if requested, _ := l.EarlyExitRequested(); requested {
					return
				}
				if i >= len(mutants) {
					break
				}
				if l.gradeOne(ctx, mutants[i], r) {
					newCoverage = true
				}
			}
		})
	})

	if newCoverage || telemetry.DumpTelemetryForThisBatch(batchIndex) {
		l.logger.Info("batch stats",
			zap.Int("batch", batchIndex),
			zap.Int("num_active", l.corpus.NumActive()),
			zap.Int("num_total", l.corpus.NumTotal()),
			zap.Bool("new_coverage", newCoverage))
	}

	if l.env.TotalShards > 1 && l.env.LoadOtherShardFrequency > 0 && batchIndex != 0 && batchIndex%l.env.LoadOtherShardFrequency == 0 {
		l.absorbPeerShard()
	}

	if l.corpus.NumActive()-l.numActiveAtLastPrune > l.env.PruneFrequency && l.env.PruneFrequency > 0 {
		if l.env.UseCoverageFrontier {
			l.frontier.Compute(l.corpus)
		}
		l.corpus.Prune(l.fs, l.frontier, l.env.MaxCorpusSize, l.rng)
		l.numActiveAtLastPrune = l.corpus.NumActive()
	}

	if telemetry.DumpTelemetryForThisBatch(batchIndex) {
		l.dumpTelemetry(batchIndex)
	}

	return crashed
}

// pickSeeds draws mutate_batch_size inputs from the corpus, weighted
// or uniform per env.UseCorpusWeights.
func (l *Loop) pickSeeds() []seedRecord {
	n := l.env.MutateBatchSize
	seeds := make([]seedRecord, 0, n)
	for i := 0; i < n; i++ {
		var rec, ok = l.corpus.UniformRandom(l.rng)
		if l.env.UseCorpusWeights {
			rec, ok = l.corpus.WeightedRandom(l.rng)
		}
		if !ok {
			break
		}
		seeds = append(seeds, seedRecord{Input: rec.Input, CmpArgs: rec.CmpArgs})
	}
	return seeds
}

type seedRecord struct {
	Input   []byte
	CmpArgs []byte
}
