package engine

import (
	"context"

	"github.com/moeing-labs/centifuzz/feature"
	"github.com/moeing-labs/centifuzz/shardio"
	"go.uber.org/zap"
)

// runStartup performs spec §4.7's startup steps: warmup, shard loading
// (own or full sync/distill), re-execution of inputs with unknown
// features, merge_from absorption, the empty-corpus fallback, and —
// when distilling — writing the distilled corpus.
func (l *Loop) runStartup(ctx context.Context) {
	l.timer.Track("startup", func() {
		l.warmup(ctx)

		var toRerun [][]byte
		if l.env.FullSync || l.env.DistillShards {
			for _, idx := range permutation(l.env.TotalShards, l.rng) {
				l.loadShardInto(idx, &toRerun)
			}
		} else {
			l.loadShardInto(l.env.MyShardIndex, &toRerun)
		}

		l.rerunUnknownFeatures(ctx, toRerun)

		if l.env.MergeFrom != "" {
			l.mergeFromAlternateWorkdir(ctx)
		}

		if l.corpus.NumActive() == 0 {
			l.corpus.Add(dummyValidInput, nil, nil, l.fs, l.frontier)
		}

		if l.env.DistillShards {
			l.distill()
		}
	})
}

func (l *Loop) warmup(ctx context.Context) {
	l.exec.Execute(ctx, l.env.Binary, [][]byte{dummyValidInput})
}

// loadShardInto streams the shard at index idx and admits every input
// with a non-empty feature vector directly. Inputs with empty
// features are queued into toRerun only when idx is our own shard:
// re-executing a peer's unresolved inputs is that peer's own
// responsibility (mirrors engine/peer.go's absorbPeerShard), matching
// LoadShard's rerun=(shard==my_shard_index) gating. Loading a peer
// (idx != our own shard) goes through withShardLoadLock, per
// serialize_shard_loads (spec §5); our own shard's load never
// contends with anything and is never serialized.
func (l *Loop) loadShardInto(idx int, toRerun *[][]byte) {
	paths := l.env.Paths(l.binaryHash, idx)
	isOwnShard := idx == l.env.MyShardIndex

	load := func() {
		err := shardio.ReadShard(l.fb, paths.Corpus, paths.Features, func(input []byte, fv []uint64) {
			if len(fv) == 0 {
				if isOwnShard {
					*toRerun = append(*toRerun, append([]byte(nil), input...))
				}
				return
			}
			l.absorbKnownInput(input, fv, nil)
		})
		if err != nil {
			l.logger.Warn("shard load failed", zap.Int("shard", idx), zap.Error(err))
		}
	}

	if isOwnShard {
		load()
	} else {
		l.withShardLoadLock(load)
	}
}

// absorbKnownInput admits an input whose feature vector is already
// known (loaded from a shard file, ours or a peer's) without
// re-running the target: pruning frequent features and checking for
// new coverage exactly as gradeOne does post-execution, but skipping
// execution and the append-to-own-files step for inputs already on
// disk in our own shard.
func (l *Loop) absorbKnownInput(input []byte, fv []uint64, cmpArgs []byte) {
	fvCopy := append([]uint64(nil), fv...)
	hasUnseen := l.fs.CountUnseenAndPruneFrequent(&fvCopy)
	if !hasUnseen {
		return
	}
	l.fs.IncrementFrequencies(fvCopy)
	l.corpus.Add(input, fvCopy, cmpArgs, l.fs, l.frontier)
}

// rerunUnknownFeatures executes every input queued during shard
// loading in batches of env.BatchSize, appending the recovered
// features to the features file and admitting the input.
func (l *Loop) rerunUnknownFeatures(ctx context.Context, toRerun [][]byte) {
	for start := 0; start < len(toRerun); start += l.env.BatchSize {
		end := start + l.env.BatchSize
		if end > len(toRerun) {
			end = len(toRerun)
		}
		batch := toRerun[start:end]
		res, ok := l.exec.Execute(ctx, l.env.Binary, batch)
		if !ok {
			continue
		}
		for i, r := range res.Results {
			if i >= len(batch) {
				break
			}
			l.writer.AppendFeaturesOnly(batch[i], r.Features)
			l.absorbKnownInput(batch[i], r.Features, r.CmpArgs)
		}
	}
}

// mergeFromAlternateWorkdir loads this shard's own index from an
// alternate workdir and admits whatever it carries that we don't
// already have (spec §4.7 step 4), grounded on ground-truth
// centipede.cc's MergeFromOtherCorpus: it calls the same LoadShard
// used for ordinary shard loading (rerun=true) against the alternate
// workdir, then appends the corpus records LoadShard actually added
// to the raw bytes of our own corpus file. Both admission paths below
// therefore run through the same in-memory-only logic loadShardInto
// uses — never gradeOne — since gradeOne's function/input filters and
// unconditional file writes are RunBatch-only machinery that a
// straight LoadShard callback never invokes.
func (l *Loop) mergeFromAlternateWorkdir(ctx context.Context) {
	paths := l.env.MergePaths(l.binaryHash)

	before := l.corpus.NumActive()

	var toRerun [][]byte
	err := shardio.ReadShard(l.fb, paths.Corpus, paths.Features, func(input []byte, fv []uint64) {
		if len(fv) == 0 {
			toRerun = append(toRerun, append([]byte(nil), input...))
			return
		}
		l.absorbKnownInput(input, fv, nil)
	})
	if err != nil {
		l.logger.Warn("merge_from load failed", zap.Error(err))
		return
	}

	l.rerunUnknownFeatures(ctx, toRerun)

	if l.corpus.NumActive() <= before {
		return
	}
	var idx int
	l.corpus.Each(func(rec feature.Record) {
		if idx >= before {
			l.writer.AppendCorpusOnly(rec.Input)
		}
		idx++
	})
}
