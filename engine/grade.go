package engine

import (
	"context"

	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/feature"
	"go.uber.org/zap"
)

// gradeOne runs one mutant's execution result through the full
// admission pipeline (spec §4.7 step 4): apply the function filter,
// prune already-frequent features, optionally synthesize PC-pair
// features from the pruned vector, check for new coverage, run the
// input filter, and — if the input survives — persist it. Whether the
// input also becomes a future mutation seed depends on the function
// filter alone; frequency bookkeeping and file persistence happen
// regardless, matching ground-truth RunBatch's separation of
// "recorded" from "seeds future mutation". Returns true if the input
// was admitted.
func (l *Loop) gradeOne(ctx context.Context, input []byte, res execproto.InputResult) bool {
	fv := append([]uint64(nil), res.Features...)
	functionFilterPassed := l.functionFilter.passes(res.Log)

	hasUnseen := l.fs.CountUnseenAndPruneFrequent(&fv)

	if l.env.UsePCPairFeatures {
		if pairs := l.synthesizePCPairs(fv); len(pairs) > 0 {
			fv = append(fv, pairs...)
			if pairsUnseen := l.fs.CountUnseenAndPruneFrequent(&fv); pairsUnseen {
				hasUnseen = true
			}
		}
	}

	if !hasUnseen {
		return false
	}

	if !l.passesInputFilter(ctx, input) {
		return false
	}

	l.fs.IncrementFrequencies(fv)
	if functionFilterPassed {
		l.corpus.Add(input, fv, res.CmpArgs, l.fs, l.frontier)
	}
	hash := l.writer.Append(input, fv)
	l.mirrorToCorpusDir(hash, input)
	return true
}

// synthesizePCPairs returns the PC-pair features for every pair of
// distinct PCs in fv not already recorded as seen by this shard. This
// is the O(n^2)-in-distinct-PCs step spec §4.7 calls out explicitly.
func (l *Loop) synthesizePCPairs(fv []uint64) []uint64 {
	var pcs []uint64
	for _, f := range fv {
		if pc, ok := feature.ToPC(f); ok {
			pcs = append(pcs, pc)
		}
	}
	var pairs []uint64
	for i := 0; i < len(pcs); i++ {
		for j := i + 1; j < len(pcs); j++ {
			pf := feature.PCPairFeature(pcs[i], pcs[j])
			if _, seen := l.seenPairs[pf]; seen {
				continue
			}
			l.seenPairs[pf] = struct{}{}
			pairs = append(pairs, pf)
		}
	}
	return pairs
}

// passesInputFilter runs the external input-filter process on input
// when one is configured, treating a non-empty binary and a
// zero-exit-code result as "passes". No filter configured means every
// input passes.
func (l *Loop) passesInputFilter(ctx context.Context, input []byte) bool {
	if l.env.InputFilter == "" {
		return true
	}
	res, ok := l.exec.Execute(ctx, l.env.InputFilter, [][]byte{input})
	if !ok {
		return false
	}
	return res.ExitCode == 0
}

// mirrorToCorpusDir writes input to corpus_dir/<hash> when corpus_dir
// mirroring is enabled.
func (l *Loop) mirrorToCorpusDir(hash string, input []byte) {
	path, ok := l.env.CorpusDirMirrorPath(hash)
	if !ok {
		return
	}
	h, err := l.fb.Append(path)
	if err != nil {
		l.logger.Warn("corpus_dir mirror failed", zap.Error(err))
		return
	}
	defer h.Close()
	if _, err := h.Append(input); err != nil {
		l.logger.Warn("corpus_dir mirror write failed", zap.Error(err))
	}
}
