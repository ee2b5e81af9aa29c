package engine

import (
	"fmt"

	"github.com/moeing-labs/centifuzz/blob"
	"github.com/moeing-labs/centifuzz/feature"
	"github.com/moeing-labs/centifuzz/shardrng"
)

// distill writes every currently-active corpus input's raw bytes to
// the shard's distilled-corpus file, and mirrors each to corpus_dir
// when configured, per spec §6's `distilled-<binary-hash>.<s>`
// artifact. Grounded on ground-truth centipede.cc's FuzzingLoop:
// distillation runs once at startup, after shard loading and
// merge_from have populated the corpus but before num_runs/timing are
// reset for the main loop, and only writes inputs — not features —
// since the distilled file's whole purpose is a minimized replayable
// corpus, not a coverage index. distill panics on a failure to open
// its own output file, matching blob.Writer's own-shard-write fatal
// assertion convention (spec §7): a distillation run that cannot
// write its one deliverable cannot proceed.
func (l *Loop) distill() {
	w, err := blob.NewWriter(l.fb, l.paths.Distilled)
	if err != nil {
		panic(fmt.Sprintf("engine: distill: %v", err))
	}
	defer w.Close()

	l.corpus.Each(func(rec feature.Record) {
		w.Append(rec.Input)
		l.mirrorToCorpusDir(shardrng.Hash(rec.Input), rec.Input)
	})
	w.Sync()
}
