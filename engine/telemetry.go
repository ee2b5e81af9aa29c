package engine

import (
	"github.com/moeing-labs/centifuzz/telemetry"
	"go.uber.org/zap"
)

// dumpTelemetry writes a corpus-stats and rusage snapshot for the
// current batch index (spec §4.7 step 8).
func (l *Loop) dumpTelemetry(batchIndex int) {
	err := telemetry.DumpCorpusStats(l.fb, l.env.Workdir, l.annotation(), telemetry.CorpusStats{
		BatchIndex:  batchIndex,
		NumActive:   l.corpus.NumActive(),
		NumTotal:    l.corpus.NumTotal(),
		NumFeatures: l.fs.Size(),
		CoveragePCs: len(l.fs.ToCoveragePCs()),
		Experiment:  l.env.ExperimentName,
	})
	if err != nil {
		l.logger.Warn("corpus stats dump failed", zap.Error(err))
	}
	if err := telemetry.DumpRusageReport(l.fb, l.env.Workdir, l.annotation(), l.timer.Snapshot()); err != nil {
		l.logger.Warn("rusage dump failed", zap.Error(err))
	}
}
