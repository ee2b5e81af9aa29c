package telemetry

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/moeing-labs/centifuzz/execproto"
)

// CorpusStats mirrors feature.Stats plus the fields a dashboard reader
// needs to distinguish one dump from the next; kept separate from
// feature.Stats so the feature package stays free of a JSON/telemetry
// dependency.
type CorpusStats struct {
	BatchIndex   int    `json:"batch_index"`
	NumActive    int    `json:"num_active"`
	NumTotal     int    `json:"num_total"`
	NumFeatures  int    `json:"num_features"`
	CoveragePCs  int    `json:"coverage_pcs"`
	Experiment   string `json:"experiment,omitempty"`
}

// DumpCorpusStats appends one JSON line describing the corpus's
// current state to corpus-stats-<annotation>.json, matching the
// work-directory layout spec §6 names. Each dump is a full snapshot;
// appending (rather than truncating) keeps a time series without
// requiring the FileBackend abstraction to support overwrite.
func DumpCorpusStats(fb execproto.FileBackend, workdir, annotation string, stats CorpusStats) error {
	path := statsPath(workdir, annotation)
	line, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("telemetry: marshal corpus stats: %w", err)
	}
	h, err := fb.Append(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer h.Close()
	if _, err := h.Append(append(line, '\n')); err != nil {
		return fmt.Errorf("telemetry: append %s: %w", path, err)
	}
	return nil
}

// DumpRusageReport writes one line of accumulated per-phase cycle
// counts to the rusage report file.
func DumpRusageReport(fb execproto.FileBackend, workdir, annotation string, snapshot map[string]uint64) error {
	path := rusagePath(workdir, annotation)
	var b strings.Builder
	for phase, cycles := range snapshot {
		fmt.Fprintf(&b, "%s=%d ", phase, cycles)
	}
	b.WriteByte('\n')
	h, err := fb.Append(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer h.Close()
	if _, err := h.Append([]byte(b.String())); err != nil {
		return fmt.Errorf("telemetry: append %s: %w", path, err)
	}
	return nil
}

func statsPath(workdir, annotation string) string {
	return filepath.Join(workdir, "corpus-stats-"+annotation+".json")
}

func rusagePath(workdir, annotation string) string {
	return filepath.Join(workdir, "rusage-report-"+annotation+".txt")
}

// DumpTelemetryForThisBatch reports whether batchIndex warrants a
// telemetry dump: on batch 0 and on every power-of-two batch index, matching the
// same cadence the fuzzing loop uses to decide when to log stats
// (spec §4.7 step 5/8).
func DumpTelemetryForThisBatch(batchIndex int) bool {
	if batchIndex <= 0 {
		return true
	}
	return batchIndex&(batchIndex-1) == 0
}
