package telemetry

import (
	"testing"

	"github.com/moeing-labs/centifuzz/storage/localfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := NewLogger("not-a-level")
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestPhaseTimerAccumulates(t *testing.T) {
	pt := NewPhaseTimer()
	pt.Track("mutate", func() {})
	pt.Track("mutate", func() {})
	snap := pt.Snapshot()
	_, ok := snap["mutate"]
	assert.True(t, ok)
}

func TestDumpCorpusStatsAppendsLine(t *testing.T) {
	fb, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	err = DumpCorpusStats(fb, "", "exp1", CorpusStats{BatchIndex: 1, NumActive: 3})
	require.NoError(t, err)
	err = DumpCorpusStats(fb, "", "exp1", CorpusStats{BatchIndex: 2, NumActive: 4})
	require.NoError(t, err)

	h, err := fb.Open(statsPath("", "exp1"))
	require.NoError(t, err)
	data, err := h.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"batch_index":1`)
	assert.Contains(t, string(data), `"batch_index":2`)
}

func TestDumpTelemetryForThisBatchIsPowerOfTwoCadence(t *testing.T) {
	assert.True(t, DumpTelemetryForThisBatch(0))
	assert.True(t, DumpTelemetryForThisBatch(1))
	assert.True(t, DumpTelemetryForThisBatch(2))
	assert.False(t, DumpTelemetryForThisBatch(3))
	assert.True(t, DumpTelemetryForThisBatch(4))
	assert.False(t, DumpTelemetryForThisBatch(6))
	assert.True(t, DumpTelemetryForThisBatch(8))
}
