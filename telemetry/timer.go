package telemetry

import "github.com/dterei/gotsc"

// PhaseTimer accumulates CPU cycles spent in named phases of the
// fuzzing loop (mutate, execute, grade, ...), the same rdtsc-based
// accounting datatree/tree.go performs for its own tree phases.
type PhaseTimer struct {
	overhead uint64
	cycles   map[string]uint64
}

// NewPhaseTimer measures the local TSC-read overhead once and returns
// a ready-to-use timer.
func NewPhaseTimer() *PhaseTimer {
	return &PhaseTimer{
		overhead: gotsc.TSCOverhead(),
		cycles:   make(map[string]uint64),
	}
}

// Track runs fn and adds its elapsed cycle count (net of measurement
// overhead) to phase's running total.
func (t *PhaseTimer) Track(phase string, fn func()) {
	start := gotsc.BenchStart()
	fn()
	end := gotsc.BenchEnd()
	elapsed := end - start
	if elapsed > t.overhead {
		elapsed -= t.overhead
	} else {
		elapsed = 0
	}
	t.cycles[phase] += elapsed
}

// Cycles returns the accumulated cycle count for phase.
func (t *PhaseTimer) Cycles(phase string) uint64 {
	return t.cycles[phase]
}

// Snapshot returns a copy of every phase's accumulated cycle count,
// for inclusion in the rusage report.
func (t *PhaseTimer) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(t.cycles))
	for k, v := range t.cycles {
		out[k] = v
	}
	return out
}
