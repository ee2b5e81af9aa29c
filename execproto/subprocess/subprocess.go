// Package subprocess is a local os/exec-based execproto.Executor: it
// runs the target binary once per input, feeding it the input's bytes
// on a temp file path passed as argv[1] (the same single-file
// convention libFuzzer/AFL-style harnesses expect), and treats a
// non-zero exit as a target failure. Grounded on
// bandfuzz/internal/fuzz/aflpp/instance.go's CommandContext-driven
// process management.
//
// A real Centipede-style binary reports coverage over a private wire
// protocol (shared-memory counters, or a fork-server pipe) that this
// package does not attempt to reconstruct byte-for-byte, since no
// concrete wire format is specified for the execution callback beyond
// "returns feature vectors" (spec §6). Instead it derives an 8-bit-
// counter feature vector from the byte n-grams of the target's
// combined stdout+stderr: one feature per distinct 4-byte window,
// with no hit-count bucketing, so a locally built harness that logs
// one line per code path exercised gets reproducible coverage-guided
// feedback without a bespoke ABI.
package subprocess

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/feature"
)

// Executor runs a target binary as a subprocess per input.
type Executor struct {
	// TempDir is where per-input scratch files are written. Empty
	// means os.TempDir().
	TempDir string
}

// Execute implements execproto.Executor.
func (e Executor) Execute(ctx context.Context, binary string, inputs [][]byte) (execproto.BatchResult, bool) {
	results := make([]execproto.InputResult, 0, len(inputs))
	for i, input := range inputs {
		select {
		case <-ctx.Done():
			return execproto.BatchResult{Results: results, NumOutputsRead: i}, true
		default:
		}

		res, exitCode, failed := e.runOne(ctx, binary, input)
		if failed {
			return execproto.BatchResult{
				Results:            results,
				ExitCode:           exitCode,
				FailureDescription: "target exited with non-zero status",
				NumOutputsRead:     i,
			}, false
		}
		results = append(results, res)
	}
	return execproto.BatchResult{Results: results, NumOutputsRead: len(inputs)}, true
}

func (e Executor) runOne(ctx context.Context, binary string, input []byte) (execproto.InputResult, int, bool) {
	f, err := os.CreateTemp(e.TempDir, "centifuzz-input-*")
	if err != nil {
		return execproto.InputResult{}, -1, true
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(input); err != nil {
		f.Close()
		return execproto.InputResult{}, -1, true
	}
	f.Close()

	cmd := exec.CommandContext(ctx, binary, f.Name())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err = cmd.Run()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
		return execproto.InputResult{}, exitCode, true
	}
	if err != nil {
		return execproto.InputResult{}, -1, true
	}

	return execproto.InputResult{Features: coverageFromOutput(out.Bytes()), Log: out.String()}, exitCode, false
}

// coverageFromOutput derives a stable, deterministic feature vector
// from n consecutive output bytes, standing in for the real
// instrumentation counters a compiled-in coverage runtime would
// supply.
func coverageFromOutput(out []byte) []uint64 {
	const window = 4
	if len(out) < window {
		if len(out) == 0 {
			return nil
		}
		return []uint64{feature.PCFeature(uint64(out[0]))}
	}
	seen := make(map[uint64]struct{})
	var fv []uint64
	for i := 0; i+window <= len(out); i++ {
		var pc uint64
		for j := 0; j < window; j++ {
			pc = pc<<8 | uint64(out[i+j])
		}
		f := feature.PCFeature(pc)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fv = append(fv, f)
	}
	return fv
}
