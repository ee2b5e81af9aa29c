package engine

import (
	"context"

	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/shardrng"
	"go.uber.org/zap"
)

// reportCrash logs a batch failure and attempts to find a minimal
// reproducer among the batch's mutants, per spec §4.7's crash
// reporting design: the presumed crasher (at res.NumOutputsRead) is
// tried first, then the rest of the batch in original order, so a
// wrong guess still finds the real culprit.
func (l *Loop) reportCrash(ctx context.Context, binary string, mutants [][]byte, res execproto.BatchResult) {
	if l.crashReportCount >= l.env.MaxNumCrashReports {
		return
	}
	l.crashReportCount++

	l.logger.Error("target execution failed",
		zap.String("binary", binary),
		zap.Int("exit_code", res.ExitCode),
		zap.String("failure_description", res.FailureDescription),
		zap.Int("num_outputs_read", res.NumOutputsRead),
		zap.Int("batch_size", len(mutants)),
		zap.String("log", res.Log))

	order := suspectFirstOrder(len(mutants), res.NumOutputsRead)
	for _, idx := range order {
		if requested, _ := l.EarlyExitRequested(); requested {
			return
		}
		candidate := mutants[idx]
		single, ok := l.exec.Execute(ctx, binary, [][]byte{candidate})
		if ok || single.ExitCode != res.ExitCode {
			continue
		}
		l.writeReproducer(candidate)
		return
	}
	l.logger.Warn("no single input reproduced the failure")
}

// suspectFirstOrder returns the try-order [0, n) with the suspect
// index pushed to the front while it also keeps its natural position
// later in the sweep, so it is tried twice: once first, once in place.
// suspect is batch_result.num_outputs_read: the index of the first
// input whose result was never durably recorded.
func suspectFirstOrder(n, suspect int) []int {
	order := make([]int, 0, n+1)
	if suspect >= 0 && suspect < n {
		order = append(order, suspect)
	}
	for i := 0; i < n; i++ {
		order = append(order, i)
	}
	return order
}

func (l *Loop) writeReproducer(input []byte) {
	hash := shardrng.Hash(input)
	path := l.env.CrashPath(hash)
	h, err := l.fb.Append(path)
	if err != nil {
		l.logger.Error("failed to open crash reproducer path", zap.String("path", path), zap.Error(err))
		return
	}
	defer h.Close()
	if _, err := h.Append(input); err != nil {
		l.logger.Error("failed to write crash reproducer", zap.String("path", path), zap.Error(err))
		return
	}
	l.logger.Error("wrote crash reproducer", zap.String("path", path))
}
