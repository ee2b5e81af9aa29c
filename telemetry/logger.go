// Package telemetry is the ambient observability surface: structured
// logging, JSON stats dumps, and cycle-accurate phase timing. Grounded
// on the gateway/scheduler components' zap setup and on
// datatree/tree.go's own use of gotsc for phase accounting.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap.Logger for the given log_level string
// (spec §6). An unrecognized level falls back to info rather than
// failing construction — a shard should never refuse to start over a
// bad log-level string.
func NewLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}
