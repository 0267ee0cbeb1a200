// Package logging builds the zap loggers used by the flightdb binary.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger at info level, or a console
// development logger at debug level when verbose is set. Both write to
// stderr with ISO8601 timestamps under the "timestamp" key.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// WithRun tags every entry of log with the run identifier.
func WithRun(log *zap.Logger, runID string) *zap.Logger {
	return log.With(zap.String("run_id", runID))
}
