// Package log builds the zap logger used by the ringfile command.
package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity written by the command logger.
type Level = zapcore.Level

const (
	DEBUG   = zapcore.DebugLevel
	INFO    = zapcore.InfoLevel
	WARNING = zapcore.WarnLevel
	ERROR   = zapcore.ErrorLevel
)

// New returns a logger writing console lines to w at level and above.
func New(w io.Writer, level Level) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}

// ForVerbosity picks the level for the --verbose flag: warnings only by
// default, everything down to debug when verbose.
func ForVerbosity(verbose bool) Level {
	if verbose {
		return DEBUG
	}
	return WARNING
}
