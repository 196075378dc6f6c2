// Package logger provides the global structured logger for shexpose.
//
// The server logs with structured fields (zap.SugaredLogger). Console output
// is the default; JSON output is available for machine consumption.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.SugaredLogger

	// JSONOutput tracks whether JSON output is enabled
	JSONOutput bool

	// level allows runtime verbosity changes (config watcher)
	level zap.AtomicLevel
)

func init() {
	// Safe no-op logger at package load time so early callers never panic
	Logger = zap.NewNop().Sugar()
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
}

// Initialize sets up the global logger based on the JSON output preference
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	if jsonOutput {
		// JSON structured output for machine consumption
		config := zap.NewProductionConfig()
		config.Level = level
		var err error
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		// Human-readable console output
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderCfg),
				zapcore.AddSync(os.Stdout),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// SetVerbosity maps the -v count onto the zap level. 0 is info, 1 and above
// enable debug output.
func SetVerbosity(verbosity int) {
	if verbosity >= 1 {
		level.SetLevel(zap.DebugLevel)
	} else {
		level.SetLevel(zap.InfoLevel)
	}
}

// LevelName returns a human-readable name for a verbosity count
func LevelName(verbosity int) string {
	switch {
	case verbosity <= 0:
		return "info"
	default:
		return "debug"
	}
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		Logger.Sync()
	}
}

// Named returns a named child of the global logger
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
