// Package observability holds the process-wide CLI logger.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the diagnostic logger for commands. It writes to stderr so
// command results on stdout stay clean. It is a no-op until InitCLILogger runs.
var CLILogger = zap.NewNop()

// InitCLILogger configures CLILogger for service at info level, or debug
// when verbose is set.
func InitCLILogger(service string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	CLILogger = NewCLILogger(service, level, os.Stderr)
}

// NewCLILogger builds a console logger at level writing to ws. Levels are
// colored when ws is a terminal. Writes to ws are serialized.
func NewCLILogger(service string, level zapcore.Level, ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !isTerminal(ws) {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(ws), zap.NewAtomicLevelAt(level))
	return zap.New(core).Named(service)
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SetLevel rebuilds CLILogger at level, keeping stderr as the sink.
func SetLevel(service string, level zapcore.Level) {
	CLILogger = NewCLILogger(service, level, os.Stderr)
}

func isTerminal(ws zapcore.WriteSyncer) bool {
	f, ok := ws.(interface{ Stat() (os.FileInfo, error) })
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
