// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// L returns the shared logger, falling back to the global zap logger.
func L() *zap.Logger {
	if log != nil {
		return log
	}
	return zap.L()
}

// FindWritableLogPath picks the first log location the current user can
// actually write to. Installs frequently run unprivileged, so the user
// state directory is tried before any system path.
func FindWritableLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".dts-util", "logs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "dts-util.log"), nil
}

// InitializeWithFallback sets up the console+file tee, degrading to a
// console-only logger when no writable log path exists.
func InitializeWithFallback() {
	path, err := FindWritableLogPath()
	if err != nil {
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	writer, err := getLogFileWriter(path)
	if err != nil {
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), consoleLevel()),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, zap.DebugLevel),
	)

	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(log)
}

// NewFallbackLogger returns a console-only logger for environments where
// the log directory is unavailable.
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		consoleLevel(),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitFallback installs a fallback logger only if none exists yet.
func InitFallback() {
	if log != nil {
		return
	}
	log = NewFallbackLogger()
	zap.ReplaceGlobals(log)
}

func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.MessageKey = "M"
	cfg.CallerKey = ""
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func consoleLevel() zapcore.Level {
	return ParseLogLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLogLevel maps a LOG_LEVEL string to a zap level, defaulting to Info.
func ParseLogLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func getLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// Sync flushes buffered log entries; errors from syncing console streams
// are expected and ignored.
func SafeSync() {
	if log != nil {
		_ = log.Sync()
	}
}
