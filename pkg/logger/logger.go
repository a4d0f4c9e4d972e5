package logger

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const levelEnv = "LOG_LEVEL"

var (
	log = zap.NewNop()

	// buildOptions are appended when the logger is built; tests use it to hook entries.
	buildOptions []zap.Option
)

func init() {
	if err := InitializeLogger(false); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
	}
}

// InitializeLogger replaces the global logger. Production writes JSON at info,
// development writes colored console output at debug. LOG_LEVEL overrides
// the default level in both modes.
func InitializeLogger(isDevelopment bool) error {
	cfg, defaultLevel := productionConfig(), zapcore.InfoLevel
	if isDevelopment {
		cfg, defaultLevel = developmentConfig(), zapcore.DebugLevel
	}

	level, invalid := levelFromEnv(defaultLevel)
	cfg.Level = zap.NewAtomicLevelAt(level)

	built, err := cfg.Build(buildOptions...)
	if err != nil {
		log = zap.NewNop()
		return fmt.Errorf("build logger: %w", err)
	}
	log = built
	zap.RedirectStdLog(log)

	if invalid != "" {
		log.Warn("Invalid LOG_LEVEL, using default level",
			zap.String("value", invalid),
			zap.Stringer("level", level),
		)
	}
	return nil
}

func productionConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func developmentConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// levelFromEnv returns the LOG_LEVEL level, or def and the rejected value.
func levelFromEnv(def zapcore.Level) (zapcore.Level, string) {
	raw := os.Getenv(levelEnv)
	if raw == "" {
		return def, ""
	}
	var level zapcore.Level
	if err := level.Set(raw); err != nil {
		return def, raw
	}
	return level, ""
}

// L returns the global logger instance.
func L() *zap.Logger {
	return log
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() error {
	err := log.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
