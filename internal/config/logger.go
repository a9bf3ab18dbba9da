package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	LoggerConfig struct {
		// Level is "none", "debug" or "normal".
		Level string `yaml:"level"`
	}

	LoggingConfig struct {
		ConsoleLogger LoggerConfig `yaml:"console"`
	}
)

// Prepare returns the program logger: informational messages go to stderr
// as well as errors so that stdout carries only command output.
func (conf *LoggingConfig) Prepare() *zap.Logger {
	var minLevel zapcore.Level
	switch conf.ConsoleLogger.Level {
	case "debug":
		minLevel = zapcore.DebugLevel
	case "normal":
		minLevel = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= minLevel
		}))

	return zap.New(core).Named("epubtext")
}
