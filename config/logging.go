package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ConsoleLogEncoder represents logging with plain text.
	ConsoleLogEncoder = "console"
	// JSONLogEncoder represents logging with JSON.
	JSONLogEncoder = "json"
)

// LoggerConfig holds the process logging options.
type LoggerConfig struct {
	Encoder string `mapstructure:"log-encoder"`
	Level   string `mapstructure:"log-level"`
}

func defaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder: ConsoleLogEncoder,
		Level:   zapcore.InfoLevel.String(),
	}
}

// Build constructs the process logger from the configuration.
func (cfg LoggerConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = cfg.Encoder
	if cfg.Encoder == ConsoleLogEncoder {
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
