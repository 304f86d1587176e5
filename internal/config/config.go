// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"questlog/internal/progression"
)

type Config struct {
	DBPath          string        `env:"QUESTLOG_DB_PATH"`
	Addr            string        `env:"QUESTLOG_ADDR"              envDefault:":8000"`
	ProgressionFile string        `env:"QUESTLOG_PROGRESSION_FILE"`
	LogLevel        string        `env:"QUESTLOG_LOG_LEVEL"         envDefault:"info"`
	AutoSwitchTheme bool          `env:"QUESTLOG_AUTO_SWITCH_THEME" envDefault:"false"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"QUESTLOG_GEMINI_MODEL"      envDefault:"gemini-2.5-flash-lite"`
	AITimeout       time.Duration `env:"QUESTLOG_AI_TIMEOUT"        envDefault:"20s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Progression builds the progression engine from ProgressionFile, or the
// default table when no file is set.
func (c Config) Progression() (*progression.Engine, error) {
	if c.ProgressionFile == "" {
		return progression.Default(), nil
	}
	pc, err := progression.LoadConfig(c.ProgressionFile)
	if err != nil {
		return nil, err
	}
	return progression.NewEngine(pc)
}

// AIEnabled reports whether a Gemini key is configured.
func (c Config) AIEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// NewLogger builds a production zap logger at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
