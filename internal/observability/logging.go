// Package observability builds the zap loggers used by the engine and its commands.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/battlecore/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// At debug level sampling is disabled so that every battle-seeded draw is
// kept; a replay can then be diffed line by line.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level == zapcore.DebugLevel {
		zc.Sampling = nil
	}
	zc.InitialFields = map[string]any{"app": "battlecore"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ForBattle scopes logger to one battle. The seed rides on every line so a
// log excerpt alone is enough to replay the battle it came from.
func ForBattle(logger *zap.Logger, battleID string, seed uint64) *zap.Logger {
	return logger.With(zap.String("battle", battleID), zap.Uint64("seed", seed))
}
