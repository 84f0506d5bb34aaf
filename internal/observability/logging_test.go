package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/battlecore/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_Rejects(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.Error(t, err)
	_, err = NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestForBattle_TagsEveryEntry(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := ForBattle(zap.New(core), "b-1", 42)
	logger.Info("turn resolved")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "b-1", fields["battle"])
	assert.Equal(t, uint64(42), fields["seed"])
}

func TestNewLogger_LevelIsApplied(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range cases {
		logger, err := NewLogger(config.LoggingConfig{Level: name, Format: "json"})
		require.NoError(t, err, name)
		assert.True(t, logger.Core().Enabled(want), name)
		assert.False(t, logger.Core().Enabled(want-1), name)
	}
}
