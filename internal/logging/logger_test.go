package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, Level(0))
	assert.Equal(t, zapcore.InfoLevel, Level(1))
	assert.Equal(t, zapcore.DebugLevel, Level(2))
	assert.Equal(t, zapcore.DebugLevel, Level(5))
}

func TestNew(t *testing.T) {
	for _, v := range []int{0, 1, 2} {
		logger, err := New(v)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(Level(v)))
		if v < 2 {
			assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		}
	}
}

func TestFor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	For(zap.New(core), CategoryAudit).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)

	assert.NotPanics(t, func() { For(nil, CategoryWatch).Info("dropped") })
}
