package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runoshun/pulld/internal/domain"
)

func TestLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{z: zap.New(core)}

	l.Info("polled", domain.F("commit", "abc123"), domain.F("host", "h1"))
	l.Warn("fetch failed", domain.F("err", "timeout"))
	l.Debug("should not appear at info level")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "polled", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "fetch failed", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNew(t *testing.T) {
	l, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, l)
	var _ domain.Logger = l
}
