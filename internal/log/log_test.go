package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLoggerRoutesOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	SetLogger(l)
	defer SetLogger(zap.NewNop())

	assert.Same(t, l, GetZapLogger())

	Debugf("fit attempt %d", 3)
	Warnf("point skipped at v=%g", 1.5)
	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "fit attempt 3", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	// The package default must be a no-op; logging before Init or
	// SetLogger is safe and produces nothing.
	assert.NotNil(t, GetZapLogger())
	Debugf("discarded %d", 1)
	Sync()
}
