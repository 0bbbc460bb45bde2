package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	log, err := New(false)
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	log, err := New(true)
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
