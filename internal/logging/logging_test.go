package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug", true))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", false))
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud", false))
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init("info", false))
	assert.False(t, L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, SetLevel("nope"))
}

func TestNamedLoggers(t *testing.T) {
	require.NoError(t, Init("info", false))
	assert.NotNil(t, Sandbox())
	assert.NotNil(t, Provider())
	assert.NotNil(t, Outputs())
	assert.NotNil(t, Tools())
}
