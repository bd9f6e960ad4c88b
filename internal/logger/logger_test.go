package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{}, &buf))

	assert.Equal(t, zerolog.WarnLevel, WithComponent("test").GetLevel())

	l := WithComponent("test")
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestInitDebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{Level: "error", Debug: true}, &buf))

	assert.Equal(t, zerolog.DebugLevel, WithComponent("test").GetLevel())
}

func TestInitRejectsBadLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, InitWriter(Config{Level: "loud"}, &buf))
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{}, &buf))

	SetDebug(true)
	assert.Equal(t, zerolog.DebugLevel, WithComponent("test").GetLevel())

	SetDebug(false)
	assert.Equal(t, zerolog.WarnLevel, WithComponent("test").GetLevel())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{Level: "debug"}, &buf))

	l := WithComponent("device")
	l.Debug().Msg("opened")
	assert.Contains(t, buf.String(), `"component":"device"`)
}
