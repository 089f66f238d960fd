package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultLevel(t *testing.T) {
	log, err := New("")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_DebugLevel(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("verbose")
	assert.Error(t, err)
}

func TestParseLevel_CaseInsensitive(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
}

func TestTruncate_ShortString(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
}

func TestTruncate_LongString(t *testing.T) {
	assert.Equal(t, "hel...", Truncate("hello world", 3))
}

func TestTruncate_ZeroLimit(t *testing.T) {
	assert.Equal(t, "", Truncate("hello", 0))
}
