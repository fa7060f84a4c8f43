package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		" INFO ":  zapcore.InfoLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger verifies that named and annotated loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "installer")
	ctx = WithKV(ctx, "tag", "GE-Proton8-26")

	InfoKV(ctx, "Resolved release", "state", "resolving")

	out := buf.String()
	require.Contains(t, out, "installer")
	require.Contains(t, out, "Resolved release")
	require.Contains(t, out, "GE-Proton8-26")
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, global, FromContext(context.Background()))
}

// TestNewWithWriterFiltersByLevel drops messages below the configured level.
func TestNewWithWriterFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.WarnLevel))

	DebugKV(ctx, "Installer state", "state", "Resolving")
	InfoKV(ctx, "Removing stale run lock")
	WarnKV(ctx, "Failed to remove temporary directory", "path", "/tmp/protonup-1")

	out := buf.String()
	require.NotContains(t, out, "Installer state")
	require.NotContains(t, out, "stale run lock")
	require.Contains(t, out, "Failed to remove temporary directory")
	require.Contains(t, out, "/tmp/protonup-1")
}
