package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupWriterDefaultsToStdout(t *testing.T) {
	w := SetupWriter(Config{Output: ""})
	assert.NotNil(t, w)
}

func TestWithRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	base := slog.Default()
	annotated := FromContext(ctx, base)
	assert.NotNil(t, annotated)
}

func TestFromContextWithoutRequestID(t *testing.T) {
	base := slog.Default()
	got := FromContext(context.Background(), base)
	assert.Equal(t, base, got)
}
