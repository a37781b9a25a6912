package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "input %q", in)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, parseFormat("console", FormatJSON))
	assert.Equal(t, FormatJSON, parseFormat("JSON", FormatText))
	assert.Equal(t, FormatText, parseFormat("", FormatText))
	assert.Equal(t, FormatJSON, parseFormat("", FormatJSON))
}

func TestNew_WritesToGivenWriter(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	log := New(&buf, FormatText)
	log.Info("hello", "k", "v")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNew_FallbackText(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	New(&buf, FormatText).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_LevelFilters(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "error")

	var buf bytes.Buffer
	log := New(&buf, FormatText)
	log.Info("dropped")
	log.Error("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
