package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  slog.Level
	}{
		{0, slog.LevelError},
		{-1, slog.LevelError},
		{1, slog.LevelWarn},
		{2, slog.LevelInfo},
		{3, slog.LevelDebug},
		{4, LevelTrace},
		{9, LevelTrace},
	}

	for _, tt := range tests {
		got := VerbosityToLevel(tt.verbosity)
		if got != tt.expected {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.expected)
		}
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{LevelTrace, "TRACE"},
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
	}

	for _, tt := range tests {
		got := LevelName(tt.level)
		if got != tt.expected {
			t.Errorf("LevelName(%v) = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestInitWithOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, "text", &buf)
	t.Cleanup(func() { Init(VerbosityWarn, "text") })

	Info("counter rewritten", "value", 42)
	Debug("hidden at v=2")

	out := buf.String()
	if !strings.Contains(out, "counter rewritten") || !strings.Contains(out, "value=42") {
		t.Errorf("info record missing, got: %s", out)
	}
	if strings.Contains(out, "hidden at v=2") {
		t.Errorf("debug record should be filtered at v=2, got: %s", out)
	}
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(VerbosityTrace, "text", &buf)
	t.Cleanup(func() { Init(VerbosityWarn, "text") })

	Trace("scan line", "offset", 0)
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("trace records should render as TRACE, got: %s", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(2, "text", &buf)
	t.Cleanup(func() { Init(VerbosityWarn, "text") })

	Component("buildnum").Info("test message")
	if !strings.Contains(buf.String(), "component=buildnum") {
		t.Errorf("Component should add component context, got: %s", buf.String())
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	handler := NewHandler(HandlerOptions{
		Level:  slog.LevelInfo,
		Format: "json",
		Output: &buf,
	})

	slog.New(handler).Info("test", "key", "value")

	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("JSON handler should output JSON, got: %s", buf.String())
	}
}

func TestNewHandler_DefaultOutput(t *testing.T) {
	handler := NewHandler(HandlerOptions{
		Level:  slog.LevelInfo,
		Format: "text",
	})

	if handler == nil {
		t.Error("NewHandler should not return nil")
	}
}
