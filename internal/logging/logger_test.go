package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestFromContext_RoundTrip(t *testing.T) {
	logger := NewLogger(Config{Level: "debug", Format: "json"})
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext returned a different logger than was attached")
	}
}

func TestFromContext_DefaultWhenMissing(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Logger == nil {
		t.Fatal("FromContext must always return a usable logger")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestIDContext(context.Background(), "abc-123")
	if got := GetRequestID(ctx); got != "abc-123" {
		t.Errorf("GetRequestID = %q, want %q", got, "abc-123")
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
