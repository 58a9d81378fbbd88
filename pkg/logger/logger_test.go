package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestInitFormats(t *testing.T) {
	var buf bytes.Buffer

	Init(&Config{Level: "info", Format: "json", Output: &buf})
	slog.Info("json message")
	if !strings.Contains(buf.String(), `"msg":"json message"`) {
		t.Errorf("Expected JSON output, got: %s", buf.String())
	}

	buf.Reset()
	Init(&Config{Level: "info", Format: "text", Output: &buf})
	slog.Info("text message")
	if !strings.Contains(buf.String(), `msg="text message"`) {
		t.Errorf("Expected text output, got: %s", buf.String())
	}

	buf.Reset()
	Init(&Config{Level: "warn", Format: "text", Output: &buf})
	slog.Info("filtered")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got: %s", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "debug", Format: "text", Output: &buf})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	ctx = WithFlow(ctx, "audit")

	WithContext(ctx).Info("tagged")
	out := buf.String()
	if !strings.Contains(out, "request_id=req-123") {
		t.Errorf("Expected request_id in output, got: %s", out)
	}
	if !strings.Contains(out, "flow=audit") {
		t.Errorf("Expected flow in output, got: %s", out)
	}
}

func TestWithContextEmpty(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "info", Format: "text", Output: &buf})

	WithContext(context.Background()).Info("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("Expected no request_id, got: %s", buf.String())
	}
}

func TestLogFunctions(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "debug", Format: "text", Output: &buf})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	tests := []struct {
		name string
		log  func(ctx context.Context, msg string, args ...any)
	}{
		{"info", Info},
		{"debug", Debug},
		{"warn", Warn},
		{"error", Error},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log(ctx, tt.name+" message", "key", "value")
		out := buf.String()
		if !strings.Contains(out, tt.name+" message") {
			t.Errorf("Expected %s message in output, got: %s", tt.name, out)
		}
		if !strings.Contains(out, "request_id=req-123") {
			t.Errorf("Expected %s to carry request_id, got: %s", tt.name, out)
		}
	}
}
