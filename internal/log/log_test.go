package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := withCapturedLogger(t)

	Info(context.Background(), "hello", "recipe", "stew")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=hello") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "recipe=stew") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestWarnRespectsLevel(t *testing.T) {
	buf := withCapturedLogger(t)

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := SetLevel("info"); err != nil {
			t.Fatalf("restore level: %v", err)
		}
	})

	Warn(context.Background(), "should be suppressed")
	if got := strings.TrimSpace(buf.String()); got != "" {
		t.Fatalf("expected no output below error level, got %q", got)
	}

	Error(context.Background(), "boom")
	if !strings.Contains(buf.String(), "level=error") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("expected case-insensitive level, got error: %v", err)
	}
	if err := SetLevel("info"); err != nil {
		t.Fatalf("restore level: %v", err)
	}
}

func TestReplaceLoggerPanicsOnNil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil logger")
		}
	}()
	ReplaceLogger(nil)
}

func TestNilContextDoesNotPanic(t *testing.T) {
	buf := withCapturedLogger(t)

	Debug(nil, "no context") //nolint:staticcheck // exercising the nil guard
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := SetLevel("info"); err != nil {
			t.Fatalf("restore level: %v", err)
		}
	})

	Debug(nil, "visible now")
	if !strings.Contains(buf.String(), "msg=\"visible now\"") && !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

func TestRequestIDFlowsThroughContext(t *testing.T) {
	buf := withCapturedLogger(t)

	ctx := WithRequestID(context.Background(), "req-123")
	Info(ctx, "handling request", "path", "/api/recipes")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "requestId=req-123") {
		t.Fatalf("expected request id field in log line, got %q", line)
	}

	if id, ok := RequestID(ctx); !ok || id != "req-123" {
		t.Fatalf("RequestID = %q, %v", id, ok)
	}
	if _, ok := RequestID(context.Background()); ok {
		t.Fatal("expected no request id on a bare context")
	}
}
