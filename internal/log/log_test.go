package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Info(context.Background(), "hello", "user", "test")

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
	if !strings.Contains(line, "user=test") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestContextIdentifiersAreLogged(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	ctx := WithCustomer(WithRequestID(context.Background(), "req-42"), 7)
	Info(ctx, "recipe updated")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "request_id=req-42") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if !strings.Contains(line, "customer_id=7") {
		t.Fatalf("expected customer id in log line, got %q", line)
	}
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("expected request id req-42, got %q", got)
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() {
		_ = SetLevel("info")
	})

	for _, level := range []string{"debug", "INFO", "warn", "error", ""} {
		if err := SetLevel(level); err != nil {
			t.Fatalf("expected level %q to be accepted, got %v", level, err)
		}
	}
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})

	if err := SetLevel("info"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug output to be suppressed, got %q", buf.String())
	}
}
