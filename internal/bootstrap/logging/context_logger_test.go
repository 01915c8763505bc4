package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func capturedLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestInfoEmitsContextAndCallAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), capturedLogger(&buf))
	ctx = WithAttrs(ctx, slog.String("component", "test"))

	Info(ctx, "issue created", slog.String("issue_id", "ISS-20250410-001"), slog.Int("severity", 4))

	line := buf.String()
	for _, want := range []string{"issue created", "component=test", "issue_id=ISS-20250410-001", "severity=4"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestWithAttrsLaterValuesWinPerKey(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), capturedLogger(&buf))
	ctx = WithAttrs(ctx, slog.String("filename", "mail_001.json"))
	ctx = WithAttrs(ctx, slog.String("filename", "mail_002.json"))

	Warn(ctx, "email failed", slog.String("error", "boom"))

	line := buf.String()
	if !strings.Contains(line, "filename=mail_002.json") || strings.Contains(line, "mail_001.json") {
		t.Fatalf("log line %q, want only the later filename", line)
	}
	if !strings.Contains(line, "error=boom") {
		t.Fatalf("log line %q missing call attr", line)
	}
}

func TestAttrsDoNotLeakAcrossContexts(t *testing.T) {
	base := context.Background()
	branched := WithAttrs(base, slog.String("conversation_id", "abc"))

	if got := Attrs(base); got != nil {
		t.Fatalf("Attrs(base) = %v, want nil", got)
	}
	if got := Attrs(branched); len(got) != 1 || got[0].Key != "conversation_id" {
		t.Fatalf("Attrs(branched) = %v", got)
	}
}
