package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("this should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("expected filtered levels to be suppressed, got: %q", out)
	}
	if !strings.Contains(out, "this should appear") {
		t.Fatalf("expected warn message in output, got: %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Fatalf("expected level tag in output, got: %q", out)
	}
}

func TestWriterIncludesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("page written", "page", 42, "bytes", 4096)

	out := buf.String()
	if !strings.Contains(out, "page=42") || !strings.Contains(out, "bytes=4096") {
		t.Fatalf("expected key=value pairs in output, got: %q", out)
	}
}

func TestWithAccumulatesContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug)
	derived := base.With("component", "pagestore")

	derived.Error("write failed", "page", 7)

	out := buf.String()
	if !strings.Contains(out, "component=pagestore") {
		t.Fatalf("expected inherited context, got: %q", out)
	}
	if !strings.Contains(out, "page=7") {
		t.Fatalf("expected call-site field, got: %q", out)
	}
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	n := Nop()
	// Nothing to assert on output, but With must not panic and must
	// keep returning a usable no-op logger.
	n.With("a", 1).Info("ignored")
}
