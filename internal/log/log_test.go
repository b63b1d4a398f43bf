package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNullLoggerDiscardsOutput(t *testing.T) {
	SetLogger(nil)
	// Should not panic and should be a no-op.
	Info("hello", String("k", "v"))
	Debug("hello")
}

func TestZerologLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LevelInfo)
	l.Info("container opened", String("cipher", "chacha12"), Uint64("data_size", 5))

	out := buf.String()
	if !strings.Contains(out, "container opened") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "chacha12") {
		t.Errorf("expected field value in output, got %q", out)
	}
}

func TestZerologLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LevelWarn)
	l.Debug("should not appear")
	l.Info("should not appear either")
	if buf.Len() != 0 {
		t.Errorf("expected no output below configured level, got %q", buf.String())
	}
	l.Warn("this appears")
	if buf.Len() == 0 {
		t.Error("expected output at or above configured level")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LevelInfo)
	scoped := l.WithFields(String("component", "reader"))
	scoped.Info("read chunk")
	if !strings.Contains(buf.String(), "component") {
		t.Errorf("expected persistent field in output, got %q", buf.String())
	}
}
