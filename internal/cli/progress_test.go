package cli

import (
	"strings"
	"testing"
)

func TestProgressReaderReportsBytesWithUnknownTotal(t *testing.T) {
	r := strings.NewReader(strings.Repeat("x", 10))
	pr := newProgressReader(r, NewReporter(true), "packing", 0)
	line := pr.line()
	if !strings.HasPrefix(line, "packing:") {
		t.Errorf("line = %q, want it to start with the label", line)
	}
}

func TestProgressReaderReportsPercentWithKnownTotal(t *testing.T) {
	r := strings.NewReader(strings.Repeat("x", 10))
	pr := newProgressReader(r, NewReporter(true), "unpacking", 100)
	pr.done = 50
	line := pr.line()
	if !strings.Contains(line, "50%") {
		t.Errorf("line = %q, want it to report 50%%", line)
	}
}

func TestProgressReaderCancellation(t *testing.T) {
	r := strings.NewReader("data")
	reporter := NewReporter(true)
	pr := newProgressReader(r, reporter, "packing", 0)
	reporter.Cancel()
	if _, err := pr.Read(make([]byte, 4)); err != ErrCancelled {
		t.Fatalf("Read after Cancel: got %v, want ErrCancelled", err)
	}
}
