package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Reporter prints single-line, overwritten progress for a pack or unpack
// operation, and tracks cancellation requested via an OS signal.
type Reporter struct {
	mu        sync.Mutex
	info      string
	quiet     bool
	cancelled atomic.Bool
	lastLine  int
}

// NewReporter creates a Reporter. If quiet is true, only errors are printed.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// Update prints the current info line, overwriting the previous one.
func (r *Reporter) Update(info string) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
	line := "\r" + info
	if len(line) < r.lastLine {
		line += strings.Repeat(" ", r.lastLine-len(line))
	}
	r.lastLine = len(line)
	fmt.Fprint(os.Stderr, line)
}

// IsCancelled reports whether Cancel has been called.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled; called from the signal handler.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// Finish moves the cursor past the progress line.
func (r *Reporter) Finish() {
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

// PrintError prints an error message on its own line.
func (r *Reporter) PrintError(format string, args ...any) {
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message, suppressed in quiet mode.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
