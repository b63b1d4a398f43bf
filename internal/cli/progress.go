package cli

import (
	"errors"
	"fmt"
	"time"

	"enard/internal/util"

	"io"
)

// ErrCancelled is returned by a progressReader once the Reporter's Cancel
// has been observed, unwinding the in-flight io.Copy.
var ErrCancelled = errors.New("cancelled")

// progressReader wraps an io.Reader, periodically reporting throughput via
// the Reporter and aborting with ErrCancelled once cancellation is observed.
// When total is known (a regular file, not stdin) it reports a percentage
// and ETA via util.Statify; otherwise it falls back to raw bytes-so-far.
type progressReader struct {
	r        io.Reader
	reporter *Reporter
	label    string
	total    int64
	start    time.Time
	done     int64
	tick     int64
}

func newProgressReader(r io.Reader, reporter *Reporter, label string, total int64) *progressReader {
	return &progressReader{r: r, reporter: reporter, label: label, total: total, start: timeNow()}
}

// timeNow is a seam so tests can avoid depending on wall-clock time.
var timeNow = time.Now

func (p *progressReader) Read(buf []byte) (int, error) {
	if p.reporter.IsCancelled() {
		return 0, ErrCancelled
	}
	n, err := p.r.Read(buf)
	p.done += int64(n)
	p.tick += int64(n)
	if p.tick >= progressStride {
		p.tick = 0
		p.reporter.Update(p.line())
	}
	return n, err
}

func (p *progressReader) line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s: %s", p.label, util.Sizeify(p.done))
	}
	progress, speed, eta := util.Statify(p.done, p.total, p.start)
	return fmt.Sprintf("%s: %s/%s (%.0f%%, %.2f MiB/s, ETA %s)",
		p.label, util.Sizeify(p.done), util.Sizeify(p.total), progress*100, speed, eta)
}

// progressStride is how many bytes accumulate between progress redraws.
const progressStride = 4 << 20
