// Package warn reports degraded-but-non-fatal conditions: permission
// errors on a single sample and slow monitoring. Missing GPU attribution
// is not reported through it: the GPU probe driver leaves that process's
// GPU fields unset without a warning. Every warning carries the same
// wall-clock-since-start framing regardless of which component raised it.
package warn

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Reporter writes timestamped warnings to an output stream.
type Reporter struct {
	out   io.Writer
	start time.Time
}

// New creates a Reporter writing to os.Stderr.
func New() *Reporter {
	return &Reporter{out: os.Stderr, start: time.Now()}
}

// NewTo creates a Reporter writing to an arbitrary stream, for tests.
func NewTo(w io.Writer) *Reporter {
	return &Reporter{out: w, start: time.Now()}
}

// Warn reports a degraded condition raised by component, formatted with
// the remaining arguments like fmt.Sprintf.
func (r *Reporter) Warn(component, format string, args ...interface{}) {
	elapsed := time.Since(r.start).Round(time.Millisecond)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.out, "[%s] WARN %s: %s\n", elapsed, component, msg)
}

// Log reports ordinary progress, at the same framing as Warn but
// without the WARN marker.
func (r *Reporter) Log(format string, args ...interface{}) {
	elapsed := time.Since(r.start).Round(time.Millisecond)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.out, "[%s] %s\n", elapsed, msg)
}
