//go:build linux

package metrics

import "errors"

var (
	// ErrProcessAccessDenied means the OS refused a read for a tracked
	// process (typically a transient permission race right after the
	// process changed credentials or exited). The caller should warn and
	// skip this sample, not abort the run.
	ErrProcessAccessDenied = errors.New("metrics: process access denied")

	// ErrMalformedProcStat means /proc/<pid>/stat did not have the shape
	// this reader expects.
	ErrMalformedProcStat = errors.New("metrics: malformed /proc/<pid>/stat")

	// ErrNoCPULine means /proc/stat had no aggregate "cpu" line.
	ErrNoCPULine = errors.New("metrics: /proc/stat has no cpu line")
)
