//go:build linux

package scheduler

import (
	"syscall"

	"github.com/jacquev6/chrones/internal/metrics"
)

// childrenUsage reads getrusage(RUSAGE_CHILDREN): the OS's own running
// total of resource consumption by every child process that has so far
// terminated and been wait()ed on. Run differences two readings of this
// call bracketing the whole run (metrics.Delta) and hands the delta to
// the run record builder.
func childrenUsage() (metrics.GlobalUsage, error) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_CHILDREN, &ru); err != nil {
		return metrics.GlobalUsage{}, err
	}
	return metrics.GlobalUsage{
		UserTime:                   float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6,
		SystemTime:                 float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6,
		MinorPageFaults:            int64(ru.Minflt),
		MajorPageFaults:            int64(ru.Majflt),
		InputBlocks:                int64(ru.Inblock),
		OutputBlocks:               int64(ru.Oublock),
		VoluntaryContextSwitches:   int64(ru.Nvcsw),
		InvoluntaryContextSwitches: int64(ru.Nivcsw),
	}, nil
}
