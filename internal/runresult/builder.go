package runresult

import (
	"github.com/jacquev6/chrones/internal/metrics"
	"github.com/jacquev6/chrones/internal/tracker"
)

// BuildOptions carries everything the builder needs beyond the tracker
// tree itself: the exit code the OS reported for the main process, the
// process-group resource-usage delta, whether GPU monitoring was on, and
// the run-wide system-metric buffer.
type BuildOptions struct {
	ExitCode     int
	GlobalUsage  metrics.GlobalUsage
	GPUMonitored bool
	System       []metrics.SystemSample
}

// Build walks tr's tree, rooted at tr.Root, into a frozen RunResults.
// Ordering within each Process's Children follows tracker discovery
// order, since tracker.Process.Children is itself append-ordered.
func Build(tr *tracker.Tracker, opts BuildOptions) RunResults {
	main := MainProcess{
		Process:       freezeProcess(tr.Root),
		ExitCode:      opts.ExitCode,
		GlobalMetrics: globalUsageToMetrics(opts.GlobalUsage),
	}

	return RunResults{
		RunSettings: RunSettings{GPUMonitored: opts.GPUMonitored},
		System:      freezeSystemSamples(opts.System),
		MainProcess: main,
	}
}

func freezeProcess(p *tracker.Process) Process {
	children := make([]Process, 0, len(p.Children))
	for _, c := range p.Children {
		children = append(children, freezeProcess(c))
	}

	var terminated TimestampBracket
	if p.Terminated != nil {
		terminated = TimestampBracket{p.Terminated.Prev, p.Terminated.This}
	}

	return Process{
		CommandList:                 p.Argv,
		PID:                         p.PID,
		StartedBetweenTimestamps:    TimestampBracket{p.Discovered.Prev, p.Discovered.This},
		TerminatedBetweenTimestamps: terminated,
		InstantMetrics:              freezeSamples(p.Samples),
		Children:                    children,
	}
}

func freezeSamples(samples []metrics.Sample) []ProcessInstantMetrics {
	out := make([]ProcessInstantMetrics, 0, len(samples))
	for _, s := range samples {
		out = append(out, ProcessInstantMetrics{
			Timestamp:      s.Timestamp,
			Threads:        s.Threads,
			CPUPercent:     s.CPUPercent,
			UserTime:       s.UserTime,
			SystemTime:     s.SystemTime,
			MemoryRSS:      s.MemoryRSS,
			OpenFiles:      s.OpenFiles,
			ReadChars:      s.ReadChars,
			WriteChars:     s.WriteChars,
			VoluntaryCtx:   s.VoluntaryCtx,
			InvoluntaryCtx: s.InvoluntaryCtx,
			GPUPercent:     s.GPUPercent,
			GPUMemory:      s.GPUMemory,
		})
	}
	return out
}

func freezeSystemSamples(samples []metrics.SystemSample) []SystemInstantMetrics {
	out := make([]SystemInstantMetrics, 0, len(samples))
	for _, s := range samples {
		out = append(out, SystemInstantMetrics{
			Timestamp:                s.Timestamp,
			HostToDeviceTransferRate: s.HostToDeviceTransferRate,
			DeviceToHostTransferRate: s.DeviceToHostTransferRate,
		})
	}
	return out
}
