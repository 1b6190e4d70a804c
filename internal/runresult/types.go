// Package runresult holds the frozen, JSON-persisted shape of a finished
// run, and the builder that walks a tracker.Tracker's tree into it once
// the supervised command has exited.
package runresult

import "github.com/jacquev6/chrones/internal/metrics"

// TimestampBracket is an ordered pair of wall-clock seconds bounding an
// unobservable moment: a process's birth or death lies somewhere between
// the previous tick's reading and this one's.
type TimestampBracket [2]float64

// ProcessInstantMetrics is one frozen sample of a process's OS-level
// resource accounting at one tick.
type ProcessInstantMetrics struct {
	Timestamp float64 `json:"timestamp"`

	Threads        int     `json:"threads"`
	CPUPercent     float64 `json:"cpu_percent"`
	UserTime       float64 `json:"user_time"`
	SystemTime     float64 `json:"system_time"`
	MemoryRSS      int64   `json:"memory_rss"`
	OpenFiles      int     `json:"open_files"`
	ReadChars      int64   `json:"io_read_chars"`
	WriteChars     int64   `json:"io_write_chars"`
	VoluntaryCtx   int64   `json:"context_switches_voluntary"`
	InvoluntaryCtx int64   `json:"context_switches_involuntary"`

	GPUPercent *float64 `json:"gpu_percent,omitempty"`
	GPUMemory  *float64 `json:"gpu_memory,omitempty"`
}

// SystemInstantMetrics is one frozen system-wide sample.
type SystemInstantMetrics struct {
	Timestamp                float64  `json:"timestamp"`
	HostToDeviceTransferRate *float64 `json:"host_to_device_transfer_rate,omitempty"`
	DeviceToHostTransferRate *float64 `json:"device_to_host_transfer_rate,omitempty"`
}

// Process is a frozen record of one monitored process: its command,
// lifetime brackets, every instant sample taken while it was tracked,
// and its children in first-observed order.
type Process struct {
	CommandList                 []string              `json:"command_list"`
	PID                          int                   `json:"pid"`
	StartedBetweenTimestamps     TimestampBracket       `json:"started_between_timestamps"`
	TerminatedBetweenTimestamps  TimestampBracket       `json:"terminated_between_timestamps"`
	InstantMetrics               []ProcessInstantMetrics `json:"instant_metrics"`
	Children                     []Process              `json:"children"`
}

// GlobalMetrics is the main process's process-group resource-usage delta,
// taken over getrusage(RUSAGE_CHILDREN) readings bracketing the whole run.
type GlobalMetrics struct {
	UserTime                   float64 `json:"user_time"`
	SystemTime                 float64 `json:"system_time"`
	MinorPageFaults            int64   `json:"minor_page_faults"`
	MajorPageFaults            int64   `json:"major_page_faults"`
	InputBlocks                int64   `json:"input_blocks"`
	OutputBlocks               int64   `json:"output_blocks"`
	VoluntaryContextSwitches   int64   `json:"voluntary_context_switches"`
	InvoluntaryContextSwitches int64   `json:"involuntary_context_switches"`
}

// MainProcess extends Process with the supervised command's exit code and
// its process-group resource-usage delta.
type MainProcess struct {
	Process
	ExitCode      int           `json:"exit_code"`
	GlobalMetrics GlobalMetrics `json:"global_metrics"`
}

// RunSettings records the subset of the runner configuration that
// affects how a result should be interpreted downstream.
type RunSettings struct {
	GPUMonitored bool `json:"gpu_monitored"`
}

// RunResults is the full, immutable outcome of one supervised run.
type RunResults struct {
	RunSettings RunSettings             `json:"run_settings"`
	System      []SystemInstantMetrics  `json:"system"`
	MainProcess MainProcess             `json:"main_process"`
}

// Envelope is the versioned, persisted form of a RunResults. Any future
// change to RunResults's shape requires incrementing FormatVersion and
// keeping a loader for the previous one.
type Envelope struct {
	FormatVersion int        `json:"format_version"`
	Data          RunResults `json:"data"`
}

// CurrentFormatVersion is the format_version this package writes.
const CurrentFormatVersion = 1

// globalUsageToMetrics adapts a metrics.GlobalUsage delta (producer-side
// type, shared with the scheduler) into the frozen GlobalMetrics shape.
func globalUsageToMetrics(u metrics.GlobalUsage) GlobalMetrics {
	return GlobalMetrics{
		UserTime:                   u.UserTime,
		SystemTime:                 u.SystemTime,
		MinorPageFaults:            u.MinorPageFaults,
		MajorPageFaults:            u.MajorPageFaults,
		InputBlocks:                u.InputBlocks,
		OutputBlocks:               u.OutputBlocks,
		VoluntaryContextSwitches:   u.VoluntaryContextSwitches,
		InvoluntaryContextSwitches: u.InvoluntaryContextSwitches,
	}
}
