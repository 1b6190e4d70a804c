//go:build linux

// Package metrics samples OS-level per-process and system-wide resource
// accounting on a one-shot basis: every exported reader takes a single
// snapshot from /proc, with no caching beyond what a single tick needs.
package metrics

// Sample is one tick's instant metrics for a single tracked process.
// GPUPercent and GPUMemory start unset and are filled in later, by the GPU
// probe driver, only for the sample whose Timestamp matches the probe's
// tick.
type Sample struct {
	Timestamp float64 // wall-clock seconds, floating-point

	Threads        int
	CPUPercent     float64
	UserTime       float64 // seconds
	SystemTime     float64 // seconds
	MemoryRSS      int64   // bytes
	OpenFiles      int
	ReadChars      int64 // bytes, cumulative since process start
	WriteChars     int64 // bytes, cumulative since process start
	VoluntaryCtx   int64
	InvoluntaryCtx int64

	GPUPercent *float64
	GPUMemory  *float64
}

// SystemSample is one tick's system-wide instant metrics, appended once per
// tick regardless of how many processes are tracked.
type SystemSample struct {
	Timestamp float64

	HostToDeviceTransferRate *float64 // MB/s
	DeviceToHostTransferRate *float64 // MB/s
}

// GlobalUsage is a process-group resource-usage snapshot, as returned by
// getrusage(RUSAGE_CHILDREN). MainProcess.GlobalMetrics is the elementwise
// delta between a Before and an After snapshot.
type GlobalUsage struct {
	UserTime                  float64 // seconds
	SystemTime                float64 // seconds
	MinorPageFaults           int64
	MajorPageFaults           int64
	InputBlocks               int64
	OutputBlocks              int64
	VoluntaryContextSwitches  int64
	InvoluntaryContextSwitches int64
}

// Delta returns after - before, field by field, matching the run record
// builder's sole privilege of reading this difference.
func Delta(before, after GlobalUsage) GlobalUsage {
	return GlobalUsage{
		UserTime:                   after.UserTime - before.UserTime,
		SystemTime:                 after.SystemTime - before.SystemTime,
		MinorPageFaults:            after.MinorPageFaults - before.MinorPageFaults,
		MajorPageFaults:            after.MajorPageFaults - before.MajorPageFaults,
		InputBlocks:                after.InputBlocks - before.InputBlocks,
		OutputBlocks:               after.OutputBlocks - before.OutputBlocks,
		VoluntaryContextSwitches:   after.VoluntaryContextSwitches - before.VoluntaryContextSwitches,
		InvoluntaryContextSwitches: after.InvoluntaryContextSwitches - before.InvoluntaryContextSwitches,
	}
}
