//go:build linux

package metrics

// Sampler takes instant samples for a set of tracked processes. It keeps
// just enough per-pid state to turn cumulative CPU-time counters into a
// cpu_percent reading: the previous wall-clock timestamp and the previous
// utime/stime jiffy counts.
type Sampler struct {
	procRoot   string
	clockTicks float64
	prev       map[int]cpuState
}

type cpuState struct {
	timestamp  float64
	utimeTicks uint64
	stimeTicks uint64
}

// NewSampler returns a Sampler reading from the real /proc.
func NewSampler() *Sampler {
	return NewSamplerAt(DefaultProcRoot)
}

// NewSamplerAt returns a Sampler reading from procRoot, for tests driving a
// fake procfs tree.
func NewSamplerAt(procRoot string) *Sampler {
	return &Sampler{procRoot: procRoot, clockTicks: clockTicks(), prev: map[int]cpuState{}}
}

// Prime performs the priming read the OS's CPU-accounting convention
// requires at process discovery: it records utime/stime without producing
// a Sample, so the first real Sample has a baseline to diff against. Per
// the instant sampler's contract, it must be called once, at discovery
// time, before the first call to Sample for this pid.
func (s *Sampler) Prime(pid int, now float64) error {
	utime, stime, err := readStatTimes(s.procRoot, pid)
	if err != nil {
		return wrapAccessError(pid, err)
	}
	s.prev[pid] = cpuState{timestamp: now, utimeTicks: utime, stimeTicks: stime}
	return nil
}

// ProcRoot returns the procfs root this sampler reads from, for callers
// that need to drive other /proc readers (ReadChildren, ReadCmdline)
// against the same tree.
func (s *Sampler) ProcRoot() string {
	return s.procRoot
}

// Forget drops a pid's CPU-accounting state once the process is no longer
// tracked, so the map doesn't grow across a long run.
func (s *Sampler) Forget(pid int) {
	delete(s.prev, pid)
}

// Sample takes one instant sample for pid at wall-clock time now. GPU
// fields are left nil; the GPU probe driver fills them in separately, only
// for samples whose Timestamp matches its own tick. On any access error
// the caller should warn and skip this tick for this process rather than
// abort the run.
func (s *Sampler) Sample(pid int, now float64) (Sample, error) {
	utime, stime, err := readStatTimes(s.procRoot, pid)
	if err != nil {
		return Sample{}, wrapAccessError(pid, err)
	}

	var cpuPercent float64
	if prev, ok := s.prev[pid]; ok {
		dtWall := now - prev.timestamp
		if dtWall > 0 {
			dtTicks := float64((utime - prev.utimeTicks) + (stime - prev.stimeTicks))
			cpuPercent = dtTicks / s.clockTicks / dtWall * 100
		}
	}
	s.prev[pid] = cpuState{timestamp: now, utimeTicks: utime, stimeTicks: stime}

	threads, voluntary, involuntary, err := readStatus(s.procRoot, pid)
	if err != nil {
		return Sample{}, wrapAccessError(pid, err)
	}
	rchar, wchar, err := readIOChars(s.procRoot, pid)
	if err != nil {
		return Sample{}, wrapAccessError(pid, err)
	}
	rss, err := readRSS(s.procRoot, pid)
	if err != nil {
		return Sample{}, wrapAccessError(pid, err)
	}
	openFiles, err := readOpenFilesCount(s.procRoot, pid)
	if err != nil {
		return Sample{}, wrapAccessError(pid, err)
	}

	return Sample{
		Timestamp:      now,
		Threads:        threads,
		CPUPercent:     cpuPercent,
		UserTime:       float64(utime) / s.clockTicks,
		SystemTime:     float64(stime) / s.clockTicks,
		MemoryRSS:      rss,
		OpenFiles:      openFiles,
		ReadChars:      rchar,
		WriteChars:     wchar,
		VoluntaryCtx:   voluntary,
		InvoluntaryCtx: involuntary,
	}, nil
}
