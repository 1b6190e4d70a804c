//go:build linux

// Package scheduler drives the single cooperative sampling loop: spawn
// the supervised command, then alternate between waiting on it with a
// bounded timeout and performing one sampling tick, until it exits.
package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/jacquev6/chrones/internal/config"
	"github.com/jacquev6/chrones/internal/gpuprobe"
	"github.com/jacquev6/chrones/internal/metrics"
	"github.com/jacquev6/chrones/internal/tracker"
	"github.com/jacquev6/chrones/internal/warn"
)

// Result is everything one supervised run produces, in the shape
// internal/runresult.Build consumes.
type Result struct {
	Tracker     *tracker.Tracker
	ExitCode    int
	GlobalUsage metrics.GlobalUsage
	System      []metrics.SystemSample
}

type waitOutcome struct {
	state *os.ProcessState
	err   error
}

// Run launches argv under supervision with cfg's monitoring settings and
// drives the scheduler loop until the command exits, per the scheduled
// instants spawn_time + k*interval (SPEC_FULL.md §4.8). CHRONES_LOGS_DIRECTORY
// is exported to the child's environment before it starts, per §6.
func Run(argv []string, cfg config.RunnerConfig, warner *warn.Reporter) (Result, error) {
	usageBefore, err := childrenUsage()
	if err != nil {
		return Result{}, fmt.Errorf("scheduler: read resource usage before run: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = append(os.Environ(), "CHRONES_LOGS_DIRECTORY="+cfg.LogsDirectory)

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrChildSpawnFailed, err)
	}
	spawnTime := time.Now()

	sampler := metrics.NewSampler()
	tr := tracker.New(cmd.Process.Pid, argv, tracker.Bracket{Prev: 0, This: 0})
	if err := sampler.Prime(cmd.Process.Pid, 0); err != nil {
		warner.Warn("sampler", "priming read for main process failed: %v", err)
	}

	waitCh := make(chan waitOutcome, 1)
	go func() {
		err := cmd.Wait()
		waitCh <- waitOutcome{state: cmd.ProcessState, err: err}
	}()

	interval := cfg.MonitoringInterval
	intervalSeconds := interval.Seconds()
	iteration := 0
	previousTimestamp := 0.0
	var system []metrics.SystemSample

	for {
		iterationBefore := iteration
		var timeout time.Duration
		for {
			iteration++
			scheduled := spawnTime.Add(time.Duration(iteration) * interval)
			timeout = time.Until(scheduled)
			if timeout > 0 {
				break
			}
		}
		missing := iteration - iterationBefore - 1
		if missing > cfg.AllowedMissingSamples {
			warner.Warn(
				"scheduler",
				"monitoring is slow: %d samples will be missing between t=%.3fs and t=%.3fs",
				missing,
				float64(iterationBefore+1)*intervalSeconds,
				float64(iteration-1)*intervalSeconds,
			)
		}

		select {
		case outcome := <-waitCh:
			now := float64(iteration) * intervalSeconds
			tr.FinalizeAll(tracker.Bracket{Prev: previousTimestamp, This: now})

			usageAfter, err := childrenUsage()
			if err != nil {
				return Result{}, fmt.Errorf("scheduler: read resource usage after run: %w", err)
			}

			exitCode := 0
			if outcome.state != nil {
				exitCode = outcome.state.ExitCode()
			} else if outcome.err != nil {
				exitCode = -1
			}

			return Result{
				Tracker:     tr,
				ExitCode:    exitCode,
				GlobalUsage: metrics.Delta(usageBefore, usageAfter),
				System:      system,
			}, nil

		case <-time.After(timeout):
			now := float64(iteration) * intervalSeconds
			sysSample, err := runTick(tr, sampler, cfg.MonitorGPU, previousTimestamp, now, warner)
			if err != nil {
				return Result{}, err
			}
			if sysSample != nil {
				system = append(system, *sysSample)
			}
			previousTimestamp = now
		}
	}
}

// runTick performs one sampling iteration: spawn the GPU probes as early
// as possible, sample every still-tracked process, discover new
// children, drop processes the OS no longer reports, then join the GPU
// probes as late as possible (SPEC_FULL.md §4.7).
func runTick(tr *tracker.Tracker, sampler *metrics.Sampler, gpuMonitored bool, previousTimestamp, now float64, warner *warn.Reporter) (*metrics.SystemSample, error) {
	var tick *gpuprobe.Tick
	if gpuMonitored {
		var err error
		tick, err = gpuprobe.Spawn()
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
	}

	for _, pid := range tr.MonitoredPIDs() {
		sample, err := sampler.Sample(pid, now)
		if err != nil {
			if os.IsNotExist(err) {
				sampler.Forget(pid)
				tr.Drop(pid, tracker.Bracket{Prev: previousTimestamp, This: now})
				continue
			}
			warner.Warn("sampler", "instant metrics for pid %d missing at t=%.3fs: %v", pid, now, err)
			continue
		}

		process, ok := tr.Lookup(pid)
		if !ok {
			continue
		}
		process.Samples = append(process.Samples, sample)

		children, err := metrics.ReadChildren(sampler.ProcRoot(), pid)
		if err != nil {
			continue
		}
		for _, childPID := range children {
			if _, already := tr.Lookup(childPID); already {
				continue
			}
			argv, _ := metrics.ReadCmdline(sampler.ProcRoot(), childPID)
			tr.Discover(childPID, pid, argv, tracker.Bracket{Prev: previousTimestamp, This: now})
			if err := sampler.Prime(childPID, now); err != nil {
				warner.Warn("sampler", "priming read for pid %d failed: %v", childPID, err)
			}
		}
	}

	if tick == nil {
		return nil, nil
	}
	sysSample, err := tick.Collect(tr, now)
	if err != nil {
		return nil, err
	}
	return &sysSample, nil
}
