// Package gpuprobe drives the two external nvidia-smi probes that attribute
// GPU utilization to tracked PIDs and report system-wide PCIe transfer
// rates, one tick at a time.
package gpuprobe

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jacquev6/chrones/internal/metrics"
	"github.com/jacquev6/chrones/internal/tracker"
)

const (
	binaryName = "nvidia-smi"

	pmonPIDColumn = 1
	pmonSMColumn  = 3
	pmonFBColumn  = 7

	dmonRxColumn = 1
	dmonTxColumn = 2
)

// Available reports whether the nvidia-smi binary can be found on PATH.
// Callers should check this once at startup: per the run configuration,
// GPU monitoring requested without the binary present is a fatal
// configuration error, not a per-tick failure.
func Available() bool {
	_, err := exec.LookPath(binaryName)
	return err == nil
}

// Tick represents the two probes spawned for one sampling tick, started as
// early as possible so they run concurrently with the rest of the tick's
// OS sampling. Collect must be called exactly once, as late as possible in
// the tick, to join both subprocesses and parse their output.
type Tick struct {
	dmon    *exec.Cmd
	pmon    *exec.Cmd
	dmonOut *bytes.Buffer
	pmonOut *bytes.Buffer
}

// Spawn starts the system-transfer probe (dmon) and the process-attribution
// probe (pmon), in that order, matching the upstream convention of
// starting the probe whose output is parsed last, first.
func Spawn() (*Tick, error) {
	t := &Tick{dmonOut: &bytes.Buffer{}, pmonOut: &bytes.Buffer{}}

	t.dmon = exec.Command(binaryName, "dmon", "-c", "1", "-s", "t")
	t.dmon.Stdout = &limitedWriter{W: t.dmonOut, N: maxProbeOutputBytes}
	if err := t.dmon.Start(); err != nil {
		return nil, fmt.Errorf("gpuprobe: spawn dmon: %w", err)
	}

	t.pmon = exec.Command(binaryName, "pmon", "-c", "1", "-s", "um")
	t.pmon.Stdout = &limitedWriter{W: t.pmonOut, N: maxProbeOutputBytes}
	if err := t.pmon.Start(); err != nil {
		return nil, fmt.Errorf("gpuprobe: spawn pmon: %w", err)
	}

	return t, nil
}

// Collect joins both probes and applies their output: GPU attribution is
// written into the latest sample of any tracked process whose Samples
// buffer's last entry has the given timestamp, and one SystemSample is
// returned for the run-wide system-metric buffer.
func (t *Tick) Collect(tr *tracker.Tracker, timestamp float64) (metrics.SystemSample, error) {
	if err := t.pmon.Wait(); err != nil {
		return metrics.SystemSample{}, fmt.Errorf("gpuprobe: pmon: %w", err)
	}
	if err := parsePmon(t.pmonOut.String(), tr, timestamp); err != nil {
		return metrics.SystemSample{}, err
	}

	if err := t.dmon.Wait(); err != nil {
		return metrics.SystemSample{}, fmt.Errorf("gpuprobe: dmon: %w", err)
	}
	return parseDmon(t.dmonOut.String(), timestamp)
}

func parsePmon(output string, tr *tracker.Tracker, timestamp float64) error {
	lines := splitNonEmptyLines(output)
	if len(lines) < 2 {
		return fmt.Errorf("%w: pmon produced fewer than 2 header lines", ErrSchemaMismatch)
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 || header[0] != "#" {
		return fmt.Errorf("%w: pmon header missing leading '#'", ErrSchemaMismatch)
	}
	header = header[1:]
	if !columnIs(header, pmonPIDColumn, "pid") || !columnIs(header, pmonSMColumn, "sm") || !columnIs(header, pmonFBColumn, "fb") {
		return fmt.Errorf("%w: pmon header columns don't match pid/sm/fb at the expected positions", ErrSchemaMismatch)
	}

	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) <= pmonFBColumn {
			continue
		}
		pid, err := strconv.Atoi(fields[pmonPIDColumn])
		if err != nil {
			continue
		}
		process, ok := tr.Lookup(pid)
		if !ok || len(process.Samples) == 0 {
			continue
		}
		last := &process.Samples[len(process.Samples)-1]
		if last.Timestamp != timestamp {
			continue
		}
		sm := parseGPUField(fields[pmonSMColumn])
		fb := parseGPUField(fields[pmonFBColumn])
		last.GPUPercent = &sm
		last.GPUMemory = &fb
	}
	return nil
}

func parseDmon(output string, timestamp float64) (metrics.SystemSample, error) {
	lines := splitNonEmptyLines(output)
	if len(lines) == 0 {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon produced no output", ErrSchemaMismatch)
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 || header[0] != "#" {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon header missing leading '#'", ErrSchemaMismatch)
	}
	header = header[1:]
	if !columnIs(header, 0, "gpu") || !columnIs(header, dmonRxColumn, "rxpci") || !columnIs(header, dmonTxColumn, "txpci") {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon header columns don't match gpu/rxpci/txpci at the expected positions", ErrSchemaMismatch)
	}

	if len(lines) < 3 {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon reported no device line", ErrSchemaMismatch)
	}
	if len(lines) > 3 {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon reported %d lines, want exactly 3 (one device)", ErrMultiGPUUnsupported, len(lines))
	}

	fields := strings.Fields(lines[2])
	if len(fields) <= dmonTxColumn {
		return metrics.SystemSample{}, fmt.Errorf("%w: dmon data line too short", ErrSchemaMismatch)
	}
	rx := parseGPUField(fields[dmonRxColumn])
	tx := parseGPUField(fields[dmonTxColumn])
	return metrics.SystemSample{
		Timestamp:                timestamp,
		HostToDeviceTransferRate: &rx,
		DeviceToHostTransferRate: &tx,
	}, nil
}

// parseGPUField parses a probe's numeric column, treating "-" (the
// probe's own idle marker) and any other non-numeric value as 0.0 rather
// than an error.
func parseGPUField(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func columnIs(fields []string, index int, want string) bool {
	return index < len(fields) && fields[index] == want
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
