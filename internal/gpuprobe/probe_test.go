package gpuprobe

import (
	"errors"
	"testing"

	"github.com/jacquev6/chrones/internal/metrics"
	"github.com/jacquev6/chrones/internal/tracker"
)

const pmonFixture = "" +
	"# gpu        pid  type    sm   mem   enc   dec   fb   command\n" +
	"# Idx          #   C/C+G   %     %     %     %     MB   name\n" +
	"    0        123 C        42    10     -     -   512   python\n" +
	"    0        456 C         -     -     -     -     -   idle_tool\n"

const dmonFixtureOneDevice = "" +
	"# gpu   rxpci   txpci\n" +
	"# Idx     MB/s    MB/s\n" +
	"    0      123      45\n"

const dmonFixtureTwoDevices = "" +
	"# gpu   rxpci   txpci\n" +
	"# Idx     MB/s    MB/s\n" +
	"    0      123      45\n" +
	"    1       10       5\n"

func trackerWithSample(pid int, timestamp float64) *tracker.Tracker {
	tr := tracker.New(pid, nil, tracker.Bracket{})
	p, _ := tr.Lookup(pid)
	p.Samples = append(p.Samples, metrics.Sample{Timestamp: timestamp})
	return tr
}

func TestParsePmon_SetsGPUFieldsOnMatchingSample(t *testing.T) {
	tr := trackerWithSample(123, 1.5)
	if err := parsePmon(pmonFixture, tr, 1.5); err != nil {
		t.Fatalf("parsePmon() error = %v", err)
	}
	p, _ := tr.Lookup(123)
	last := p.Samples[len(p.Samples)-1]
	if last.GPUPercent == nil || *last.GPUPercent != 42 {
		t.Errorf("GPUPercent = %v, want 42", last.GPUPercent)
	}
	if last.GPUMemory == nil || *last.GPUMemory != 512 {
		t.Errorf("GPUMemory = %v, want 512", last.GPUMemory)
	}
}

func TestParsePmon_DashFieldsBecomeZero(t *testing.T) {
	tr := trackerWithSample(456, 1.5)
	if err := parsePmon(pmonFixture, tr, 1.5); err != nil {
		t.Fatalf("parsePmon() error = %v", err)
	}
	p, _ := tr.Lookup(456)
	last := p.Samples[len(p.Samples)-1]
	if last.GPUPercent == nil || *last.GPUPercent != 0 {
		t.Errorf("GPUPercent = %v, want 0", last.GPUPercent)
	}
	if last.GPUMemory == nil || *last.GPUMemory != 0 {
		t.Errorf("GPUMemory = %v, want 0", last.GPUMemory)
	}
}

func TestParsePmon_UnmatchedTimestampIsSkipped(t *testing.T) {
	tr := trackerWithSample(123, 0.5) // sample from a previous tick
	if err := parsePmon(pmonFixture, tr, 1.5); err != nil {
		t.Fatalf("parsePmon() error = %v", err)
	}
	p, _ := tr.Lookup(123)
	last := p.Samples[len(p.Samples)-1]
	if last.GPUPercent != nil {
		t.Errorf("GPUPercent = %v, want nil (stale sample must not be touched)", *last.GPUPercent)
	}
}

func TestParsePmon_SchemaMismatch(t *testing.T) {
	bad := "gpu pid sm fb\n---\n0 1 2 3\n"
	err := parsePmon(bad, tracker.New(1, nil, tracker.Bracket{}), 0)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestParseDmon_OneDevice(t *testing.T) {
	sample, err := parseDmon(dmonFixtureOneDevice, 2.0)
	if err != nil {
		t.Fatalf("parseDmon() error = %v", err)
	}
	if sample.HostToDeviceTransferRate == nil || *sample.HostToDeviceTransferRate != 123 {
		t.Errorf("HostToDeviceTransferRate = %v, want 123", sample.HostToDeviceTransferRate)
	}
	if sample.DeviceToHostTransferRate == nil || *sample.DeviceToHostTransferRate != 45 {
		t.Errorf("DeviceToHostTransferRate = %v, want 45", sample.DeviceToHostTransferRate)
	}
}

func TestParseDmon_TwoDevicesIsFatal(t *testing.T) {
	_, err := parseDmon(dmonFixtureTwoDevices, 2.0)
	if !errors.Is(err, ErrMultiGPUUnsupported) {
		t.Fatalf("err = %v, want ErrMultiGPUUnsupported", err)
	}
}

func TestParseDmon_SchemaMismatch(t *testing.T) {
	bad := "gpu rxpci txpci\n---\n0 1 2\n"
	_, err := parseDmon(bad, 0)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}
