package runresult

import (
	"testing"

	"github.com/jacquev6/chrones/internal/metrics"
	"github.com/jacquev6/chrones/internal/tracker"
)

func TestBuild_EmptyProgram(t *testing.T) {
	tr := tracker.New(100, []string{"true"}, tracker.Bracket{Prev: 0, This: 0.01})
	tr.FinalizeAll(tracker.Bracket{Prev: 0.01, This: 0.02})

	results := Build(tr, BuildOptions{ExitCode: 0})

	if results.MainProcess.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", results.MainProcess.ExitCode)
	}
	if len(results.MainProcess.InstantMetrics) != 0 {
		t.Errorf("InstantMetrics = %v, want empty", results.MainProcess.InstantMetrics)
	}
	if len(results.MainProcess.Children) != 0 {
		t.Errorf("Children = %v, want empty", results.MainProcess.Children)
	}
	if results.MainProcess.GlobalMetrics.UserTime < 0 {
		t.Errorf("UserTime = %v, want >= 0", results.MainProcess.GlobalMetrics.UserTime)
	}
}

func TestBuild_ChildTreeDepthAndOrder(t *testing.T) {
	tr := tracker.New(1, []string{"parent"}, tracker.Bracket{Prev: 0, This: 1})
	tr.Discover(2, 1, []string{"child"}, tracker.Bracket{Prev: 1, This: 2})
	tr.Discover(3, 2, []string{"grandchild"}, tracker.Bracket{Prev: 2, This: 3})
	tr.FinalizeAll(tracker.Bracket{Prev: 10, This: 11})

	results := Build(tr, BuildOptions{ExitCode: 0})

	root := results.MainProcess.Process
	if len(root.Children) != 1 || root.Children[0].PID != 2 {
		t.Fatalf("root.Children = %+v, want one child pid=2", root.Children)
	}
	child := root.Children[0]
	if len(child.Children) != 1 || child.Children[0].PID != 3 {
		t.Fatalf("child.Children = %+v, want one child pid=3", child.Children)
	}
	if child.Children[0].StartedBetweenTimestamps[0] > child.Children[0].StartedBetweenTimestamps[1] {
		t.Errorf("StartedBetweenTimestamps out of order: %v", child.Children[0].StartedBetweenTimestamps)
	}
	if root.TerminatedBetweenTimestamps != (TimestampBracket{10, 11}) {
		t.Errorf("TerminatedBetweenTimestamps = %v, want {10, 11}", root.TerminatedBetweenTimestamps)
	}
}

func TestBuild_FreezesSamplesAndSystemMetrics(t *testing.T) {
	tr := tracker.New(1, []string{"cmd"}, tracker.Bracket{})
	root, _ := tr.Lookup(1)
	root.Samples = append(root.Samples, metrics.Sample{Timestamp: 1.0, Threads: 4, CPUPercent: 50})
	tr.FinalizeAll(tracker.Bracket{Prev: 1, This: 2})

	rx := 100.0
	results := Build(tr, BuildOptions{
		ExitCode: 7,
		System:   []metrics.SystemSample{{Timestamp: 1.0, HostToDeviceTransferRate: &rx}},
	})

	if len(results.MainProcess.InstantMetrics) != 1 || results.MainProcess.InstantMetrics[0].Threads != 4 {
		t.Fatalf("InstantMetrics = %+v", results.MainProcess.InstantMetrics)
	}
	if len(results.System) != 1 || *results.System[0].HostToDeviceTransferRate != 100.0 {
		t.Fatalf("System = %+v", results.System)
	}
	if results.MainProcess.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", results.MainProcess.ExitCode)
	}
}
