package runresult

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeEventsFile(t *testing.T, dir string, pid int, rows string) {
	t.Helper()
	name := filepath.Join(dir, "program."+strconv.Itoa(pid)+".chrones.csv")
	if err := os.WriteFile(name, []byte(rows), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestAnalyze_SingleProcessSingleDuration(t *testing.T) {
	dir := t.TempDir()
	writeEventsFile(t, dir, 123, ""+
		"p,t,100,sw_start,f,-,-\n"+
		"p,t,400,sw_stop\n",
	)

	main := MainProcess{Process: Process{PID: 123}}
	got, err := Analyze(dir, main)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1: %+v", len(got), got)
	}
	if got[0].FunctionName != "f" || got[0].TotalDuration != 300 {
		t.Errorf("got %+v, want FunctionName=f TotalDuration=300", got[0])
	}
}

func TestAnalyze_MissingEventsFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	main := MainProcess{Process: Process{PID: 999}}
	got, err := Analyze(dir, main)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestAnalyze_MergesAcrossParentAndChild(t *testing.T) {
	dir := t.TempDir()
	writeEventsFile(t, dir, 1, ""+
		"p,t,100,sw_start,f,-,-\n"+
		"p,t,200,sw_stop\n",
	)
	writeEventsFile(t, dir, 2, ""+
		"p,t,0,sw_start,f,-,-\n"+
		"p,t,50,sw_stop\n",
	)

	main := MainProcess{Process: Process{
		PID:      1,
		Children: []Process{{PID: 2}},
	}}
	got, err := Analyze(dir, main)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1: %+v", len(got), got)
	}
	if got[0].ExecutionsCount != 2 || got[0].TotalDuration != 150 {
		t.Errorf("got %+v, want ExecutionsCount=2 TotalDuration=150", got[0])
	}
}
