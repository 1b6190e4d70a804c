package runresult

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jacquev6/chrones/internal/chronevent"
	"github.com/jacquev6/chrones/internal/stopwatch"
	"github.com/jacquev6/chrones/internal/summary"
)

// Analyze reads every process's event-stream CSV file out of logsDir and
// folds them into the final list of reportable summaries, in the same
// process order Build walked the tracker tree in: the main process first,
// then its children depth-first, each contiguous so that entries for one
// process are never interleaved with another's.
func Analyze(logsDir string, main MainProcess) ([]summary.Summary, error) {
	var results []stopwatch.Result
	if err := collectTree(logsDir, main.Process, &results); err != nil {
		return nil, err
	}
	return summary.Synthesize(stopwatch.Merge(results...)), nil
}

func collectTree(logsDir string, p Process, results *[]stopwatch.Result) error {
	r, ok, err := collectProcess(logsDir, p.PID)
	if err != nil {
		return err
	}
	if ok {
		*results = append(*results, r)
	}
	for _, child := range p.Children {
		if err := collectTree(logsDir, child, results); err != nil {
			return err
		}
	}
	return nil
}

// collectProcess reads and aggregates one process's event stream. A
// process whose CSV file is missing, or whose name is ambiguous (more or
// fewer than one match), contributes nothing: the instrumentation never
// ran, or never flushed, for that process.
func collectProcess(logsDir string, pid int) (stopwatch.Result, bool, error) {
	path, ok, err := findEventsFile(logsDir, pid)
	if err != nil || !ok {
		return stopwatch.Result{}, false, err
	}

	events, err := readEvents(path)
	if err != nil {
		return stopwatch.Result{}, false, fmt.Errorf("runresult: read events for pid %d: %w", pid, err)
	}

	agg := stopwatch.NewProcessAggregator()
	if err := agg.Consume(stopwatch.SliceSource(events)); err != nil {
		return stopwatch.Result{}, false, fmt.Errorf("runresult: extract events for pid %d: %w", pid, err)
	}
	r, err := agg.Finish()
	if err != nil {
		return stopwatch.Result{}, false, fmt.Errorf("runresult: extract events for pid %d: %w", pid, err)
	}
	return r, true, nil
}

func findEventsFile(logsDir string, pid int) (string, bool, error) {
	pattern := filepath.Join(logsDir, fmt.Sprintf("*.%d.chrones.csv", pid))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", false, fmt.Errorf("runresult: glob %s: %w", pattern, err)
	}
	if len(matches) != 1 {
		return "", false, nil
	}
	return matches[0], true, nil
}

func readEvents(path string) ([]chronevent.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var events []chronevent.Event
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		e, err := chronevent.Parse(fields)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
