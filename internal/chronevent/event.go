// Package chronevent defines the chrones CSV event wire format and the
// pure codec that turns one CSV row into a typed Event, or rejects it.
package chronevent

// Header carries the fields common to every event variant.
type Header struct {
	ProcessID string
	ThreadID  string
	// Timestamp is nanoseconds since an arbitrary epoch, as written by the
	// instrumentation collaborator. Comparable only within a single run.
	Timestamp int64
}

// Event is the closed set of rows a *.chrones.csv file can contain.
// The three variants are known statically; callers type-switch on them
// rather than simulating the union through an interface hierarchy.
type Event interface {
	header() Header
}

// StopwatchStart marks the beginning of a named interval in one thread.
type StopwatchStart struct {
	Head         Header
	FunctionName string
	// Label and Index are absent ("-" in the CSV) unless the instrumented
	// call site provided them.
	Label *string
	Index *int64
}

func (e StopwatchStart) header() Header { return e.Head }

// StopwatchStop closes the most recently opened, still-open Start in the
// same thread. It carries no payload beyond the header.
type StopwatchStop struct {
	Head Header
}

func (e StopwatchStop) header() Header { return e.Head }

// StopwatchSummary is a pre-aggregated statistic for one (function, label)
// key, as emitted directly by the instrumented program instead of being
// derived from raw Start/Stop pairs. All duration fields are nanoseconds.
type StopwatchSummary struct {
	Head                      Header
	FunctionName              string
	Label                     *string
	ExecutionsCount           int64
	AverageDuration           int64
	DurationStandardDeviation int64
	MinDuration               int64
	MedianDuration            int64
	MaxDuration               int64
	TotalDuration             int64
}

func (e StopwatchSummary) header() Header { return e.Head }

// ProcessID returns the process_id field common to every event.
func ProcessID(e Event) string { return e.header().ProcessID }

// ThreadID returns the thread_id field common to every event.
func ThreadID(e Event) string { return e.header().ThreadID }

// Timestamp returns the ns_timestamp field common to every event.
func Timestamp(e Event) int64 { return e.header().Timestamp }
