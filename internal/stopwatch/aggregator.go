package stopwatch

import (
	"io"

	"github.com/jacquev6/chrones/internal/chronevent"
)

// EventSource is a single-pass, finite source of events: a thin iterator so
// callers can drive extraction from a CSV scanner, a slice, or anything
// else without the stopwatch package caring which. It returns io.EOF once
// exhausted.
type EventSource func() (chronevent.Event, error)

// SliceSource adapts a slice into an EventSource, for tests and for callers
// that already hold every event in memory.
func SliceSource(events []chronevent.Event) EventSource {
	i := 0
	return func() (chronevent.Event, error) {
		if i >= len(events) {
			return nil, io.EOF
		}
		e := events[i]
		i++
		return e, nil
	}
}

// ProcessAggregator fans a process's events out across its threads, one
// ThreadExtractor per thread_id, and merges the per-thread results back
// together once the stream is exhausted.
type ProcessAggregator struct {
	order      []string
	extractors map[string]*ThreadExtractor
}

// NewProcessAggregator returns an aggregator ready to consume one process's
// events.
func NewProcessAggregator() *ProcessAggregator {
	return &ProcessAggregator{extractors: map[string]*ThreadExtractor{}}
}

// Consume drains src, routing each event to the extractor for its
// thread_id, lazily creating one the first time a thread_id is seen. It
// stops at the first error, including io.EOF (translated to nil).
func (a *ProcessAggregator) Consume(src EventSource) error {
	for {
		e, err := src()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		threadID := chronevent.ThreadID(e)
		x, ok := a.extractors[threadID]
		if !ok {
			x = NewThreadExtractor()
			a.extractors[threadID] = x
			a.order = append(a.order, threadID)
		}
		if err := x.Process(e); err != nil {
			return err
		}
	}
}

// Finish merges every thread's Result, in the order each thread_id was
// first encountered, and returns the process-level Result. Within a key,
// durations and summaries from different threads are concatenated in that
// same thread-discovery order; the order in which distinct keys first
// appear is preserved across the merge.
func (a *ProcessAggregator) Finish() (Result, error) {
	merged := newResult()
	for _, threadID := range a.order {
		r, err := a.extractors[threadID].Finish()
		if err != nil {
			return Result{}, err
		}
		mergeInto(merged, r)
	}
	return merged, nil
}

func mergeInto(dst, src Result) {
	for pair := src.Durations.Oldest(); pair != nil; pair = pair.Next() {
		existing, _ := dst.Durations.Get(pair.Key)
		dst.Durations.Set(pair.Key, append(existing, pair.Value...))
	}
	for pair := src.Summaries.Oldest(); pair != nil; pair = pair.Next() {
		existing, _ := dst.Summaries.Get(pair.Key)
		dst.Summaries.Set(pair.Key, append(existing, pair.Value...))
	}
}

// Merge combines two already-finished Results the same way Finish merges
// threads within a process: key-wise concatenation, first Result's keys
// and entries before the second's. It is used to combine per-process
// results into the multi-process view the summary synthesizer consumes.
func Merge(results ...Result) Result {
	merged := newResult()
	for _, r := range results {
		mergeInto(merged, r)
	}
	return merged
}
