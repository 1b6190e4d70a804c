// Package stopwatch turns a thread's or process's raw event stream into
// per-(function,label) key results: either measured durations (from
// Start/Stop pairs) or pre-aggregated summaries passed through unchanged.
//
// It mirrors the two-stage shape of the Python reference's duration
// extractors: a single-thread extractor that tracks one call stack, and a
// process-level aggregator that fans a process's events out to one
// extractor per thread_id and merges their results back together.
package stopwatch

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jacquev6/chrones/internal/chronevent"
)

// Key identifies one (function_name, label) pair. Label is carried as a
// value plus a presence flag rather than a pointer so Key stays comparable
// and usable directly as a map key.
type Key struct {
	FunctionName string
	Label        string
	HasLabel     bool
}

func keyOf(functionName string, label *string) Key {
	if label == nil {
		return Key{FunctionName: functionName}
	}
	return Key{FunctionName: functionName, Label: *label, HasLabel: true}
}

// LabelPtr returns the label in the *string shape the chronevent package
// uses, nil when the key has none.
func (k Key) LabelPtr() *string {
	if !k.HasLabel {
		return nil
	}
	l := k.Label
	return &l
}

// Result holds, per key and in first-seen order, the raw durations measured
// from Start/Stop pairs and the pre-aggregated summaries encountered
// verbatim. A given key may appear in either map, both, or neither.
type Result struct {
	Durations *orderedmap.OrderedMap[Key, []int64]
	Summaries *orderedmap.OrderedMap[Key, []chronevent.StopwatchSummary]
}

func newResult() Result {
	return Result{
		Durations: orderedmap.New[Key, []int64](),
		Summaries: orderedmap.New[Key, []chronevent.StopwatchSummary](),
	}
}

func (r Result) appendDuration(key Key, d int64) {
	existing, _ := r.Durations.Get(key)
	r.Durations.Set(key, append(existing, d))
}

func (r Result) appendSummary(key Key, s chronevent.StopwatchSummary) {
	existing, _ := r.Summaries.Get(key)
	r.Summaries.Set(key, append(existing, s))
}

// ThreadExtractor consumes one thread's events in timestamp order and
// matches each Stop against the most recently opened, still-open Start, per
// the stack discipline described for single-threaded execution.
type ThreadExtractor struct {
	stack  []chronevent.StopwatchStart
	result Result
}

// NewThreadExtractor returns an extractor ready to consume one thread's
// events.
func NewThreadExtractor() *ThreadExtractor {
	return &ThreadExtractor{result: newResult()}
}

// Process folds one event into the extractor's state. Only StopwatchStart,
// StopwatchStop and StopwatchSummary events belonging to this thread should
// be passed in, in the order they occurred.
func (x *ThreadExtractor) Process(e chronevent.Event) error {
	switch ev := e.(type) {
	case chronevent.StopwatchStart:
		x.stack = append(x.stack, ev)
	case chronevent.StopwatchStop:
		if len(x.stack) == 0 {
			return ErrUnbalancedStopwatch
		}
		start := x.stack[len(x.stack)-1]
		x.stack = x.stack[:len(x.stack)-1]
		duration := ev.Head.Timestamp - start.Head.Timestamp
		if duration < 0 {
			return ErrNegativeDuration
		}
		x.result.appendDuration(keyOf(start.FunctionName, start.Label), duration)
	case chronevent.StopwatchSummary:
		x.result.appendSummary(keyOf(ev.FunctionName, ev.Label), ev)
	}
	return nil
}

// Finish returns the accumulated Result. It fails if any Start is still
// unmatched, meaning the stream ended mid-interval.
func (x *ThreadExtractor) Finish() (Result, error) {
	if len(x.stack) != 0 {
		return Result{}, ErrUnbalancedStopwatch
	}
	return x.result, nil
}
