package stopwatch

import (
	"errors"
	"testing"

	"github.com/jacquev6/chrones/internal/chronevent"
)

func strp(s string) *string { return &s }

func start(thread string, ts int64, function string, label *string) chronevent.StopwatchStart {
	return chronevent.StopwatchStart{
		Head:         chronevent.Header{ProcessID: "p", ThreadID: thread, Timestamp: ts},
		FunctionName: function,
		Label:        label,
	}
}

func stop(thread string, ts int64) chronevent.StopwatchStop {
	return chronevent.StopwatchStop{Head: chronevent.Header{ProcessID: "p", ThreadID: thread, Timestamp: ts}}
}

func durationsOf(t *testing.T, events []chronevent.Event) map[Key][]int64 {
	t.Helper()
	a := NewProcessAggregator()
	if err := a.Consume(SliceSource(events)); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	r, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	out := map[Key][]int64{}
	for pair := r.Durations.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func assertDurations(t *testing.T, got map[Key][]int64, want map[Key][]int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: got=%v want=%v", len(got), len(want), got, want)
	}
	for k, wantDs := range want {
		gotDs, ok := got[k]
		if !ok {
			t.Fatalf("missing key %+v", k)
		}
		if len(gotDs) != len(wantDs) {
			t.Fatalf("key %+v: got %v, want %v", k, gotDs, wantDs)
		}
		for i := range wantDs {
			if gotDs[i] != wantDs[i] {
				t.Fatalf("key %+v: got %v, want %v", k, gotDs, wantDs)
			}
		}
	}
}

func TestExtract_Empty(t *testing.T) {
	got := durationsOf(t, nil)
	assertDurations(t, got, map[Key][]int64{})
}

func TestExtract_SingleDuration(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t", 1234, "f", nil),
		stop("t", 1534),
	})
	assertDurations(t, got, map[Key][]int64{{FunctionName: "f"}: {300}})
}

func TestExtract_DurationWithLabel(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t", 1184, "f", strp("label")),
		stop("t", 1534),
	})
	assertDurations(t, got, map[Key][]int64{{FunctionName: "f", Label: "label", HasLabel: true}: {350}})
}

func TestExtract_DurationsLoop(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t", 100, "f", strp("label")),
		stop("t", 200),
		start("t", 250, "f", strp("label")),
		stop("t", 300),
		start("t", 310, "f", strp("label")),
		stop("t", 460),
	})
	assertDurations(t, got, map[Key][]int64{{FunctionName: "f", Label: "label", HasLabel: true}: {100, 50, 150}})
}

func TestExtract_NestedDurations(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t", 1234, "f", nil),
		start("t", 1334, "g", nil),
		stop("t", 1434),
		stop("t", 1534),
	})
	assertDurations(t, got, map[Key][]int64{
		{FunctionName: "f"}: {300},
		{FunctionName: "g"}: {100},
	})
}

func TestExtract_MultiThreadDurations(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t_a", 1234, "f", nil),
		start("t_b", 1334, "g", nil),
		stop("t_a", 1434),
		stop("t_b", 1584),
	})
	assertDurations(t, got, map[Key][]int64{
		{FunctionName: "f"}: {200},
		{FunctionName: "g"}: {250},
	})
}

func TestExtract_ConcurrentDurations(t *testing.T) {
	got := durationsOf(t, []chronevent.Event{
		start("t_a", 1234, "f", nil),
		start("t_b", 1334, "f", nil),
		stop("t_a", 1434),
		stop("t_b", 1584),
	})
	assertDurations(t, got, map[Key][]int64{{FunctionName: "f"}: {200, 250}})
}

func TestExtract_StopWithEmptyStackIsUnbalanced(t *testing.T) {
	a := NewProcessAggregator()
	err := a.Consume(SliceSource([]chronevent.Event{stop("t", 100)}))
	if !errors.Is(err, ErrUnbalancedStopwatch) {
		t.Fatalf("err = %v, want ErrUnbalancedStopwatch", err)
	}
}

func TestExtract_UnmatchedStartAtEndIsUnbalanced(t *testing.T) {
	a := NewProcessAggregator()
	if err := a.Consume(SliceSource([]chronevent.Event{start("t", 100, "f", nil)})); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	_, err := a.Finish()
	if !errors.Is(err, ErrUnbalancedStopwatch) {
		t.Fatalf("err = %v, want ErrUnbalancedStopwatch", err)
	}
}

func TestExtract_NegativeDuration(t *testing.T) {
	a := NewProcessAggregator()
	err := a.Consume(SliceSource([]chronevent.Event{
		start("t", 1000, "f", nil),
		stop("t", 500),
	}))
	if !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("err = %v, want ErrNegativeDuration", err)
	}
}

func TestExtract_SummariesPassThrough(t *testing.T) {
	summary := chronevent.StopwatchSummary{
		Head:            chronevent.Header{ProcessID: "p", ThreadID: "t", Timestamp: 1},
		FunctionName:    "f",
		ExecutionsCount: 3,
		TotalDuration:   900,
	}
	a := NewProcessAggregator()
	if err := a.Consume(SliceSource([]chronevent.Event{summary})); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	r, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	got, ok := r.Summaries.Get(Key{FunctionName: "f"})
	if !ok || len(got) != 1 || got[0] != summary {
		t.Fatalf("Summaries for key f = %v, ok=%v, want [%+v]", got, ok, summary)
	}
}

func TestMerge_ConcatenatesAcrossProcesses(t *testing.T) {
	a := NewProcessAggregator()
	if err := a.Consume(SliceSource([]chronevent.Event{start("t", 0, "f", nil), stop("t", 100)})); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	ra, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	b := NewProcessAggregator()
	if err := b.Consume(SliceSource([]chronevent.Event{start("t", 0, "f", nil), stop("t", 50)})); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	rb, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	merged := Merge(ra, rb)
	got, ok := merged.Durations.Get(Key{FunctionName: "f"})
	if !ok {
		t.Fatalf("missing merged key f")
	}
	want := []int64{100, 50}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("merged durations = %v, want %v", got, want)
	}
}
