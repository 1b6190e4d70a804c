// Package summary synthesizes final per-(function,label) statistics from
// the per-process (durations, summaries) views internal/stopwatch
// produces, across as many processes as the caller feeds in.
package summary

import (
	"math"
	"sort"

	"github.com/jacquev6/chrones/internal/chronevent"
	"github.com/jacquev6/chrones/internal/stopwatch"
)

// Summary is one final, reportable statistic for a (function_name, label)
// key. Every field between ExecutionsCount and TotalDuration is optional: nil means "unknown",
// not zero, distinguishing e.g. a single raw duration (no stddev, no
// median) from a degenerate zero-spread sample.
type Summary struct {
	FunctionName              string
	Label                     *string
	ExecutionsCount           int64
	AverageDuration           *float64
	DurationStandardDeviation *float64
	MinDuration               *int64
	MedianDuration            *float64
	MaxDuration               *int64
	TotalDuration             int64
}

// Synthesize folds a multi-process stopwatch.Result into the final list of
// Summary records: one record per pre-aggregated-summary key (verbatim if
// alone, merged by the weighted-average rule if several), and one record
// per raw-duration key (full statistics if more than one sample, a bare
// total otherwise), sorted by (executions_count ascending, total_duration
// descending). Per the flagged open question, a key present in both the
// summaries and durations views of r yields two separate records; they are
// never merged with each other.
func Synthesize(r stopwatch.Result) []Summary {
	var out []Summary

	for pair := r.Summaries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, mergeSummaries(pair.Value))
	}
	for pair := r.Durations.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, statsOf(pair.Key, pair.Value))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExecutionsCount != out[j].ExecutionsCount {
			return out[i].ExecutionsCount < out[j].ExecutionsCount
		}
		return out[i].TotalDuration > out[j].TotalDuration
	})
	return out
}

func mergeSummaries(summaries []chronevent.StopwatchSummary) Summary {
	if len(summaries) == 1 {
		s := summaries[0]
		return Summary{
			FunctionName:              s.FunctionName,
			Label:                     s.Label,
			ExecutionsCount:           s.ExecutionsCount,
			AverageDuration:           f64p(float64(s.AverageDuration)),
			DurationStandardDeviation: f64p(float64(s.DurationStandardDeviation)),
			MinDuration:               i64p(s.MinDuration),
			MedianDuration:            f64p(float64(s.MedianDuration)),
			MaxDuration:               i64p(s.MaxDuration),
			TotalDuration:             s.TotalDuration,
		}
	}

	var executionsCount, totalDuration, weightedAverage int64
	minDuration := summaries[0].MinDuration
	maxDuration := summaries[0].MaxDuration
	for _, s := range summaries {
		executionsCount += s.ExecutionsCount
		totalDuration += s.TotalDuration
		weightedAverage += s.ExecutionsCount * s.AverageDuration
		if s.MinDuration < minDuration {
			minDuration = s.MinDuration
		}
		if s.MaxDuration > maxDuration {
			maxDuration = s.MaxDuration
		}
	}
	return Summary{
		FunctionName:    summaries[0].FunctionName,
		Label:           summaries[0].Label,
		ExecutionsCount: executionsCount,
		AverageDuration: f64p(float64(weightedAverage) / float64(executionsCount)),
		MinDuration:     i64p(minDuration),
		MaxDuration:     i64p(maxDuration),
		TotalDuration:   totalDuration,
	}
}

func statsOf(key stopwatch.Key, durations []int64) Summary {
	base := Summary{
		FunctionName: key.FunctionName,
		Label:        key.LabelPtr(),
	}

	if len(durations) == 1 {
		base.ExecutionsCount = 1
		base.TotalDuration = durations[0]
		return base
	}

	var total int64
	min := durations[0]
	max := durations[0]
	for _, d := range durations {
		total += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	n := float64(len(durations))
	mean := float64(total) / n

	var sumSquaredDeviation float64
	for _, d := range durations {
		dev := float64(d) - mean
		sumSquaredDeviation += dev * dev
	}
	stdev := math.Sqrt(sumSquaredDeviation / (n - 1))

	base.ExecutionsCount = int64(len(durations))
	base.AverageDuration = f64p(mean)
	base.DurationStandardDeviation = f64p(stdev)
	base.MinDuration = i64p(min)
	base.MedianDuration = f64p(median(durations))
	base.MaxDuration = i64p(max)
	base.TotalDuration = total
	return base
}

// median computes the sample median by linear interpolation of the two
// middle elements when n is even, without mutating durations.
func median(durations []int64) float64 {
	sorted := append([]int64(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

func f64p(v float64) *float64 { return &v }
func i64p(v int64) *int64     { return &v }

// MillisFromNanos renders a nanosecond duration as milliseconds, rounded
// toward zero at 10 microsecond granularity: ms = trunc(ns/10_000)/100.
// Summary itself keeps every duration in nanoseconds; this conversion is
// applied only where a Summary is about to be displayed or compared for
// display (CLI table, MCP tool output, rundiff report), never when
// synthesizing or merging.
func MillisFromNanos(ns int64) float64 {
	return float64(ns/10_000) / 100
}
