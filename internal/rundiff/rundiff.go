// Package rundiff compares the function summaries of two chrones runs
// and highlights regressions and improvements, the way a developer
// checks whether a change sped up or slowed down an instrumented
// function.
package rundiff

import (
	"fmt"
	"math"
	"strings"

	"github.com/jacquev6/chrones/internal/summary"
)

// significanceThresholdPct and its tiers mirror the teacher's diff
// package: changes under 5% are noise, 5-20% low, 20-50% medium, 50%+
// high.
const significanceThresholdPct = 5.0

// Report is the comparison between two runs' function summaries.
type Report struct {
	Changes      []Change `json:"changes"`
	Regressions  int      `json:"regressions"`
	Improvements int      `json:"improvements"`
}

// Change is one (function, label) metric's delta between two runs.
type Change struct {
	FunctionName string  `json:"function_name"`
	Label        *string `json:"label,omitempty"`
	Metric       string  `json:"metric"`
	OldValue     float64 `json:"old_value"`
	NewValue     float64 `json:"new_value"`
	DeltaPct     float64 `json:"delta_pct"`
	Direction    string  `json:"direction"` // "regression" or "improvement"
	Significance string  `json:"significance"`
}

type key struct {
	functionName string
	label        string
	hasLabel     bool
}

func keyOf(s summary.Summary) key {
	if s.Label == nil {
		return key{functionName: s.FunctionName}
	}
	return key{functionName: s.FunctionName, label: *s.Label, hasLabel: true}
}

// Compare matches baseline and current summaries by (function, label)
// and reports the delta in total duration and, where both sides have
// one, average duration. A key present in only one side is skipped: it
// is a new or removed function, not a regression or improvement.
func Compare(baseline, current []summary.Summary) Report {
	byKey := make(map[key]summary.Summary, len(baseline))
	for _, s := range baseline {
		byKey[keyOf(s)] = s
	}

	var report Report
	for _, cur := range current {
		old, ok := byKey[keyOf(cur)]
		if !ok {
			continue
		}

		addChange(&report, cur, "total_ms", summary.MillisFromNanos(old.TotalDuration), summary.MillisFromNanos(cur.TotalDuration), true)
		if old.AverageDuration != nil && cur.AverageDuration != nil {
			addChange(&report, cur, "average_ms",
				summary.MillisFromNanos(int64(*old.AverageDuration)),
				summary.MillisFromNanos(int64(*cur.AverageDuration)),
				true)
		}
	}

	for _, c := range report.Changes {
		switch c.Direction {
		case "regression":
			report.Regressions++
		case "improvement":
			report.Improvements++
		}
	}
	return report
}

// addChange is silent about a metric whose relative change is under
// significanceThresholdPct: noise, not signal.
func addChange(report *Report, cur summary.Summary, metric string, oldVal, newVal float64, higherIsWorse bool) {
	deltaPct := 0.0
	if oldVal != 0 {
		deltaPct = (newVal - oldVal) / math.Abs(oldVal) * 100
	} else if newVal != 0 {
		deltaPct = 100
	}
	if math.Abs(deltaPct) < significanceThresholdPct {
		return
	}

	worse := deltaPct > 0
	if !higherIsWorse {
		worse = !worse
	}
	direction := "improvement"
	if worse {
		direction = "regression"
	}

	significance := "low"
	if abs := math.Abs(deltaPct); abs >= 50 {
		significance = "high"
	} else if abs >= 20 {
		significance = "medium"
	}

	report.Changes = append(report.Changes, Change{
		FunctionName: cur.FunctionName,
		Label:        cur.Label,
		Metric:       metric,
		OldValue:     oldVal,
		NewValue:     newVal,
		DeltaPct:     deltaPct,
		Direction:    direction,
		Significance: significance,
	})
}

// Format renders r as the human-readable summary the `diff` CLI
// subcommand prints by default.
func Format(r Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Regressions: %d, Improvements: %d\n\n", r.Regressions, r.Improvements)

	if r.Regressions > 0 {
		sb.WriteString("Regressions:\n")
		for _, c := range r.Changes {
			if c.Direction == "regression" {
				writeChange(&sb, c)
			}
		}
		sb.WriteString("\n")
	}

	if r.Improvements > 0 {
		sb.WriteString("Improvements:\n")
		for _, c := range r.Changes {
			if c.Direction == "improvement" {
				writeChange(&sb, c)
			}
		}
	}

	return sb.String()
}

func writeChange(sb *strings.Builder, c Change) {
	label := ""
	if c.Label != nil {
		label = "/" + *c.Label
	}
	fmt.Fprintf(sb, "  [%s] %s%s %s: %.2f -> %.2f (%+.1f%%)\n",
		strings.ToUpper(c.Significance), c.FunctionName, label, c.Metric, c.OldValue, c.NewValue, c.DeltaPct)
}
