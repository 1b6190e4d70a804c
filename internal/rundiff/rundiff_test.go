package rundiff

import (
	"testing"

	"github.com/jacquev6/chrones/internal/summary"
)

func i64p(v int64) *int64 { return &v }
func f64p(v float64) *float64 { return &v }

func TestCompare_FlagsRegressionWhenDurationGrows(t *testing.T) {
	baseline := []summary.Summary{
		{FunctionName: "f", ExecutionsCount: 10, TotalDuration: 1_000_000, AverageDuration: f64p(100_000), MinDuration: i64p(50_000), MaxDuration: i64p(150_000)},
	}
	current := []summary.Summary{
		{FunctionName: "f", ExecutionsCount: 10, TotalDuration: 2_000_000, AverageDuration: f64p(200_000), MinDuration: i64p(50_000), MaxDuration: i64p(150_000)},
	}

	r := Compare(baseline, current)
	if r.Regressions == 0 {
		t.Fatalf("Regressions = 0, want > 0: %+v", r)
	}
	if r.Improvements != 0 {
		t.Errorf("Improvements = %d, want 0", r.Improvements)
	}
}

func TestCompare_FlagsImprovementWhenDurationShrinks(t *testing.T) {
	baseline := []summary.Summary{
		{FunctionName: "f", ExecutionsCount: 10, TotalDuration: 2_000_000, AverageDuration: f64p(200_000)},
	}
	current := []summary.Summary{
		{FunctionName: "f", ExecutionsCount: 10, TotalDuration: 1_000_000, AverageDuration: f64p(100_000)},
	}

	r := Compare(baseline, current)
	if r.Improvements == 0 {
		t.Fatalf("Improvements = 0, want > 0: %+v", r)
	}
	if r.Regressions != 0 {
		t.Errorf("Regressions = %d, want 0", r.Regressions)
	}
}

func TestCompare_IgnoresNegligibleChange(t *testing.T) {
	baseline := []summary.Summary{{FunctionName: "f", TotalDuration: 1_000_000}}
	current := []summary.Summary{{FunctionName: "f", TotalDuration: 1_010_000}}

	r := Compare(baseline, current)
	if len(r.Changes) != 0 {
		t.Errorf("Changes = %+v, want empty (under threshold)", r.Changes)
	}
}

func TestCompare_SkipsKeyOnlyOnOneSide(t *testing.T) {
	baseline := []summary.Summary{{FunctionName: "only_in_baseline", TotalDuration: 1_000_000}}
	current := []summary.Summary{{FunctionName: "only_in_current", TotalDuration: 1_000_000}}

	r := Compare(baseline, current)
	if len(r.Changes) != 0 {
		t.Errorf("Changes = %+v, want empty", r.Changes)
	}
}
