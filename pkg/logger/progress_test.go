package logger

import "testing"

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker()

	var got []int
	pt.AddCallback(func(percent int, stage string) {
		got = append(got, percent)
	})
	pt.AddCallback(nil) // ignored

	pt.Update(5, "Reading input file")
	pt.Update(150, "overshoot")
	pt.Update(-10, "undershoot")

	if len(got) != 3 {
		t.Fatalf("callback fired %d times, want 3", len(got))
	}
	if got[0] != 5 || got[1] != 100 || got[2] != 0 {
		t.Errorf("percent sequence = %v, want clamped [5 100 0]", got)
	}

	percent, stage := pt.Current()
	if percent != 0 || stage != "undershoot" {
		t.Errorf("Current = %d %q", percent, stage)
	}
}
