package processor

import "testing"

func TestSilenceFilterMarksBelowFloor(t *testing.T) {
	f := NewSilenceFilter(SilenceFilterConfig{ThresholdDB: -80})
	// 10^(-80/20) ~= 1e-4
	windowRMS := []float64{1e-5, 0.5, 1e-3, 0.0001}
	excluded := f.Mark(windowRMS)

	want := []bool{true, false, false, false}
	for i := range want {
		if excluded[i] != want[i] {
			t.Fatalf("excluded[%d] = %v, want %v (rms=%v)", i, excluded[i], want[i], windowRMS[i])
		}
	}
}

func TestSilenceFilterDoesNotShrinkIndex(t *testing.T) {
	f := NewSilenceFilter(DefaultSilenceFilterConfig())
	windowRMS := []float64{0, 0, 0, 0.2}
	excluded := f.Mark(windowRMS)
	if len(excluded) != len(windowRMS) {
		t.Fatalf("len(excluded) = %d, want %d (silence filter must not drop indices)", len(excluded), len(windowRMS))
	}
}
