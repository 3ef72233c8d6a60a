package processor

import (
	"math"
	"testing"
)

func TestDrCalculatorConstantWindows(t *testing.T) {
	c := NewDrCalculator()
	windowRMS := make([]float64, 10)
	for i := range windowRMS {
		windowRMS[i] = 0.1
	}
	result := c.Compute(windowRMS, nil, 0.5, 0.3)

	if result.Silent {
		t.Fatalf("expected non-silent result")
	}
	want := -20 * math.Log10(0.1/0.5)
	if math.Abs(result.DrValueDB-want) > 1e-9 {
		t.Fatalf("DrValueDB = %v, want %v", result.DrValueDB, want)
	}
}

func TestDrCalculatorAllSilentWindows(t *testing.T) {
	c := NewDrCalculator()
	windowRMS := []float64{0, 0, 1e-15}
	result := c.Compute(windowRMS, nil, 0.1, 0.05)

	if !result.Silent {
		t.Fatalf("expected silent result")
	}
	if !math.IsNaN(result.DrValueDB) {
		t.Fatalf("DrValueDB = %v, want NaN", result.DrValueDB)
	}
}

func TestDrCalculatorExcludedWindowsSkipped(t *testing.T) {
	c := NewDrCalculator()
	windowRMS := []float64{0.1, 0.1, 0.9, 0.1}
	excluded := []bool{false, false, true, false}
	result := c.Compute(windowRMS, excluded, 0.5, 0.4)

	// With the 0.9 outlier excluded, all remaining candidates are 0.1,
	// so the DR result must be identical to three uniform 0.1 windows.
	uniform := c.Compute([]float64{0.1, 0.1, 0.1}, nil, 0.5, 0.4)
	if math.Abs(result.DrValueDB-uniform.DrValueDB) > 1e-9 {
		t.Fatalf("DrValueDB = %v, want %v (excluded outlier must not affect result)", result.DrValueDB, uniform.DrValueDB)
	}
}

func TestDrCalculatorUsesSecondaryPeakWhenClipped(t *testing.T) {
	c := &DrCalculator{ClipThreshold: 0.99}
	windowRMS := []float64{0.1, 0.1, 0.1}

	clipped := c.Compute(windowRMS, nil, 1.0, 0.5)
	unclipped := c.Compute(windowRMS, nil, 0.5, 0.3)

	wantClipped := -20 * math.Log10(0.1/0.5)
	wantUnclipped := -20 * math.Log10(0.1/0.5)
	if math.Abs(clipped.DrValueDB-wantClipped) > 1e-9 {
		t.Fatalf("clipped DrValueDB = %v, want %v", clipped.DrValueDB, wantClipped)
	}
	if math.Abs(unclipped.DrValueDB-wantUnclipped) > 1e-9 {
		t.Fatalf("unclipped DrValueDB = %v, want %v", unclipped.DrValueDB, wantUnclipped)
	}
}

func TestTopKCount(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1, 1}, {5, 1}, {10, 2}, {11, 3}, {100, 20}, {0, 0},
	}
	for _, tt := range tests {
		if got := topKCount(tt.n); got != tt.want {
			t.Fatalf("topKCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
