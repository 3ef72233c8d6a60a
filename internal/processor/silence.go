package processor

import "math"

// SilenceFilterConfig holds SilenceFilter's tunables.
type SilenceFilterConfig struct {
	ThresholdDB float64 // default -70
}

// DefaultSilenceFilterConfig returns the --filter-silence CLI default.
func DefaultSilenceFilterConfig() SilenceFilterConfig {
	return SilenceFilterConfig{ThresholdDB: -70}
}

// SilenceFilter flags windows whose RMS falls below a fixed floor so
// DrCalculator.Compute excludes them from top-20% candidacy. Unlike
// EdgeTrimmer it never removes a window from windowRMS's indexing —
// a flagged window still occupies its slot, it is just ineligible for
// selection.
type SilenceFilter struct {
	linearFloor float64
}

// NewSilenceFilter builds a filter from cfg.
func NewSilenceFilter(cfg SilenceFilterConfig) *SilenceFilter {
	return &SilenceFilter{linearFloor: math.Pow(10, cfg.ThresholdDB/20.0)}
}

// Mark returns a per-window exclusion bitmap for windowRMS, suitable for
// DrCalculator.Compute's excluded argument.
func (f *SilenceFilter) Mark(windowRMS []float64) []bool {
	excluded := make([]bool, len(windowRMS))
	for i, rms := range windowRMS {
		excluded[i] = rms < f.linearFloor
	}
	return excluded
}
