package processor

import "testing"

func TestSelectPeak(t *testing.T) {
	tests := []struct {
		name       string
		peak1      float32
		peak2      float32
		threshold  float32
		wantPeak   float32
		wantSource PeakSource
	}{
		{"clipped primary falls back to secondary", 1.0, 0.7, 0.99, 0.7, PeakSecondary},
		{"unclipped primary wins", 0.5, 0.4, 0.99, 0.5, PeakPrimary},
		{"clipped primary, no secondary uses primary", 1.0, 0, 0.99, 1.0, PeakPrimary},
		{"both zero is fallback", 0, 0, 0.99, 0, PeakFallback},
		{"exactly at threshold counts as clipped", 0.99, 0.5, 0.99, 0.5, PeakSecondary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := SelectPeak(tt.peak1, tt.peak2, tt.threshold)
			if got != tt.wantPeak || source != tt.wantSource {
				t.Fatalf("SelectPeak(%v,%v,%v) = (%v,%v), want (%v,%v)",
					tt.peak1, tt.peak2, tt.threshold, got, source, tt.wantPeak, tt.wantSource)
			}
		})
	}
}
