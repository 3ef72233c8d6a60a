package processor

import "testing"

func silentFrames(n, channels int) []float32 {
	return make([]float32, n*channels)
}

func loudFrames(n, channels int, amp float32) []float32 {
	out := make([]float32, n*channels)
	for i := range out {
		out[i] = amp
	}
	return out
}

func TestEdgeTrimmerKeepsShortLeadingSilence(t *testing.T) {
	cfg := EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 10, HysteresisMs: 5}
	tr := NewEdgeTrimmer(cfg, 1000, 1) // 1kHz, mono: minRunFrames=10, hysteresisFrames=5

	// 5 frames of silence (below minRunFrames) then loud signal: must be kept.
	emitted := tr.Process(silentFrames(5, 1))
	emitted = append(emitted, tr.Process(loudFrames(1, 1, 1.0))...)
	emitted = append(emitted, tr.Flush()...)

	if len(emitted) != 6 {
		t.Fatalf("got %d samples, want 6 (short leading silence must not be trimmed)", len(emitted))
	}
}

func TestEdgeTrimmerDropsLongLeadingSilence(t *testing.T) {
	cfg := EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 10, HysteresisMs: 5}
	tr := NewEdgeTrimmer(cfg, 1000, 1)

	tr.Process(silentFrames(20, 1)) // 20 >= minRunFrames(10): must be trimmed
	emitted := tr.Process(loudFrames(10, 1, 1.0))
	emitted = append(emitted, tr.Flush()...)

	if len(emitted) != 10 {
		t.Fatalf("got %d samples, want 10 (sustained leading silence must be trimmed)", len(emitted))
	}
	if tr.LeadingTrim != 20 {
		t.Fatalf("LeadingTrim = %d, want 20", tr.LeadingTrim)
	}
}

func TestEdgeTrimmerNeverTouchesMidTrackSilence(t *testing.T) {
	cfg := EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 10, HysteresisMs: 5}
	tr := NewEdgeTrimmer(cfg, 1000, 1)

	var emitted []float32
	emitted = append(emitted, tr.Process(loudFrames(10, 1, 1.0))...)       // establish Passing
	emitted = append(emitted, tr.Process(silentFrames(100, 1))...)         // long mid-track silence
	emitted = append(emitted, tr.Process(loudFrames(10, 1, 1.0))...)       // signal resumes: hysteresis releases candidate
	emitted = append(emitted, tr.Flush()...)

	if len(emitted) != 120 {
		t.Fatalf("got %d samples, want 120 (mid-track silence must never be dropped)", len(emitted))
	}
}

func TestEdgeTrimmerDropsTrailingSilenceSuffixOnly(t *testing.T) {
	cfg := EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 10, HysteresisMs: 5}
	tr := NewEdgeTrimmer(cfg, 1000, 1)

	var emitted []float32
	emitted = append(emitted, tr.Process(loudFrames(10, 1, 1.0))...)
	emitted = append(emitted, tr.Process(silentFrames(30, 1))...) // never resolved: runs to EOF
	emitted = append(emitted, tr.Flush()...)

	if len(emitted) != 10 {
		t.Fatalf("got %d samples, want 10 (trailing silence must be trimmed)", len(emitted))
	}
	if tr.TrailingTrim != 30 {
		t.Fatalf("TrailingTrim = %d, want 30", tr.TrailingTrim)
	}
}

func TestEdgeTrimmerShortTrailingSilencePreserved(t *testing.T) {
	cfg := EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 10, HysteresisMs: 5}
	tr := NewEdgeTrimmer(cfg, 1000, 1)

	var emitted []float32
	emitted = append(emitted, tr.Process(loudFrames(10, 1, 1.0))...)
	emitted = append(emitted, tr.Process(silentFrames(3, 1))...) // below minRunFrames at EOF
	emitted = append(emitted, tr.Flush()...)

	if len(emitted) != 13 {
		t.Fatalf("got %d samples, want 13 (short trailing silence must be preserved)", len(emitted))
	}
	if tr.TrailingTrim != 0 {
		t.Fatalf("TrailingTrim = %d, want 0", tr.TrailingTrim)
	}
}
