package processor

import "math"

// EdgeTrimmerConfig holds EdgeTrimmer's tunables.
type EdgeTrimmerConfig struct {
	ThresholdDB  float64 // default -60
	MinRunMs     int     // default 60
	HysteresisMs int     // default 100
}

// DefaultEdgeTrimmerConfig returns EdgeTrimmer's documented defaults.
func DefaultEdgeTrimmerConfig() EdgeTrimmerConfig {
	return EdgeTrimmerConfig{ThresholdDB: -60, MinRunMs: 60, HysteresisMs: 100}
}

type trimState int

const (
	trimLeading trimState = iota
	trimPassing
)

// EdgeTrimmer strips leading and trailing silence runs at frame
// (per-sample-across-channels) granularity, without ever touching
// mid-track silence. It operates on interleaved PCM: one
// "frame" is channelCount consecutive samples, and a frame's amplitude
// is the max |sample| across its channels.
//
// Leading trim is decided on the first frame at/above threshold; until
// then every below-threshold frame of the leading run is buffered, so
// that buffer grows with the length of the leading run. Trailing trim cannot
// be decided until either sustained signal returns (the candidate tail
// is released intact) or EOF is reached (the candidate tail is
// re-examined and only its trailing below-threshold suffix is dropped),
// so the candidate buffer grows for the duration of an undecided tail —
// exactly as long as the quiet run it may end up trimming.
type EdgeTrimmer struct {
	cfg          EdgeTrimmerConfig
	channelCount int
	linearThresh float32

	minRunFrames     int
	hysteresisFrames int

	state trimState

	// Leading-phase bookkeeping.
	leadingFrames [][]float32 // absorbed frames, not yet classified

	// Passing-phase candidate tail.
	candidate    [][]float32
	aboveRun     int
	LeadingTrim  uint64
	TrailingTrim uint64
}

// NewEdgeTrimmer builds a trimmer for a stream at sampleRate Hz with
// channelCount channels.
func NewEdgeTrimmer(cfg EdgeTrimmerConfig, sampleRate uint32, channelCount int) *EdgeTrimmer {
	return &EdgeTrimmer{
		cfg:              cfg,
		channelCount:     channelCount,
		linearThresh:     float32(math.Pow(10, cfg.ThresholdDB/20.0)),
		minRunFrames:     msToFrames(cfg.MinRunMs, sampleRate),
		hysteresisFrames: msToFrames(cfg.HysteresisMs, sampleRate),
		state:            trimLeading,
	}
}

func msToFrames(ms int, sampleRate uint32) int {
	n := int(math.Round(float64(ms) / 1000.0 * float64(sampleRate)))
	if n < 1 {
		n = 1
	}
	return n
}

// Process accepts one interleaved chunk and returns the interleaved
// samples that should be forwarded to the window buffer right now (may
// be shorter than the input, or empty while still absorbing candidate
// frames).
func (t *EdgeTrimmer) Process(interleaved []float32) []float32 {
	frames := splitFrames(interleaved, t.channelCount)

	var out [][]float32
	for _, f := range frames {
		out = append(out, t.processFrame(f)...)
	}
	return joinFrames(out)
}

func (t *EdgeTrimmer) processFrame(frame []float32) [][]float32 {
	amp := frameAmplitude(frame)
	above := amp >= t.linearThresh

	switch t.state {
	case trimLeading:
		if !above {
			t.leadingFrames = append(t.leadingFrames, frame)
			return nil
		}
		// First frame at/above threshold: decide the leading run's fate.
		var emitted [][]float32
		if len(t.leadingFrames) >= t.minRunFrames {
			t.LeadingTrim += uint64(len(t.leadingFrames))
		} else {
			emitted = append(emitted, t.leadingFrames...)
		}
		t.leadingFrames = nil
		t.state = trimPassing
		t.aboveRun = 1
		t.candidate = append(t.candidate, frame)
		if t.aboveRun >= t.hysteresisFrames {
			emitted = append(emitted, t.candidate...)
			t.candidate = nil
			t.aboveRun = 0
		}
		return emitted

	default: // trimPassing
		t.candidate = append(t.candidate, frame)
		if above {
			t.aboveRun++
			if t.aboveRun >= t.hysteresisFrames {
				emitted := t.candidate
				t.candidate = nil
				t.aboveRun = 0
				return emitted
			}
			return nil
		}
		t.aboveRun = 0
		return nil
	}
}

// Flush is called at EOF. A stream that never reached threshold is
// dropped whole and counted as leading trim. Otherwise it trims only the
// contiguous below-threshold suffix of the passing-phase candidate tail,
// and only when that suffix is at least minRunFrames long.
func (t *EdgeTrimmer) Flush() []float32 {
	var out [][]float32

	if t.state == trimLeading {
		// EOF while still in leading silence: nothing ever crossed
		// threshold, so there is no signal to preserve either way.
		t.LeadingTrim += uint64(len(t.leadingFrames))
		t.leadingFrames = nil
		return nil
	}

	// Find the longest contiguous below-threshold suffix of candidate.
	suffixLen := 0
	for i := len(t.candidate) - 1; i >= 0; i-- {
		if frameAmplitude(t.candidate[i]) >= t.linearThresh {
			break
		}
		suffixLen++
	}

	if suffixLen >= t.minRunFrames {
		t.TrailingTrim += uint64(suffixLen)
		out = t.candidate[:len(t.candidate)-suffixLen]
	} else {
		out = t.candidate
	}
	t.candidate = nil

	return joinFrames(out)
}

func frameAmplitude(frame []float32) float32 {
	var max float32
	for _, s := range frame {
		a := float32(math.Abs(float64(s)))
		if a > max {
			max = a
		}
	}
	return max
}

func splitFrames(interleaved []float32, channelCount int) [][]float32 {
	n := len(interleaved) / channelCount
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		out[i] = interleaved[i*channelCount : (i+1)*channelCount]
	}
	return out
}

func joinFrames(frames [][]float32) []float32 {
	if len(frames) == 0 {
		return nil
	}
	out := make([]float32, 0, len(frames)*len(frames[0]))
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
