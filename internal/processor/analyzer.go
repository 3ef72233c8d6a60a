package processor

import (
	"math"

	"github.com/linuxmatters/drtool/internal/convert"
)

// perChannelState is the cumulative, per-channel accumulator. It is
// owned exclusively by one WindowRmsAnalyzer and is consumed exactly
// once by finalize.
type perChannelState struct {
	peak1 float32
	peak2 float32

	windowRMS []float64

	sumSq           float64
	windowPeak      float32
	samplesInWindow uint32

	sampleCount uint64
}

// WindowRmsAnalyzer maintains PerChannelState for a single channel,
// emitting one RMS value per completed 3-second window and tracking the
// channel's top-two distinct peaks.
type WindowRmsAnalyzer struct {
	windowSize uint64
	state      perChannelState
}

// NewWindowRmsAnalyzer allocates an analyzer for one channel. sampleRate
// determines the window length.
func NewWindowRmsAnalyzer(sampleRate uint32) *WindowRmsAnalyzer {
	return &WindowRmsAnalyzer{windowSize: WindowSamples(sampleRate)}
}

// ProcessSamples feeds a run of samples for this channel, in
// presentation order.
func (a *WindowRmsAnalyzer) ProcessSamples(samples []float32) {
	for _, s := range samples {
		a.processOne(s)
	}
}

// ProcessStrided feeds samples read directly from an interleaved buffer
// at stride channelCount starting at offset, avoiding a per-channel
// materialized slice.
func (a *WindowRmsAnalyzer) ProcessStrided(interleaved []float32, channelCount, offset int) {
	view := convert.NewStrided(interleaved, channelCount, offset)
	n := view.Len()
	for i := 0; i < n; i++ {
		a.processOne(view.At(i))
	}
}

func (a *WindowRmsAnalyzer) processOne(s float32) {
	st := &a.state

	amp := float32(math.Abs(float64(s)))
	if amp > st.peak1 {
		st.peak2 = st.peak1
		st.peak1 = amp
	} else if amp > st.peak2 && amp < st.peak1 {
		st.peak2 = amp
	}

	sf := float64(s)
	st.sumSq += sf * sf
	if amp > st.windowPeak {
		st.windowPeak = amp
	}
	st.samplesInWindow++
	st.sampleCount++

	if uint64(st.samplesInWindow) == a.windowSize {
		a.closeWindow(uint64(st.samplesInWindow))
	}
}

// closeWindow applies the sum-doubling convention once
// per closed window — not per-sample — so that repeated partial flushes
// cannot drift the running accumulators.
func (a *WindowRmsAnalyzer) closeWindow(n uint64) {
	st := &a.state
	rms := math.Sqrt(st.sumSq * 2.0 / float64(n))
	if !math.IsNaN(rms) && !math.IsInf(rms, 0) {
		st.windowRMS = append(st.windowRMS, rms)
	}
	st.sumSq = 0
	st.windowPeak = 0
	st.samplesInWindow = 0
}

// Finalize flushes a non-empty tail window (even a single-sample one)
// using the same formula, and returns the accumulated window RMS values
// and the channel's top-two peaks. The analyzer must
// not be used again afterward.
func (a *WindowRmsAnalyzer) Finalize() (windowRMS []float64, peak1, peak2 float32, sampleCount uint64) {
	if a.state.samplesInWindow > 0 {
		a.closeWindow(uint64(a.state.samplesInWindow))
	}
	return a.state.windowRMS, a.state.peak1, a.state.peak2, a.state.sampleCount
}
