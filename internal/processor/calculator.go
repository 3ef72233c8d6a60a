package processor

import "math"

// silentRMSFloor is the "all entries are effectively zero" threshold
// below which a channel is reported silent regardless of peak data.
const silentRMSFloor = 1e-12

// DrCalculator turns a channel's window RMS sequence and top-two peaks
// into a ChannelDrResult via top-20% selection and the dual-peak DR
// formula.
type DrCalculator struct {
	ClipThreshold float32
}

// NewDrCalculator returns a calculator using the default clip threshold.
func NewDrCalculator() *DrCalculator {
	return &DrCalculator{ClipThreshold: DefaultClipThreshold}
}

// Compute runs top-20% RMS selection, dual-peak selection, and the DR
// formula for one channel. excluded, if non-nil, must be the same
// length as windowRMS; a true entry marks a window the
// silence filter wants left out of the top-20% candidate set — the entry still contributed to windowRMS's indexing, it is
// just not eligible for selection here.
func (c *DrCalculator) Compute(windowRMS []float64, excluded []bool, peak1, peak2 float32) ChannelDrResult {
	candidates := candidateRMS(windowRMS, excluded)

	if len(candidates) == 0 || allBelowFloor(candidates) {
		return ChannelDrResult{Silent: true, DrValueDB: math.NaN()}
	}

	k := topKCount(len(candidates))
	top := topKLargest(candidates, k)

	rms20 := math.Sqrt(meanOfSquares(top))

	clipThreshold := c.ClipThreshold
	if clipThreshold == 0 {
		clipThreshold = DefaultClipThreshold
	}
	peakSel, _ := SelectPeak(peak1, peak2, clipThreshold)

	if peakSel == 0 || rms20 == 0 {
		return ChannelDrResult{Silent: true, DrValueDB: math.NaN(), PrimaryPeak: peak1, SecondaryPeak: peak2}
	}

	dr := -20.0 * math.Log10(rms20/float64(peakSel))

	clamped := dr
	if clamped < 0 {
		clamped = 0
	} else if clamped > 60 {
		clamped = 60
	}

	return ChannelDrResult{
		DrValueDB:      dr,
		DrValueRounded: RoundHalfAwayFromZero(clamped),
		RmsLinear:      rms20,
		PeakLinear:     peakSel,
		PrimaryPeak:    peak1,
		SecondaryPeak:  peak2,
	}
}

// candidateRMS returns the subset of windowRMS not flagged excluded.
func candidateRMS(windowRMS []float64, excluded []bool) []float64 {
	if excluded == nil {
		return windowRMS
	}
	out := make([]float64, 0, len(windowRMS))
	for i, v := range windowRMS {
		if i < len(excluded) && excluded[i] {
			continue
		}
		out = append(out, v)
	}
	return out
}

func allBelowFloor(xs []float64) bool {
	for _, v := range xs {
		if v > silentRMSFloor {
			return false
		}
	}
	return true
}

// topKCount computes ceil(0.2*n), never fewer than 1 when at least one
// candidate window exists.
func topKCount(n int) int {
	k := int(math.Ceil(0.2 * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// meanOfSquares computes mean(x*x for x in xs) — the values in xs are
// themselves already RMS, so this is the root-mean-square-of-RMS step.
func meanOfSquares(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x * x
	}
	return sum / float64(len(xs))
}
