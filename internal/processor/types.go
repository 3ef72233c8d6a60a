// Package processor implements the dynamic-range measurement engine:
// per-channel windowed RMS/peak tracking, top-20% RMS selection, the
// dual-peak DR formula, and Official/Precise aggregation across a
// track's channels.
package processor

import "math"

// WindowSamples returns the number of samples per channel in one
// 3-second analysis window for the given sample rate.
func WindowSamples(sampleRateHz uint32) uint64 {
	return uint64(math.Round(float64(sampleRateHz) * 3.0))
}

// ChannelDrResult is the final per-channel record produced by
// DrCalculator.Compute.
type ChannelDrResult struct {
	DrValueDB      float64
	DrValueRounded int32
	RmsLinear      float64
	PeakLinear     float32
	PrimaryPeak    float32
	SecondaryPeak  float32
	SampleCount    uint64
	Silent         bool
}

// AggregateResult is the track-level summary produced by Aggregate.
type AggregateResult struct {
	OfficialDR       *int32
	PreciseDR        *float64
	IncludedChannels uint16
	ExcludedSilent   uint16
	ExcludedLFE      uint16
	BoundaryRisk     *BoundaryWarning
}

// BoundaryLevel ranks how close Precise DR sits to a half-integer
// rounding boundary.
type BoundaryLevel int

const (
	BoundaryNone BoundaryLevel = iota
	BoundaryLow
	BoundaryMedium
	BoundaryHigh
)

func (l BoundaryLevel) String() string {
	switch l {
	case BoundaryHigh:
		return "High"
	case BoundaryMedium:
		return "Medium"
	case BoundaryLow:
		return "Low"
	default:
		return "None"
	}
}

// BoundaryDirection says which side of the boundary Precise DR sits on.
type BoundaryDirection int

const (
	DirectionLower BoundaryDirection = iota
	DirectionUpper
)

func (d BoundaryDirection) String() string {
	if d == DirectionUpper {
		return "Upper"
	}
	return "Lower"
}

// BoundaryWarning flags that rounding to Official DR may disagree with
// a reference implementation by one step.
type BoundaryWarning struct {
	Level      BoundaryLevel
	Direction  BoundaryDirection
	DistanceDB float64
}

// RoundHalfAwayFromZero rounds x to the nearest integer, rounding .5
// away from zero rather than to even — this is the rounding rule
// observed in the reference DR meter and MUST be used for both
// per-channel and aggregate Official DR.
func RoundHalfAwayFromZero(x float64) int32 {
	if x >= 0 {
		return int32(math.Floor(x + 0.5))
	}
	return int32(math.Ceil(x - 0.5))
}
