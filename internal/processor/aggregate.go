package processor

import "math"

// Aggregate combines per-channel DR results into a track-level
// AggregateResult. lfeIndices/excludeLFE are ignored unless
// excludeLFE is true and lfeIndices is non-empty (i.e. the container
// supplied layout metadata).
func Aggregate(results []ChannelDrResult, lfeIndices []int, excludeLFE bool) AggregateResult {
	lfe := make(map[int]bool, len(lfeIndices))
	for _, idx := range lfeIndices {
		lfe[idx] = true
	}
	applyLFE := excludeLFE && len(lfeIndices) > 0

	var (
		sum              float64
		included         uint16
		excludedSilent   uint16
		excludedLFECount uint16
	)

	for i, r := range results {
		if r.Silent || math.IsNaN(r.DrValueDB) || math.IsInf(r.DrValueDB, 0) {
			excludedSilent++
			continue
		}
		if applyLFE && lfe[i] {
			excludedLFECount++
			continue
		}
		sum += r.DrValueDB
		included++
	}

	result := AggregateResult{
		IncludedChannels: included,
		ExcludedSilent:   excludedSilent,
		ExcludedLFE:      excludedLFECount,
	}

	if included == 0 {
		return result
	}

	precise := sum / float64(included)
	official := RoundHalfAwayFromZero(precise)
	result.PreciseDR = &precise
	result.OfficialDR = &official
	result.BoundaryRisk = boundaryCheck(precise)

	return result
}

// boundaryCheck flags how close precise sits to a half-integer, which is
// where a reference implementation's rounding could disagree by one
// Official DR step.
func boundaryCheck(precise float64) *BoundaryWarning {
	frac := precise - math.Floor(precise)
	d := math.Abs(frac - 0.5)

	var level BoundaryLevel
	switch {
	case d <= 0.05:
		level = BoundaryHigh
	case d <= 0.08:
		level = BoundaryMedium
	case d <= 0.10:
		level = BoundaryLow
	default:
		return nil
	}

	direction := DirectionLower
	if frac > 0.5 {
		direction = DirectionUpper
	}

	return &BoundaryWarning{Level: level, Direction: direction, DistanceDB: d}
}
