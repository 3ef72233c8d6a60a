package processor

// topKLargest returns the k largest values of xs, in no particular
// order, using an O(n) average-case partial selection (quickselect)
// rather than a full O(n log n) sort, since this runs once per channel
// over every window of the track and a full sort would grow faster with
// track length. xs is
// not mutated; a working copy is partitioned
// in place instead.
//
// k is clamped to [0, len(xs)].
func topKLargest(xs []float64, k int) []float64 {
	if k <= 0 || len(xs) == 0 {
		return nil
	}
	if k >= len(xs) {
		out := make([]float64, len(xs))
		copy(out, xs)
		return out
	}

	work := make([]float64, len(xs))
	copy(work, xs)

	// The k largest values are exactly those at or past index n-k once
	// the slice is partitioned in ascending order; quickselect finds
	// that split point without fully sorting either side.
	target := len(work) - k
	quickselect(work, 0, len(work)-1, target)

	return work[target:]
}

// quickselect partitions work[lo:hi+1] in place so that work[target]
// holds the value that would occupy that index in sorted order, with
// every smaller-or-equal value to its left and every larger-or-equal
// value to its right (Hoare-style selection, ascending).
func quickselect(work []float64, lo, hi, target int) {
	for lo < hi {
		pivotIdx := partition(work, lo, hi)
		switch {
		case pivotIdx == target:
			return
		case target < pivotIdx:
			hi = pivotIdx - 1
		default:
			lo = pivotIdx + 1
		}
	}
}

// partition uses the Lomuto scheme with a median-of-three pivot choice
// to avoid worst-case quadratic behavior on already-sorted input (window
// RMS sequences are frequently monotonic near fades).
func partition(work []float64, lo, hi int) int {
	mid := lo + (hi-lo)/2
	medianOfThree(work, lo, mid, hi)
	work[mid], work[hi] = work[hi], work[mid]

	pivot := work[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if work[j] < pivot {
			work[i], work[j] = work[j], work[i]
			i++
		}
	}
	work[i], work[hi] = work[hi], work[i]
	return i
}

func medianOfThree(work []float64, lo, mid, hi int) {
	if work[mid] < work[lo] {
		work[mid], work[lo] = work[lo], work[mid]
	}
	if work[hi] < work[lo] {
		work[hi], work[lo] = work[lo], work[hi]
	}
	if work[hi] < work[mid] {
		work[hi], work[mid] = work[mid], work[hi]
	}
}
