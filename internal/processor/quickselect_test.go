package processor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"pgregory.net/rapid"
)

func TestTopKLargestMatchesSort(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		k    int
	}{
		{"empty", nil, 3},
		{"k zero", []float64{1, 2, 3}, 0},
		{"k exceeds len", []float64{5, 1, 3}, 10},
		{"single", []float64{42}, 1},
		{"duplicates", []float64{3, 3, 3, 1, 1}, 2},
		{"descending input", []float64{9, 8, 7, 6, 5, 4, 3, 2, 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topKLargest(tt.xs, tt.k)
			want := wantTopK(tt.xs, tt.k)
			assertSameMultiset(t, got, want)
		})
	}
}

func TestTopKLargestDoesNotMutateInput(t *testing.T) {
	xs := []float64{5, 3, 8, 1, 9, 2}
	orig := append([]float64(nil), xs...)
	topKLargest(xs, 3)
	for i := range xs {
		if xs[i] != orig[i] {
			t.Fatalf("input mutated at index %d: got %v want %v", i, xs, orig)
		}
	}
}

func TestTopKLargestProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(t, "n")
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = rapid.Float64Range(-1000, 1000).Draw(t, "x")
		}
		k := rapid.IntRange(0, n+5).Draw(t, "k")

		got := topKLargest(xs, k)
		want := wantTopK(xs, k)
		assertSameMultiset(t, got, want)
	})
}

func wantTopK(xs []float64, k int) []float64 {
	if k <= 0 || len(xs) == 0 {
		return nil
	}
	if k > len(xs) {
		k = len(xs)
	}
	sorted := append([]float64(nil), xs...)
	floats.Sort(sorted)
	reverse(sorted)
	return sorted[:k]
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func assertSameMultiset(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d (got=%v want=%v)", len(got), len(want), got, want)
	}
	a := append([]float64(nil), got...)
	b := append([]float64(nil), want...)
	floats.Sort(a)
	floats.Sort(b)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("multiset mismatch at %d: got %v want %v", i, a, b)
		}
	}
}
