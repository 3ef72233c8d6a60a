package processor

import (
	"math"
	"testing"
)

func TestAggregateExcludesSilentChannels(t *testing.T) {
	results := []ChannelDrResult{
		{DrValueDB: 10, Silent: false},
		{Silent: true, DrValueDB: math.NaN()},
		{DrValueDB: 20, Silent: false},
	}
	agg := Aggregate(results, nil, true)

	if agg.IncludedChannels != 2 {
		t.Fatalf("IncludedChannels = %d, want 2", agg.IncludedChannels)
	}
	if agg.ExcludedSilent != 1 {
		t.Fatalf("ExcludedSilent = %d, want 1", agg.ExcludedSilent)
	}
	if agg.PreciseDR == nil || math.Abs(*agg.PreciseDR-15.0) > 1e-9 {
		t.Fatalf("PreciseDR = %v, want 15.0", agg.PreciseDR)
	}
	if agg.OfficialDR == nil || *agg.OfficialDR != 15 {
		t.Fatalf("OfficialDR = %v, want 15", agg.OfficialDR)
	}
}

func TestAggregateExcludesLFEOnlyWhenRequested(t *testing.T) {
	results := []ChannelDrResult{
		{DrValueDB: 10},
		{DrValueDB: 100}, // LFE channel, should be excluded from mean
	}

	withExclusion := Aggregate(results, []int{1}, true)
	if withExclusion.ExcludedLFE != 1 {
		t.Fatalf("ExcludedLFE = %d, want 1", withExclusion.ExcludedLFE)
	}
	if withExclusion.PreciseDR == nil || math.Abs(*withExclusion.PreciseDR-10.0) > 1e-9 {
		t.Fatalf("PreciseDR = %v, want 10.0", withExclusion.PreciseDR)
	}

	withoutExclusion := Aggregate(results, []int{1}, false)
	if withoutExclusion.ExcludedLFE != 0 {
		t.Fatalf("ExcludedLFE = %d, want 0 when excludeLFE is false", withoutExclusion.ExcludedLFE)
	}
	if withoutExclusion.PreciseDR == nil || math.Abs(*withoutExclusion.PreciseDR-55.0) > 1e-9 {
		t.Fatalf("PreciseDR = %v, want 55.0", withoutExclusion.PreciseDR)
	}
}

func TestAggregateAllChannelsSilentYieldsNilDR(t *testing.T) {
	results := []ChannelDrResult{
		{Silent: true, DrValueDB: math.NaN()},
		{Silent: true, DrValueDB: math.NaN()},
	}
	agg := Aggregate(results, nil, true)
	if agg.PreciseDR != nil || agg.OfficialDR != nil {
		t.Fatalf("expected nil DR when every channel is silent, got precise=%v official=%v", agg.PreciseDR, agg.OfficialDR)
	}
	if agg.ExcludedSilent != 2 {
		t.Fatalf("ExcludedSilent = %d, want 2", agg.ExcludedSilent)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{14.5, 15}, {-14.5, -15}, {14.49, 14}, {14.51, 15}, {0.5, 1}, {-0.5, -1}, {0, 0},
	}
	for _, tt := range tests {
		if got := RoundHalfAwayFromZero(tt.in); got != tt.want {
			t.Fatalf("RoundHalfAwayFromZero(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBoundaryCheckLevels(t *testing.T) {
	tests := []struct {
		name      string
		precise   float64
		wantLevel BoundaryLevel
		wantDir   BoundaryDirection
	}{
		{"dead on boundary is high risk", 14.50, BoundaryHigh, DirectionLower},
		{"just above boundary is high risk, upper", 14.51, BoundaryHigh, DirectionUpper},
		{"medium band", 14.43, BoundaryMedium, DirectionLower},
		{"low band", 14.40, BoundaryLow, DirectionLower},
		{"well clear of boundary", 14.0, BoundaryNone, DirectionLower},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := boundaryCheck(tt.precise)
			if tt.wantLevel == BoundaryNone {
				if got != nil {
					t.Fatalf("boundaryCheck(%v) = %+v, want nil", tt.precise, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("boundaryCheck(%v) = nil, want level %v", tt.precise, tt.wantLevel)
			}
			if got.Level != tt.wantLevel {
				t.Fatalf("Level = %v, want %v", got.Level, tt.wantLevel)
			}
			if got.Direction != tt.wantDir {
				t.Fatalf("Direction = %v, want %v", got.Direction, tt.wantDir)
			}
		})
	}
}
