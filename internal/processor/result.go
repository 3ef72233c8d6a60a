package processor

// TrackResult is the complete outcome of analyzing one file: the
// per-channel DR results, the track-level aggregate, and bookkeeping
// from any optional pre-filters that ran.
type TrackResult struct {
	Channels  []ChannelDrResult
	Aggregate AggregateResult

	// LeadingTrimmedFrames/TrailingTrimmedFrames are populated when
	// Config.TrimEdges is set; zero otherwise.
	LeadingTrimmedFrames  uint64
	TrailingTrimmedFrames uint64

	// PartialAnalysis is set when the decode stream reported one or more
	// skipped packets: the result still reflects every sample
	// that did decode, it just may not cover the whole file.
	PartialAnalysis bool
	SkippedPackets  uint64
}
