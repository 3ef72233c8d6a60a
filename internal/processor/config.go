package processor

// Config bundles every tunable of the measurement pipeline: window
// sizing derives from SampleRateHz, everything else has a documented
// default a caller can override (cmd/drtool wires these to flags).
type Config struct {
	// ClipThreshold is the linear amplitude at/above which a channel's
	// primary peak is treated as clipped.
	ClipThreshold float32

	// ExcludeLFE drops LFE-tagged channels from aggregation when the
	// container supplies channel layout metadata.
	ExcludeLFE bool

	// TrimEdges enables EdgeTrimmer on the decoded sample stream before
	// windowing. Off by default: trimming changes which
	// windows exist, so it must be opt-in.
	TrimEdges bool
	Trim      EdgeTrimmerConfig

	// FilterSilence enables SilenceFilter's per-window exclusion from
	// top-20% candidacy.
	FilterSilence bool
	Silence       SilenceFilterConfig

	// ParallelThreads bounds the worker pool used for containers whose
	// decoder reports StatefulCodec() == false. A value
	// <= 1 disables the parallel path even for stateless decoders.
	ParallelThreads int

	// ChunkBufferSize sets the depth of the parallel decoder's output
	// channel (chunks already restored to order), providing backpressure
	// against a slow consumer. The reorder stage's pending set is not
	// bounded by it.
	ChunkBufferSize int
}

// DefaultConfig returns the measurement pipeline's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		ClipThreshold:   DefaultClipThreshold,
		ExcludeLFE:      true,
		TrimEdges:       false,
		Trim:            DefaultEdgeTrimmerConfig(),
		FilterSilence:   false,
		Silence:         DefaultSilenceFilterConfig(),
		ParallelThreads: 4,
		ChunkBufferSize: 64,
	}
}
