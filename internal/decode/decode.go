// Package decode defines the decoder contract consumed by the DR engine.
//
// Actual container/codec decoding lives outside this package (see
// internal/audio/wav, internal/audio/mp3, internal/audio/opus); decode
// only describes the trait those packages implement and the PCM/format
// data that flows across it.
package decode

import "context"

// AudioFormat is the immutable descriptor a decoder produces once it has
// enough data to know the stream's shape. It must not change after it is
// first reported.
type AudioFormat struct {
	SampleRateHz  uint32
	ChannelCount  uint16
	BitsPerSample uint16
	TotalFrames   uint64 // 0 if unknown
	CodecName     string

	// ChannelLayoutMask names each channel position; zero value means the
	// container supplied no layout metadata.
	ChannelLayoutMask uint32

	// LFEIndices holds sorted, 0-based channel indices flagged as LFE by
	// the container. Nil when no such metadata is present.
	LFEIndices []int
}

// StreamingDecoder yields interleaved f32 PCM chunks in presentation
// order. Implementations MUST deliver a sample count that is a multiple
// of Format().ChannelCount, and every sample MUST be finite.
type StreamingDecoder interface {
	// Format returns the stream descriptor. Stable after the first
	// successful NextChunk call.
	Format() AudioFormat

	// NextChunk returns the next block of interleaved PCM, or a nil
	// slice and io.EOF at EOF. ctx cancellation aborts an in-flight read.
	NextChunk(ctx context.Context) ([]float32, error)

	// Progress reports fraction of input consumed, in [0.0, 1.0]. Best
	// effort; decoders with unknown length may always return 0.
	Progress() float32

	// StatefulCodec reports whether successive NextChunk results depend
	// on decoder state carried across calls (bit-reservoir, LPC
	// prediction history, packet-loss concealment, ...). Stateful
	// decoders MUST NOT be used by the parallel decode path because a worker pool
	// decodes packets out of program order relative to their neighbors.
	StatefulCodec() bool

	// Close releases any resources held by the decoder.
	Close() error
}

// ParallelStats is exposed by decoders used on the parallel path so
// callers can observe what the worker pool actually did.
type ParallelStats struct {
	PacketCount     uint64
	SkippedPackets  uint64
	AvgChunkSamples float64
}

// SequencedChunk pairs a decoded PCM chunk with the monotonic, non-gappy
// sequence number assigned to it by the demuxer. Used only on the
// parallel decode path to restore presentation order after fan-out.
type SequencedChunk struct {
	Seq     uint64
	Samples []float32
	Err     error
}
