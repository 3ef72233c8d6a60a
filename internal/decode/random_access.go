package decode

import "context"

// RandomAccessDecoder is the optional capability a stateless-codec
// decoder (WAV, raw PCM) implements so ParallelDecoder can fan its
// chunks out across a worker pool instead of pulling them one at a
// time through StreamingDecoder.NextChunk. A codec with inter-chunk
// state (MP3's bit reservoir, Opus's SILK predictor) cannot implement
// this safely and is restricted to the serial StreamingDecoder path.
type RandomAccessDecoder interface {
	StreamingDecoder

	// ChunkCount returns the total number of chunks the decoder will
	// produce, and false if that count cannot be known up front.
	ChunkCount() (uint64, bool)

	// DecodeChunk decodes the chunk at index independently of every
	// other index. A single Decoder value still does its own seek+read
	// pair per call and is NOT safe to call concurrently on one
	// instance; concurrent decoding requires one instance per goroutine
	// (see RandomAccessDecoderFactory).
	DecodeChunk(ctx context.Context, index uint64) ([]float32, error)
}

// RandomAccessDecoderFactory is the capability ParallelDecoder actually
// requires: a RandomAccessDecoder that can mint independent instances of
// itself, so its worker pool gives every worker a private, thread-local
// decoder rather than share one across goroutines.
type RandomAccessDecoderFactory interface {
	RandomAccessDecoder

	// Clone opens a new, independent RandomAccessDecoder over the same
	// underlying source. The returned instance has its own read cursor
	// and is safe to use concurrently with the original and with every
	// other clone.
	Clone() (RandomAccessDecoder, error)
}
