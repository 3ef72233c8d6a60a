package processor

import (
	"context"
	"fmt"
	"testing"

	"github.com/linuxmatters/drtool/internal/decode"
)

// fakeRandomAccessDecoder hands back deterministic per-index chunks so
// ParallelDecoder's reorder stage can be checked against a known answer.
type fakeRandomAccessDecoder struct {
	format      decode.AudioFormat
	chunkCount  uint64
	failIndices map[uint64]bool
}

func (f *fakeRandomAccessDecoder) Format() decode.AudioFormat { return f.format }
func (f *fakeRandomAccessDecoder) Progress() float32          { return 1.0 }
func (f *fakeRandomAccessDecoder) StatefulCodec() bool        { return false }
func (f *fakeRandomAccessDecoder) Close() error               { return nil }
func (f *fakeRandomAccessDecoder) ChunkCount() (uint64, bool) { return f.chunkCount, true }

func (f *fakeRandomAccessDecoder) NextChunk(ctx context.Context) ([]float32, error) {
	return nil, fmt.Errorf("fakeRandomAccessDecoder is parallel-only")
}

func (f *fakeRandomAccessDecoder) DecodeChunk(ctx context.Context, index uint64) ([]float32, error) {
	if f.failIndices[index] {
		return nil, &decode.Error{Kind: decode.KindDecode, Err: fmt.Errorf("simulated bad packet at %d", index)}
	}
	// Each chunk is a single mono sample whose value encodes its index,
	// so the test can confirm reorder() restored sequence order.
	return []float32{float32(index)}, nil
}

// Clone returns a second fake sharing the same read-only fields; since
// DecodeChunk never mutates f, every clone behaves identically and the
// test doesn't need to verify per-worker isolation, only that the
// factory path is exercised.
func (f *fakeRandomAccessDecoder) Clone() (decode.RandomAccessDecoder, error) {
	return f, nil
}

func TestParallelDecoderPreservesOrder(t *testing.T) {
	dec := &fakeRandomAccessDecoder{
		format:     decode.AudioFormat{SampleRateHz: 1000, ChannelCount: 1},
		chunkCount: 200,
	}
	pd := NewParallelDecoder(dec, 8, 16)

	var got []float32
	for chunk := range pd.Run(context.Background()) {
		if chunk.Err != nil {
			t.Fatalf("unexpected error at seq %d: %v", chunk.Seq, chunk.Err)
		}
		got = append(got, chunk.Samples...)
	}

	if len(got) != 200 {
		t.Fatalf("got %d samples, want 200", len(got))
	}
	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("sample %d = %v, want %v (order not preserved)", i, v, i)
		}
	}
}

func TestParallelDecoderCountsSkippedPackets(t *testing.T) {
	dec := &fakeRandomAccessDecoder{
		format:      decode.AudioFormat{SampleRateHz: 1000, ChannelCount: 1},
		chunkCount:  50,
		failIndices: map[uint64]bool{3: true, 17: true, 40: true},
	}
	pd := NewParallelDecoder(dec, 4, 8)

	var okCount int
	for chunk := range pd.Run(context.Background()) {
		if chunk.Err == nil {
			okCount++
		}
	}

	if okCount != 47 {
		t.Fatalf("got %d successful chunks, want 47", okCount)
	}
	if pd.Stats().SkippedPackets != 3 {
		t.Fatalf("SkippedPackets = %d, want 3", pd.Stats().SkippedPackets)
	}
}
