package processor

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/linuxmatters/drtool/internal/decode"
)

// fakeSerialDecoder replays a fixed sequence of interleaved chunks, one
// per NextChunk call, then returns io.EOF. It always reports
// StatefulCodec() == true so AnalyzeFile takes the serial path.
type fakeSerialDecoder struct {
	format decode.AudioFormat
	chunks [][]float32
	pos    int
}

func (f *fakeSerialDecoder) Format() decode.AudioFormat { return f.format }
func (f *fakeSerialDecoder) Progress() float32          { return float32(f.pos) / float32(len(f.chunks)+1) }
func (f *fakeSerialDecoder) StatefulCodec() bool        { return true }
func (f *fakeSerialDecoder) Close() error               { return nil }

func (f *fakeSerialDecoder) NextChunk(ctx context.Context) ([]float32, error) {
	if f.pos >= len(f.chunks) {
		return nil, io.EOF
	}
	chunk := f.chunks[f.pos]
	f.pos++
	return chunk, nil
}

func sineWave(n int, sampleRate, freq, amplitude float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestAnalyzeFileSineWaveProducesStableDR(t *testing.T) {
	const sampleRate = 8000
	dec := &fakeSerialDecoder{
		format: decode.AudioFormat{SampleRateHz: sampleRate, ChannelCount: 1},
		chunks: [][]float32{sineWave(sampleRate*6, sampleRate, 440, 0.5)},
	}

	result, err := AnalyzeFile(context.Background(), dec, DefaultConfig())
	if err != nil {
		t.Fatalf("AnalyzeFile error: %v", err)
	}
	if len(result.Channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(result.Channels))
	}
	ch := result.Channels[0]
	if ch.Silent {
		t.Fatalf("sine wave channel reported silent")
	}
	if math.IsNaN(ch.DrValueDB) || math.IsInf(ch.DrValueDB, 0) {
		t.Fatalf("DrValueDB = %v, want a finite value", ch.DrValueDB)
	}
	if ch.DrValueRounded < 0 || ch.DrValueRounded > 60 {
		t.Fatalf("DrValueRounded = %d, want a value in [0, 60]", ch.DrValueRounded)
	}
	if result.Aggregate.OfficialDR == nil {
		t.Fatalf("expected non-nil OfficialDR")
	}
}

func TestAnalyzeFileAllSilenceYieldsSilentAggregate(t *testing.T) {
	const sampleRate = 8000
	dec := &fakeSerialDecoder{
		format: decode.AudioFormat{SampleRateHz: sampleRate, ChannelCount: 2},
		chunks: [][]float32{make([]float32, sampleRate*6*2)},
	}

	result, err := AnalyzeFile(context.Background(), dec, DefaultConfig())
	if err != nil {
		t.Fatalf("AnalyzeFile error: %v", err)
	}
	for i, ch := range result.Channels {
		if !ch.Silent {
			t.Fatalf("channel %d: expected silent", i)
		}
	}
	if result.Aggregate.OfficialDR != nil {
		t.Fatalf("expected nil OfficialDR for an all-silent track")
	}
	if result.Aggregate.ExcludedSilent != 2 {
		t.Fatalf("ExcludedSilent = %d, want 2", result.Aggregate.ExcludedSilent)
	}
}

func TestAnalyzeFileSkipsMalformedPacketsAndFlagsPartial(t *testing.T) {
	const sampleRate = 1000
	dec := &decodeErrorInjectingDecoder{
		fakeSerialDecoder: fakeSerialDecoder{
			format: decode.AudioFormat{SampleRateHz: sampleRate, ChannelCount: 1},
			chunks: [][]float32{
				sineWave(sampleRate*3, sampleRate, 220, 0.4),
				sineWave(sampleRate*3, sampleRate, 220, 0.4),
			},
		},
		failAtChunk: 0,
	}

	result, err := AnalyzeFile(context.Background(), dec, DefaultConfig())
	if err != nil {
		t.Fatalf("AnalyzeFile error: %v", err)
	}
	if !result.PartialAnalysis {
		t.Fatalf("expected PartialAnalysis to be true")
	}
	if result.SkippedPackets != 1 {
		t.Fatalf("SkippedPackets = %d, want 1", result.SkippedPackets)
	}
}

// decodeErrorInjectingDecoder fails exactly one NextChunk call with a
// decode.KindDecode error, then proceeds normally, to exercise
// AnalyzeFile's skip-and-continue policy.
type decodeErrorInjectingDecoder struct {
	fakeSerialDecoder
	failAtChunk int
	calls       int
}

func (d *decodeErrorInjectingDecoder) NextChunk(ctx context.Context) ([]float32, error) {
	if d.calls == d.failAtChunk {
		d.calls++
		d.pos++
		return nil, &decode.Error{Kind: decode.KindDecode, Err: io.ErrUnexpectedEOF}
	}
	d.calls++
	return d.fakeSerialDecoder.NextChunk(ctx)
}
