// Package mp3 implements a decode.StreamingDecoder over
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 carries a bit-reservoir across frames (later frames can borrow
// bits from earlier ones), so successive reads are not independent: this
// decoder always reports StatefulCodec() == true and is restricted to
// the serial decode path.
package mp3

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/linuxmatters/drtool/internal/decode"
)

// chunkBytes is how many decoded PCM bytes NextChunk reads per call.
// go-mp3 emits 16-bit stereo interleaved PCM regardless of the source
// channel count, so this is frame-aligned at 4 bytes (2 ch * 2 bytes).
const chunkBytes = 4 * 4096

// Decoder reads interleaved f32 PCM out of an MP3 stream via go-mp3.
type Decoder struct {
	dec    *mp3.Decoder
	closer io.Closer

	format     decode.AudioFormat
	totalBytes int64 // -1 if unknown
	readBytes  int64
	buf        [chunkBytes]byte
}

// Open opens path and prepares an MP3 stream decoder.
func Open(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decode.WithSuggestion(decode.KindIO, "check the file path and permissions", err)
	}
	dec, err := New(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return dec, nil
}

// New builds a Decoder over r. closer, if non-nil, is invoked by
// Close once the stream is exhausted or abandoned.
func New(r io.Reader, closer io.Closer) (*Decoder, error) {
	raw, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, decode.WithSuggestion(decode.KindFormatUnsupported, "provide a WAV, MP3, or Opus file", err)
	}

	d := &Decoder{
		dec:    raw,
		closer: closer,
		format: decode.AudioFormat{
			SampleRateHz:  uint32(raw.SampleRate()),
			ChannelCount:  2, // go-mp3 always decodes to stereo PCM
			BitsPerSample: 16,
			CodecName:     "mp3",
		},
		totalBytes: raw.Length(),
	}
	return d, nil
}

// Format returns the stream descriptor. SampleRateHz is taken from the
// first decoded frame; go-mp3 reports it from NewDecoder onward.
func (d *Decoder) Format() decode.AudioFormat { return d.format }

// Progress reports fraction of the compressed stream consumed so far.
// Returns 0 when go-mp3 couldn't determine stream length (e.g. reading
// from a non-seekable source).
func (d *Decoder) Progress() float32 {
	if d.totalBytes <= 0 {
		return 0
	}
	return float32(float64(d.readBytes) / float64(d.totalBytes))
}

// StatefulCodec reports true: MP3's bit reservoir ties each frame's
// decode to the frames before it.
func (d *Decoder) StatefulCodec() bool { return true }

// Close releases the underlying file, if one was opened by Open.
func (d *Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// NextChunk decodes the next block of 16-bit stereo PCM and converts it
// to interleaved f32. Returns io.EOF once go-mp3 has no more frames.
func (d *Decoder) NextChunk(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n, err := d.dec.Read(d.buf[:])
	d.readBytes += int64(n)
	if n == 0 {
		if err == io.EOF || err == nil {
			return nil, io.EOF
		}
		return nil, decode.Newf(decode.KindDecode, "mp3 decode: %w", err)
	}
	if n%4 != 0 {
		n -= n % 4
	}

	sampleN := n / 2 // 2 bytes per 16-bit sample
	out := make([]float32, sampleN)
	for i := 0; i < sampleN; i++ {
		s := int16(uint16(d.buf[i*2]) | uint16(d.buf[i*2+1])<<8)
		out[i] = float32(s) / 32768.0
		if math.IsNaN(float64(out[i])) || math.IsInf(float64(out[i]), 0) {
			return nil, decode.Newf(decode.KindDecode, "non-finite sample from mp3 decode")
		}
	}

	if err != nil && err != io.EOF {
		return out, decode.Newf(decode.KindDecode, "mp3 decode: %w", err)
	}
	return out, nil
}
