// Package opus implements a decode.StreamingDecoder over an Ogg Opus
// file, demuxing pages with github.com/thesyncim/gopus/container/ogg
// and decoding packets with github.com/thesyncim/gopus.
//
// gopus's Decoder keeps SILK LPC/gain-prediction state and packet-loss
// concealment state (lastFrameSize/lastMode) across Decode calls, so
// packets cannot be decoded out of order: this decoder always reports
// StatefulCodec() == true and is restricted to the serial decode path.
package opus

import (
	"context"
	"io"
	"math"
	"os"

	gopus "github.com/thesyncim/gopus"
	"github.com/thesyncim/gopus/container/ogg"

	"github.com/linuxmatters/drtool/internal/decode"
)

// decodeSampleRate is the rate gopus.Decoder always decodes at; Opus
// operates internally at 48kHz regardless of OpusHead's (informational)
// original SampleRate field.
const decodeSampleRate = 48000

// maxFrameSamples is large enough for gopus's largest frame size
// (120ms at 48kHz, 5760 samples per channel) on either channel layout
// this package supports, interleaved across up to two channels.
const maxFrameSamples = 5760 * 2

// Decoder reads interleaved f32 PCM out of an Ogg Opus stream.
type Decoder struct {
	ogg    *ogg.Reader
	dec    *gopus.Decoder
	closer io.Closer

	format       decode.AudioFormat
	totalSamples uint64 // from the final page's granule position, 0 if unknown
	samplesRead  uint64
	preSkip      uint64
	skipped      bool

	pcmBuf [maxFrameSamples]float32
}

// Open opens path and prepares an Ogg Opus stream decoder.
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
	oggReader, err := ogg.NewReader(r)
	if err != nil {
		return nil, decode.WithSuggestion(decode.KindFormatUnsupported, "provide a WAV, MP3, or Opus file", err)
	}

	channels := int(oggReader.Header.Channels)
	if channels < 1 || channels > 2 {
		return nil, decode.Newf(decode.KindFormatUnsupported, "opus: %d channels not supported (only mono/stereo)", channels)
	}

	rawDec, err := gopus.NewDecoder(decodeSampleRate, channels)
	if err != nil {
		return nil, decode.Newf(decode.KindFormatUnsupported, "opus: %w", err)
	}

	return &Decoder{
		ogg:    oggReader,
		dec:    rawDec,
		closer: closer,
		format: decode.AudioFormat{
			SampleRateHz:  decodeSampleRate,
			ChannelCount:  uint16(channels),
			BitsPerSample: 32, // decoded PCM is f32 internally
			CodecName:     "opus",
		},
		preSkip: uint64(oggReader.Header.PreSkip),
	}, nil
}

// Format returns the stream descriptor.
func (d *Decoder) Format() decode.AudioFormat { return d.format }

// Progress reports fraction of the stream's total sample count decoded
// so far, using the running granule position as a proxy; returns 0
// until the decoder has seen enough of the stream to know its length.
func (d *Decoder) Progress() float32 {
	if d.totalSamples == 0 {
		return 0
	}
	return float32(float64(d.samplesRead) / float64(d.totalSamples))
}

// StatefulCodec reports true: gopus carries LPC and PLC state across
// Decode calls.
func (d *Decoder) StatefulCodec() bool { return true }

// Close releases the underlying file, if one was opened by Open.
func (d *Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// NextChunk decodes the next Opus packet and converts it to interleaved
// f32, discarding the encoder's pre-skip lookahead at stream start.
// Returns io.EOF once the Ogg stream has no more packets.
func (d *Decoder) NextChunk(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	for {
		packet, granulePos, err := d.ogg.ReadPacket()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, decode.Newf(decode.KindDecode, "opus: reading packet: %w", err)
		}

		n, err := d.dec.Decode(packet, d.pcmBuf[:])
		if err != nil {
			return nil, decode.Newf(decode.KindDecode, "opus: decode: %w", err)
		}

		d.totalSamples = granulePos
		samples := d.pcmBuf[:n*int(d.format.ChannelCount)]

		if !d.skipped && d.preSkip > 0 {
			skipFrames := d.preSkip
			if uint64(n) <= skipFrames {
				d.preSkip -= uint64(n)
				continue
			}
			samples = samples[skipFrames*uint64(d.format.ChannelCount):]
			d.preSkip = 0
			d.skipped = true
		}

		out := make([]float32, len(samples))
		copy(out, samples)
		for _, s := range out {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				return nil, decode.Newf(decode.KindDecode, "opus: non-finite sample")
			}
		}

		d.samplesRead += uint64(len(out)) / uint64(d.format.ChannelCount)
		return out, nil
	}
}
