// Package wav implements a decode.StreamingDecoder and
// decode.RandomAccessDecoder for canonical RIFF/WAVE PCM files.
//
// WAV is frame-independent: any frame can be decoded without reference
// to any other, so it is the one format in drtool that is safe on the
// parallel decode path (StatefulCodec() == false).
package wav

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/linuxmatters/drtool/internal/convert"
	"github.com/linuxmatters/drtool/internal/decode"
)

const (
	fmtPCM        = 1
	fmtFloat      = 3
	fmtExtensible = 0xFFFE

	// chunkWindowSeconds sizes the logical decode chunk ParallelDecoder
	// hands to a worker, matching the 3-second analysis window so a
	// worker's output lines up with WindowRmsAnalyzer's own windowing.
	chunkWindowSeconds = 3
)

// Decoder reads interleaved f32 PCM out of a RIFF/WAVE container.
type Decoder struct {
	r      io.ReadSeeker
	closer io.Closer
	path   string // set by Open; empty when built via New directly

	format     decode.AudioFormat
	formatTag  uint16
	dataOffset int64
	dataSize   int64

	bytesPerSample int
	bytesPerFrame  int
	frameCount     uint64
	chunkFrames    uint64

	pos uint64 // frames consumed via NextChunk
}

// Open opens path and parses its RIFF/WAVE headers.
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
	dec.path = path
	return dec, nil
}

// New builds a Decoder over an already-open io.ReadSeeker. closer, if
// non-nil, is invoked by Close after the underlying parse state is torn
// down; pass nil when the caller owns r's lifetime.
func New(r io.ReadSeeker, closer io.Closer) (*Decoder, error) {
	d := &Decoder{r: r, closer: closer}
	if err := d.parseHeaders(); err != nil {
		return nil, err
	}
	d.chunkFrames = uint64(chunkWindowSeconds) * uint64(d.format.SampleRateHz)
	if d.chunkFrames == 0 {
		d.chunkFrames = 1
	}
	if _, err := d.r.Seek(d.dataOffset, io.SeekStart); err != nil {
		return nil, decode.WithSuggestion(decode.KindIO, "file may be truncated", err)
	}
	return d, nil
}

func (d *Decoder) parseHeaders() error {
	var riffHeader [12]byte
	if _, err := io.ReadFull(d.r, riffHeader[:]); err != nil {
		return decode.WithSuggestion(decode.KindFormatUnsupported, "provide a WAV, MP3, or Opus file", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return decode.Newf(decode.KindFormatUnsupported, "not a RIFF/WAVE file")
	}

	var sawFmt, sawData bool
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(d.r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return decode.Newf(decode.KindIO, "reading chunk header: %w", err)
		}
		id := string(chunkHeader[0:4])
		size := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch id {
		case "fmt ":
			if err := d.parseFmtChunk(size); err != nil {
				return err
			}
			sawFmt = true
		case "data":
			pos, err := d.r.Seek(0, io.SeekCurrent)
			if err != nil {
				return decode.Newf(decode.KindIO, "seeking past data chunk header: %w", err)
			}
			d.dataOffset = pos
			d.dataSize = size
			sawData = true
			// Stop scanning: data is conventionally last, and trailing
			// chunks (LIST, id3, cue) don't matter to DR measurement.
		default:
			if _, err := d.r.Seek(size+size%2, io.SeekCurrent); err != nil {
				return decode.Newf(decode.KindIO, "skipping %q chunk: %w", id, err)
			}
			continue
		}

		if sawFmt && sawData {
			break
		}
		if _, err := d.r.Seek(size%2, io.SeekCurrent); err != nil {
			return decode.Newf(decode.KindIO, "chunk padding: %w", err)
		}
	}

	if !sawFmt || !sawData {
		return decode.Newf(decode.KindFormatUnsupported, "missing fmt or data chunk")
	}
	if d.format.ChannelCount == 0 {
		return decode.Newf(decode.KindInvalidInput, "zero channel count")
	}

	d.bytesPerFrame = d.bytesPerSample * int(d.format.ChannelCount)
	if d.bytesPerFrame > 0 {
		d.frameCount = uint64(d.dataSize) / uint64(d.bytesPerFrame)
	}
	d.format.TotalFrames = d.frameCount
	d.format.CodecName = "wav"
	return nil
}

func (d *Decoder) parseFmtChunk(size int64) error {
	if size < 16 {
		return decode.Newf(decode.KindFormatUnsupported, "fmt chunk too small (%d bytes)", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return decode.Newf(decode.KindIO, "reading fmt chunk: %w", err)
	}

	formatTag := binary.LittleEndian.Uint16(buf[0:2])
	channels := binary.LittleEndian.Uint16(buf[2:4])
	sampleRate := binary.LittleEndian.Uint32(buf[4:8])
	bitsPerSample := binary.LittleEndian.Uint16(buf[14:16])

	if formatTag == fmtExtensible && len(buf) >= 40 {
		// The real sub-format lives in the first two bytes of the
		// SubFormat GUID at offset 24 within the fmt chunk.
		formatTag = binary.LittleEndian.Uint16(buf[24:26])
	}

	switch formatTag {
	case fmtPCM, fmtFloat:
	default:
		return decode.Newf(decode.KindFormatUnsupported, "unsupported WAV format tag 0x%04x", formatTag)
	}

	d.formatTag = formatTag
	d.format.ChannelCount = channels
	d.format.SampleRateHz = sampleRate
	d.format.BitsPerSample = bitsPerSample
	d.bytesPerSample = int(bitsPerSample) / 8
	return nil
}

// Format returns the parsed stream descriptor.
func (d *Decoder) Format() decode.AudioFormat { return d.format }

// Progress reports the fraction of frames consumed via NextChunk.
func (d *Decoder) Progress() float32 {
	if d.frameCount == 0 {
		return 0
	}
	return float32(float64(d.pos) / float64(d.frameCount))
}

// StatefulCodec reports false: WAV frames decode independently.
func (d *Decoder) StatefulCodec() bool { return false }

// Close releases the underlying file, if one was opened by Open.
func (d *Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// NextChunk decodes the next chunkFrames-sized block and advances the
// serial read cursor. Returns io.EOF once every frame has been read.
func (d *Decoder) NextChunk(ctx context.Context) ([]float32, error) {
	if d.pos >= d.frameCount {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n := d.chunkFrames
	if d.pos+n > d.frameCount {
		n = d.frameCount - d.pos
	}

	out, err := d.decodeFrameRange(d.pos, n)
	if err != nil {
		return nil, err
	}
	d.pos += n
	return out, nil
}

// ChunkCount reports the number of fixed-size chunks available for
// random access, matching NextChunk's chunking.
func (d *Decoder) ChunkCount() (uint64, bool) {
	if d.chunkFrames == 0 {
		return 0, false
	}
	count := d.frameCount / d.chunkFrames
	if d.frameCount%d.chunkFrames != 0 {
		count++
	}
	return count, true
}

// DecodeChunk decodes chunk index directly via a seek, independent of
// any other chunk's decode state — safe for ParallelDecoder's worker
// pool to call concurrently from distinct goroutines (distinct
// Decoder values are still required; this method itself does its own
// seek+read pair and is not safe to call concurrently on one Decoder).
func (d *Decoder) DecodeChunk(ctx context.Context, index uint64) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := index * d.chunkFrames
	if start >= d.frameCount {
		return nil, io.EOF
	}
	n := d.chunkFrames
	if start+n > d.frameCount {
		n = d.frameCount - start
	}
	return d.decodeFrameRange(start, n)
}

// Clone opens an independent Decoder over the same file path, giving a
// ParallelDecoder worker its own file handle and read cursor instead of
// racing on d's.
func (d *Decoder) Clone() (decode.RandomAccessDecoder, error) {
	if d.path == "" {
		return nil, decode.Newf(decode.KindIO, "decoder has no backing path to clone")
	}
	return Open(d.path)
}

func (d *Decoder) decodeFrameRange(startFrame, frameN uint64) ([]float32, error) {
	byteOffset := d.dataOffset + int64(startFrame)*int64(d.bytesPerFrame)
	if _, err := d.r.Seek(byteOffset, io.SeekStart); err != nil {
		return nil, decode.Newf(decode.KindIO, "seeking to frame %d: %w", startFrame, err)
	}

	sampleN := int(frameN) * int(d.format.ChannelCount)
	raw := make([]byte, int(frameN)*d.bytesPerFrame)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return nil, decode.Newf(decode.KindDecode, "short read at frame %d: %w", startFrame, err)
	}

	out := make([]float32, sampleN)
	switch {
	case d.formatTag == fmtFloat && d.bytesPerSample == 4:
		for i := 0; i < sampleN; i++ {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			out[i] = math.Float32frombits(bits)
		}
	case d.formatTag == fmtPCM && d.bytesPerSample == 1:
		convert.Uint8ToF32(raw, out)
	case d.formatTag == fmtPCM && d.bytesPerSample == 2:
		convert.Int16ToF32(convert.LEBytesToInt16(raw), out)
	case d.formatTag == fmtPCM && d.bytesPerSample == 3:
		convert.Int24ToF32(raw, out)
	case d.formatTag == fmtPCM && d.bytesPerSample == 4:
		convert.Int32ToF32(convert.LEBytesToInt32(raw), out)
	default:
		return nil, decode.Newf(decode.KindFormatUnsupported, "unsupported bit depth %d for format tag 0x%04x", d.format.BitsPerSample, d.formatTag)
	}

	for _, s := range out {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, decode.Newf(decode.KindDecode, "non-finite sample at frame %d", startFrame)
		}
	}

	return out, nil
}
