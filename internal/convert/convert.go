// Package convert turns raw integer/float PCM into interleaved f32 in
// [-1.0, +1.0] and splits interleaved streams into per-channel access.
// Conversion is plain scalar Go; see DESIGN.md for why no SIMD kernel
// is wired in here.
package convert

import "encoding/binary"

// Int16ToF32 converts signed 16-bit PCM to interleaved f32.
func Int16ToF32(src []int16, dst []float32) {
	for i, s := range src {
		dst[i] = float32(s) / 32768.0
	}
}

// Int24ToF32 converts packed little-endian 24-bit PCM (3 bytes per
// sample, sign-extended) to interleaved f32. len(src) must be a
// multiple of 3.
func Int24ToF32(src []byte, dst []float32) {
	n := len(src) / 3
	for i := 0; i < n; i++ {
		b0, b1, b2 := src[i*3], src[i*3+1], src[i*3+2]
		v := int32(b0) | int32(b1)<<8 | int32(b2)<<16
		if v&0x00800000 != 0 {
			v |= ^int32(0xFFFFFF) // sign-extend
		}
		dst[i] = float32(v) / 8388608.0
	}
}

// Int32ToF32 converts signed 32-bit PCM to interleaved f32.
func Int32ToF32(src []int32, dst []float32) {
	for i, s := range src {
		dst[i] = float32(s) / 2147483648.0
	}
}

// Uint8ToF32 converts unsigned 8-bit PCM (the universal "offset binary"
// format) to interleaved f32.
func Uint8ToF32(src []uint8, dst []float32) {
	for i, s := range src {
		dst[i] = (float32(s) - 128.0) / 128.0
	}
}

// Float64ToF32 truncates f64 PCM to f32. Finite input yields finite
// output.
func Float64ToF32(src []float64, dst []float32) {
	for i, s := range src {
		dst[i] = float32(s)
	}
}

// LEBytesToInt16 reinterprets a little-endian byte buffer as int16
// samples, as produced by most WAV/PCM containers.
func LEBytesToInt16(buf []byte) []int16 {
	out := make([]int16, len(buf)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return out
}

// LEBytesToInt32 reinterprets a little-endian byte buffer as int32
// samples.
func LEBytesToInt32(buf []byte) []int32 {
	out := make([]int32, len(buf)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

// Separate splits an interleaved buffer into one slice per channel by
// materializing a copy for each. Preferred for channel_count <= 2 (see
// Strided for the >=3 case).
func Separate(interleaved []float32, channelCount int) [][]float32 {
	frames := len(interleaved) / channelCount
	out := make([][]float32, channelCount)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * channelCount
		for ch := 0; ch < channelCount; ch++ {
			out[ch][f] = interleaved[base+ch]
		}
	}
	return out
}

// Strided returns a zero-copy accessor for one channel of an interleaved
// buffer, reading every channelCount-th sample starting at offset. This
// is the preferred access pattern for channelCount >= 3 since it avoids
// materializing a per-channel buffer.
type Strided struct {
	interleaved  []float32
	channelCount int
	offset       int
}

// NewStrided builds a Strided view over channel index offset of an
// interleaved buffer.
func NewStrided(interleaved []float32, channelCount, offset int) Strided {
	return Strided{interleaved: interleaved, channelCount: channelCount, offset: offset}
}

// Len returns the number of samples visible on this channel.
func (s Strided) Len() int {
	if len(s.interleaved) <= s.offset {
		return 0
	}
	return (len(s.interleaved)-s.offset-1)/s.channelCount + 1
}

// At returns the i-th sample on this channel.
func (s Strided) At(i int) float32 {
	return s.interleaved[s.offset+i*s.channelCount]
}
