package convert

import (
	"math"
	"testing"
)

func TestInt16ToF32(t *testing.T) {
	src := []int16{0, 32767, -32768}
	dst := make([]float32, len(src))
	Int16ToF32(src, dst)

	if dst[0] != 0 {
		t.Errorf("zero sample: got %v", dst[0])
	}
	if math.Abs(float64(dst[1])-0.99997) > 1e-4 {
		t.Errorf("max sample: got %v", dst[1])
	}
	if dst[2] != -1.0 {
		t.Errorf("min sample: got %v", dst[2])
	}
}

func TestInt24ToF32SignExtend(t *testing.T) {
	// -1 in 24-bit two's complement: 0xFFFFFF
	src := []byte{0xFF, 0xFF, 0xFF}
	dst := make([]float32, 1)
	Int24ToF32(src, dst)
	if wantNeg := float32(-1.0 / 8388608.0); dst[0] != wantNeg {
		t.Errorf("expected %v, got %v", wantNeg, dst[0])
	}

	// Full-scale positive: 0x7FFFFF
	src = []byte{0xFF, 0xFF, 0x7F}
	Int24ToF32(src, dst)
	want := float32(8388607.0 / 8388608.0)
	if math.Abs(float64(dst[0]-want)) > 1e-6 {
		t.Errorf("expected %v, got %v", want, dst[0])
	}
}

func TestUint8ToF32(t *testing.T) {
	src := []uint8{0, 128, 255}
	dst := make([]float32, len(src))
	Uint8ToF32(src, dst)
	if dst[0] != -1.0 {
		t.Errorf("silence-floor sample: got %v", dst[0])
	}
	if dst[1] != 0.0 {
		t.Errorf("midpoint sample: got %v", dst[1])
	}
}

func TestSeparate(t *testing.T) {
	interleaved := []float32{1, 2, 3, 4, 5, 6} // 3 stereo frames
	chans := Separate(interleaved, 2)
	if len(chans) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(chans))
	}
	want0 := []float32{1, 3, 5}
	want1 := []float32{2, 4, 6}
	for i, v := range want0 {
		if chans[0][i] != v {
			t.Errorf("ch0[%d] = %v, want %v", i, chans[0][i], v)
		}
	}
	for i, v := range want1 {
		if chans[1][i] != v {
			t.Errorf("ch1[%d] = %v, want %v", i, chans[1][i], v)
		}
	}
}

func TestStrided(t *testing.T) {
	interleaved := []float32{1, 2, 3, 10, 20, 30}
	s := NewStrided(interleaved, 3, 1)
	if s.Len() != 2 {
		t.Fatalf("expected length 2, got %d", s.Len())
	}
	if s.At(0) != 2 || s.At(1) != 20 {
		t.Errorf("unexpected strided values: %v, %v", s.At(0), s.At(1))
	}
}
