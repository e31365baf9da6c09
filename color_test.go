package texstore

import (
	"math"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{0, 0},
		{1, 255},
		{0.5, 127}, // 127.5 truncates
		{0.999, 254},
		{-0.2, 0},
		{1.7, 255},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 255},
		{float32(math.Inf(-1)), 0},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Errorf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestColorBytes(t *testing.T) {
	c := Color{1, 0, 0.2, 0.4}
	if got, want := c.Bytes(), [4]byte{255, 0, 51, 102}; got != want {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
	if got := PlaceholderColor.Bytes(); got != [4]byte{255, 0, 255, 255} {
		t.Errorf("PlaceholderColor.Bytes() = %v, want magenta", got)
	}
}

func TestColorFromBytesRoundTrip(t *testing.T) {
	for v := range 256 {
		b := byte(v)
		c := ColorFromBytes(b, b, b, b)
		for _, got := range c.Bytes() {
			if d := int(got) - int(b); d < -1 || d > 0 {
				t.Fatalf("ColorFromBytes(%d).Bytes() = %v", b, c.Bytes())
			}
		}
	}
}
