package stdimg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/texstore/texfmt"
)

func TestLuminance(t *testing.T) {
	tests := []struct {
		r, g, b byte
		want    byte
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},
		{0, 255, 0, 149},
		{0, 0, 255, 29},
		{128, 128, 128, 128},
	}

	for _, tt := range tests {
		if got := Luminance(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Luminance(%d, %d, %d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestUnpack(t *testing.T) {
	tests := []struct {
		name   string
		format texfmt.Format
		src    []byte
		want   []byte
	}{
		{"rgba", texfmt.FormatRGBAUByte, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"bgra", texfmt.FormatBGRAUByte, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{3, 2, 1, 4, 7, 6, 5, 8}},
		{"rgb", texfmt.FormatRGBUByte, []byte{1, 2, 3, 4, 5, 6}, []byte{1, 2, 3, 255, 4, 5, 6, 255}},
		{"l", texfmt.FormatLUByte, []byte{9, 10}, []byte{9, 9, 9, 255, 10, 10, 10, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Unpack(tt.src, 2, 1, tt.format)
			if err != nil {
				t.Fatalf("Unpack() error = %v", err)
			}
			if !bytes.Equal(img.Pix, tt.want) {
				t.Errorf("Unpack() = %v, want %v", img.Pix, tt.want)
			}
		})
	}
}

func TestPack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []byte{255, 0, 0, 10, 0, 0, 255, 20})

	tests := []struct {
		name   string
		format texfmt.Format
		want   []byte
	}{
		{"rgba", texfmt.FormatRGBAUByte, []byte{255, 0, 0, 10, 0, 0, 255, 20}},
		{"bgra", texfmt.FormatBGRAUByte, []byte{0, 0, 255, 10, 255, 0, 0, 20}},
		{"rgb drops alpha", texfmt.FormatRGBUByte, []byte{255, 0, 0, 0, 0, 255}},
		{"l luminance", texfmt.FormatLUByte, []byte{76, 29}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.want))
			if err := Pack(dst, src, tt.format); err != nil {
				t.Fatalf("Pack() error = %v", err)
			}
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("Pack() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestPackUnpack_Unsupported(t *testing.T) {
	for _, f := range []texfmt.Format{texfmt.FormatNone, texfmt.FormatBC1, texfmt.FormatRGBAUByteRLE} {
		if _, err := Unpack(make([]byte, 64), 4, 4, f); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Unpack(%s) error = %v, want ErrUnsupportedFormat", f, err)
		}
		if err := Pack(make([]byte, 64), image.NewNRGBA(image.Rect(0, 0, 4, 4)), f); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Pack(%s) error = %v, want ErrUnsupportedFormat", f, err)
		}
	}
}

func TestUnpack_ShortBuffer(t *testing.T) {
	if _, err := Unpack(make([]byte, 5), 2, 2, texfmt.FormatRGBUByte); err == nil {
		t.Error("Unpack() with short buffer should fail")
	}
}

func TestToNRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(3, 3, 5, 4))
	gray.SetGray(3, 3, color.Gray{Y: 40})
	gray.SetGray(4, 3, color.Gray{Y: 200})

	got := ToNRGBA(gray)
	if got.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("ToNRGBA() bounds = %v, want (0,0)-(2,1)", got.Rect)
	}
	want := []byte{40, 40, 40, 255, 200, 200, 200, 255}
	if !bytes.Equal(got.Pix, want) {
		t.Errorf("ToNRGBA() = %v, want %v", got.Pix, want)
	}

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if ToNRGBA(n) != n {
		t.Error("ToNRGBA() should return zero-origin NRGBA input as is")
	}
}

func TestToImage_Gray(t *testing.T) {
	img, err := ToImage([]byte{1, 2, 3, 4}, 2, 2, texfmt.FormatLUByte)
	if err != nil {
		t.Fatalf("ToImage() error = %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("ToImage() = %T, want *image.Gray", img)
	}
	if gray.GrayAt(1, 1).Y != 4 {
		t.Errorf("GrayAt(1, 1) = %d, want 4", gray.GrayAt(1, 1).Y)
	}
}
