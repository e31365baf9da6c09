// Package stdimg converts between uncompressed level bytes and the standard
// library image types.
//
// Every conversion goes through *image.NRGBA: level bytes are stored
// non-premultiplied, which is what NRGBA holds.
package stdimg

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/texstore/texfmt"
)

// ErrUnsupportedFormat is returned for formats that are not plain pixel
// layouts (block compressed, RLE, None).
var ErrUnsupportedFormat = errors.New("stdimg: unsupported format")

// Supported reports whether f is a per-pixel layout handled by this package.
func Supported(f texfmt.Format) bool {
	switch f {
	case texfmt.FormatRGBUByte, texfmt.FormatRGBAUByte, texfmt.FormatBGRAUByte, texfmt.FormatLUByte:
		return true
	default:
		return false
	}
}

// Luminance returns the 8-bit luma of an RGB triple using integer Rec. 601
// weights.
func Luminance(r, g, b byte) byte {
	return byte((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// Unpack expands one level of format f into a new NRGBA image.
// Missing channels read as opaque alpha; luminance is replicated to RGB.
func Unpack(src []byte, width, height int, f texfmt.Format) (*image.NRGBA, error) {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if err := UnpackInto(dst, src, f); err != nil {
		return nil, err
	}
	return dst, nil
}

// UnpackInto expands src into dst, whose bounds give the level size.
func UnpackInto(dst *image.NRGBA, src []byte, f texfmt.Format) error {
	if !Supported(f) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	bpp := f.Data().BytesPerBlock
	if len(src) < width*height*bpp {
		return fmt.Errorf("stdimg: %s level %dx%d needs %d bytes, have %d",
			f, width, height, width*height*bpp, len(src))
	}

	for y := range height {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		in := src[y*width*bpp : (y+1)*width*bpp]

		switch f {
		case texfmt.FormatRGBAUByte:
			copy(row, in)

		case texfmt.FormatBGRAUByte:
			for x := range width {
				row[x*4+0] = in[x*4+2]
				row[x*4+1] = in[x*4+1]
				row[x*4+2] = in[x*4+0]
				row[x*4+3] = in[x*4+3]
			}

		case texfmt.FormatRGBUByte:
			for x := range width {
				row[x*4+0] = in[x*3+0]
				row[x*4+1] = in[x*3+1]
				row[x*4+2] = in[x*3+2]
				row[x*4+3] = 255
			}

		case texfmt.FormatLUByte:
			for x := range width {
				v := in[x]
				row[x*4+0] = v
				row[x*4+1] = v
				row[x*4+2] = v
				row[x*4+3] = 255
			}
		}
	}
	return nil
}

// Pack writes src into dst using format f. Alpha is dropped for formats
// without it; L stores the luminance of each pixel.
func Pack(dst []byte, src *image.NRGBA, f texfmt.Format) error {
	if !Supported(f) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	width, height := src.Rect.Dx(), src.Rect.Dy()
	bpp := f.Data().BytesPerBlock
	if len(dst) < width*height*bpp {
		return fmt.Errorf("stdimg: %s level %dx%d needs %d bytes, have %d",
			f, width, height, width*height*bpp, len(dst))
	}

	for y := range height {
		in := src.Pix[y*src.Stride : y*src.Stride+width*4]
		out := dst[y*width*bpp : (y+1)*width*bpp]

		switch f {
		case texfmt.FormatRGBAUByte:
			copy(out, in)

		case texfmt.FormatBGRAUByte:
			for x := range width {
				out[x*4+0] = in[x*4+2]
				out[x*4+1] = in[x*4+1]
				out[x*4+2] = in[x*4+0]
				out[x*4+3] = in[x*4+3]
			}

		case texfmt.FormatRGBUByte:
			for x := range width {
				out[x*3+0] = in[x*4+0]
				out[x*3+1] = in[x*4+1]
				out[x*3+2] = in[x*4+2]
			}

		case texfmt.FormatLUByte:
			for x := range width {
				out[x] = Luminance(in[x*4+0], in[x*4+1], in[x*4+2])
			}
		}
	}
	return nil
}

// ToNRGBA returns img as a zero-origin NRGBA image. An NRGBA input at the
// origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// ToImage returns a standard image for one level, *image.Gray for L and
// *image.NRGBA otherwise. Used for export to PNG and friends.
func ToImage(src []byte, width, height int, f texfmt.Format) (image.Image, error) {
	if f != texfmt.FormatLUByte {
		return Unpack(src, width, height, f)
	}
	if len(src) < width*height {
		return nil, fmt.Errorf("stdimg: %s level %dx%d needs %d bytes, have %d",
			f, width, height, width*height, len(src))
	}
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := range height {
		copy(gray.Pix[y*gray.Stride:], src[y*width:(y+1)*width])
	}
	return gray, nil
}
