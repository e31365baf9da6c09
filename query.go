package texstore

import (
	"bytes"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"

	"github.com/gogpu/texstore/internal/codec"
	"github.com/gogpu/texstore/texfmt"
)

func (i *Image) level0() (PixelView, error) {
	if i.IsReference() || i.IsVoid() {
		return PixelView{}, fmt.Errorf("%w: %s", ErrReference, i)
	}
	data, err := i.LODData(0)
	if err != nil {
		return PixelView{}, err
	}
	return NewPixelView(data, i.Size(), i.Format())
}

// texel maps a normalized coordinate to a pixel index in [0, n-1].
// NaN maps to 0.
func texel(u float32, n int) int {
	p := math32.Floor(u * float32(n))
	if !(p > 0) {
		return 0
	}
	return int(math32.Min(p, float32(n-1)))
}

// Sample returns the nearest pixel of level 0 at normalized coordinates.
// Coordinates outside [0, 1] clamp to the border. Zero-area images sample
// as the zero color.
func (i *Image) Sample(x, y float32) (Color, error) {
	v, err := i.level0()
	if err != nil {
		return Color{}, err
	}
	if v.Len() == 0 {
		return Color{}, nil
	}
	return v.At(texel(x, v.width), texel(y, v.height)), nil
}

// SampleVec is Sample with the coordinates in a vector.
func (i *Image) SampleVec(uv ms2.Vec) (Color, error) {
	return i.Sample(uv.X, uv.Y)
}

// PlainColor reports whether every pixel of level 0 has the same value and
// returns that color. Images with zero area are vacuously plain with the
// zero color. Reference images and formats without a per-pixel layout
// report false.
//
// When the result is false the color is still a best guess: the first
// pixel of level 0, decoded from the first block for block formats with a
// codec. It is the zero color for references and formats without a codec.
func (i *Image) PlainColor() (Color, bool) {
	v, err := i.level0()
	if err != nil {
		return i.firstBlockColor(), false
	}
	if v.Len() == 0 {
		return Color{}, true
	}

	first := v.data[:v.bpp]
	n := v.Len() * v.bpp
	for off := v.bpp; off < n; off += v.bpp {
		if !bytes.Equal(v.data[off:off+v.bpp], first) {
			return v.colorAt(0), false
		}
	}
	return v.colorAt(0), true
}

// firstBlockColor decodes the top-left pixel of a block-compressed level 0.
func (i *Image) firstBlockColor() Color {
	if i.IsReference() || i.IsVoid() || !codec.CanDecode(i.Format()) {
		return Color{}
	}
	d := i.Format().Data()
	w := min(d.PixelsPerBlockX, int(i.SizeX()))
	h := min(d.PixelsPerBlockY, int(i.SizeY()))
	data, err := i.LODData(0)
	if err != nil || w == 0 || h == 0 || len(data) < d.BytesPerBlock {
		return Color{}
	}

	m, err := codec.Decode(data[:d.BytesPerBlock], w, h, i.Format())
	if err != nil {
		return Color{}
	}
	c := m.NRGBAAt(0, 0)
	return ColorFromBytes(c.R, c.G, c.B, c.A)
}

// IsFullAlpha reports whether every pixel of level 0 is opaque. RGB has no
// alpha and is always opaque; RGBA and BGRA are checked. Every other format,
// L included, reports false.
func (i *Image) IsFullAlpha() bool {
	switch i.Format() {
	case texfmt.FormatRGBUByte:
		return true
	case texfmt.FormatRGBAUByte, texfmt.FormatBGRAUByte:
	default:
		return false
	}

	v, err := i.level0()
	if err != nil {
		return false
	}
	n := v.Len() * v.bpp
	for off := 0; off < n; off += v.bpp {
		if a, _ := v.alphaAt(off); a != 255 {
			return false
		}
	}
	return true
}

// NonBlackRect returns the smallest rectangle of level 0 holding every pixel
// that is not all zero bytes. Images with zero area, or with no such pixel,
// return the full image rectangle.
func (i *Image) NonBlackRect() (Rect, error) {
	v, err := i.level0()
	if err != nil {
		return Rect{}, err
	}

	full := Rect{SizeX: i.SizeX(), SizeY: i.SizeY()}
	if v.Len() == 0 {
		return full, nil
	}

	minX, minY := v.width, v.height
	maxX, maxY := -1, -1
	for y := range v.height {
		for x := range v.width {
			if v.isZeroAt(v.Offset(x, y)) {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return full, nil
	}
	return Rect{
		MinX:  uint16(minX),
		MinY:  uint16(minY),
		SizeX: uint16(maxX - minX + 1),
		SizeY: uint16(maxY - minY + 1),
	}, nil
}
