package texstore

import (
	"fmt"

	"github.com/gogpu/texstore/texfmt"
)

// PixelView addresses the pixels of one uncompressed mip level. It holds the
// stride and channel layout so callers never compute byte offsets by hand.
//
// A PixelView aliases the image storage and is invalidated by any call that
// reallocates it.
type PixelView struct {
	data   []byte
	width  int
	height int
	format texfmt.Format
	bpp    int

	// channel byte offsets of R, G, B and A inside a pixel; -1 for absent
	// channels. L stores its value at offset 0 for R, G and B.
	order [4]int
}

var pixelOrders = map[texfmt.Format][4]int{
	texfmt.FormatLUByte:    {0, 0, 0, -1},
	texfmt.FormatRGBUByte:  {0, 1, 2, -1},
	texfmt.FormatRGBAUByte: {0, 1, 2, 3},
	texfmt.FormatBGRAUByte: {2, 1, 0, 3},
}

// NewPixelView wraps level data of the given size. Only L, RGB, RGBA and
// BGRA are supported.
func NewPixelView(data []byte, size texfmt.Size, f texfmt.Format) (PixelView, error) {
	order, ok := pixelOrders[f]
	if !ok {
		return PixelView{}, fmt.Errorf("%w: %s has no per-pixel layout", ErrUnsupportedFormat, f)
	}

	v := PixelView{
		data:   data,
		width:  int(size.X),
		height: int(size.Y),
		format: f,
		bpp:    f.Data().BytesPerBlock,
		order:  order,
	}
	if need := v.width * v.height * v.bpp; len(data) < need {
		return PixelView{}, fmt.Errorf("%w: %s level %dx%d has %d bytes, want %d",
			ErrCorruptData, f, v.width, v.height, len(data), need)
	}
	return v, nil
}

// Pixels returns a view of a mip level.
func (i *Image) Pixels(level int) (PixelView, error) {
	if i.IsReference() || i.IsVoid() {
		return PixelView{}, ErrReference
	}
	data, err := i.LODData(level)
	if err != nil {
		return PixelView{}, err
	}
	return NewPixelView(data, i.MipSize(level), i.Format())
}

// Width returns the level width in pixels.
func (v PixelView) Width() int { return v.width }

// Height returns the level height in pixels.
func (v PixelView) Height() int { return v.height }

// Format returns the pixel format.
func (v PixelView) Format() texfmt.Format { return v.format }

// BytesPerPixel returns the pixel stride.
func (v PixelView) BytesPerPixel() int { return v.bpp }

// Len returns the number of pixels.
func (v PixelView) Len() int { return v.width * v.height }

// Offset returns the byte offset of pixel (x, y).
func (v PixelView) Offset(x, y int) int {
	return (y*v.width + x) * v.bpp
}

// Pixel returns the bytes of pixel (x, y).
func (v PixelView) Pixel(x, y int) []byte {
	off := v.Offset(x, y)
	return v.data[off : off+v.bpp : off+v.bpp]
}

// At returns the color of pixel (x, y). Luminance is replicated to RGB and
// formats without alpha read as opaque.
func (v PixelView) At(x, y int) Color {
	return v.colorAt(v.Offset(x, y))
}

// Set stores c at pixel (x, y). L keeps the red channel.
func (v PixelView) Set(x, y int, c Color) {
	b := c.Bytes()
	px := v.Pixel(x, y)
	for ch := range 4 {
		if o := v.order[ch]; o >= 0 && (v.format != texfmt.FormatLUByte || ch == 0) {
			px[o] = b[ch]
		}
	}
}

func (v PixelView) colorAt(off int) Color {
	var c Color
	for ch := range 3 {
		c[ch] = float32(v.data[off+v.order[ch]]) / 255
	}
	c[3] = 1
	if o := v.order[3]; o >= 0 {
		c[3] = float32(v.data[off+o]) / 255
	}
	return c
}

// alphaAt returns the alpha byte of the pixel at off and whether the format
// stores alpha.
func (v PixelView) alphaAt(off int) (byte, bool) {
	o := v.order[3]
	if o < 0 {
		return 255, false
	}
	return v.data[off+o], true
}

func (v PixelView) isZeroAt(off int) bool {
	for _, b := range v.data[off : off+v.bpp] {
		if b != 0 {
			return false
		}
	}
	return true
}

// pattern returns the bytes of c packed in this view's format.
func pattern(f texfmt.Format, c Color) ([]byte, bool) {
	order, ok := pixelOrders[f]
	if !ok {
		return nil, false
	}
	b := c.Bytes()
	if f == texfmt.FormatLUByte {
		return []byte{b[0]}, true
	}

	px := make([]byte, f.Data().BytesPerBlock)
	for ch, o := range order {
		if o >= 0 {
			px[o] = b[ch]
		}
	}
	return px, true
}
