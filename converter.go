package texstore

import (
	"errors"
	"fmt"

	"github.com/gogpu/texstore/internal/codec"
	"github.com/gogpu/texstore/texfmt"
)

// Converter re-encodes images into another pixel format.
//
// PixelFormat returns a new image with the size and level count of src in
// format target. Quality selects an encoder effort level where the target
// format has one.
type Converter interface {
	PixelFormat(quality int, src *Image, target texfmt.Format) (*Image, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(quality int, src *Image, target texfmt.Format) (*Image, error)

// PixelFormat calls f.
func (f ConverterFunc) PixelFormat(quality int, src *Image, target texfmt.Format) (*Image, error) {
	return f(quality, src, target)
}

// CodecConverter converts between L, RGB, RGBA, BGRA, BC1 to BC5 and, as a
// target only for ETC, ETC1 and ETC2. Luminance is computed with integer
// Rec. 601 weights; missing alpha reads as opaque.
type CodecConverter struct{}

// PixelFormat implements Converter.
func (CodecConverter) PixelFormat(_ int, src *Image, target texfmt.Format) (*Image, error) {
	if src.IsReference() || src.IsVoid() {
		return nil, fmt.Errorf("%w: convert %s", ErrReference, src)
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, uint8(target))
	}
	if src.Format() == target {
		return src.Clone(), nil
	}

	dst, err := New(int(src.SizeX()), int(src.SizeY()), src.LODCount(), target, NotInitialized)
	if err != nil {
		return nil, err
	}

	for l := range src.LODCount() {
		in, _ := src.LODData(l)
		out, _ := dst.LODData(l)
		size := src.MipSize(l)
		if err := codec.Convert(out, target, in, src.Format(), int(size.X), int(size.Y)); err != nil {
			if errors.Is(err, codec.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedFormat, src.Format(), target)
			}
			return nil, fmt.Errorf("texstore: convert lod %d: %w", l, err)
		}
	}
	return dst, nil
}
