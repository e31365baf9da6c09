package texstore

import (
	"errors"
	"fmt"

	"github.com/gogpu/texstore/internal/codec"
	"github.com/gogpu/texstore/internal/resize"
)

// Resizer resamples images.
//
// ResizeLinear fills level 0 of dst, which is already laid out, from
// level 0 of src with a linear filter.
type Resizer interface {
	ResizeLinear(dst *Image, quality int, src *Image) error
}

// ResizerFunc adapts a function to the Resizer interface.
type ResizerFunc func(dst *Image, quality int, src *Image) error

// ResizeLinear calls f.
func (f ResizerFunc) ResizeLinear(dst *Image, quality int, src *Image) error {
	return f(dst, quality, src)
}

// LinearResizer decodes, scales with golang.org/x/image/draw and encodes
// again. Quality 0 uses the approximate bilinear kernel.
type LinearResizer struct{}

// ResizeLinear implements Resizer.
func (LinearResizer) ResizeLinear(dst *Image, quality int, src *Image) error {
	if src.IsReference() || src.IsVoid() || dst.IsReference() || dst.IsVoid() {
		return fmt.Errorf("%w: resize %s to %s", ErrReference, src, dst)
	}
	in, err := src.LODData(0)
	if err != nil {
		return err
	}
	out, err := dst.LODData(0)
	if err != nil {
		return err
	}
	if dst.Size().IsZero() || src.Size().IsZero() {
		return nil
	}

	err = resize.Linear(out, dst.Size(), dst.Format(), in, src.Size(), src.Format(), quality)
	if errors.Is(err, codec.ErrUnsupportedFormat) {
		return fmt.Errorf("%w: resize %s to %s", ErrUnsupportedFormat, src.Format(), dst.Format())
	}
	return err
}
