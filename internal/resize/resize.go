// Package resize scales mip levels with golang.org/x/image/draw.
package resize

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/texstore/internal/codec"
	"github.com/gogpu/texstore/texfmt"
)

// Interpolator returns the bilinear kernel for a compression quality.
// Quality 0 trades accuracy for speed.
func Interpolator(quality int) draw.Interpolator {
	if quality <= 0 {
		return draw.ApproxBiLinear
	}
	return draw.BiLinear
}

// Scale resamples src to the given size with a bilinear filter.
func Scale(src *image.NRGBA, width, height, quality int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 || src.Rect.Empty() {
		return dst
	}
	if src.Rect.Dx() == width && src.Rect.Dy() == height {
		draw.Copy(dst, image.Point{}, src, src.Rect, draw.Src, nil)
		return dst
	}
	Interpolator(quality).Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// Linear resamples one level of format srcFormat into dst, a level of format
// dstFormat with the given size. Compressed levels are decoded first and the
// result is encoded again.
func Linear(dst []byte, dstSize texfmt.Size, dstFormat texfmt.Format,
	src []byte, srcSize texfmt.Size, srcFormat texfmt.Format, quality int,
) error {
	img, err := codec.Decode(src, int(srcSize.X), int(srcSize.Y), srcFormat)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}

	scaled := Scale(img, int(dstSize.X), int(dstSize.Y), quality)
	if err := codec.Encode(dst, scaled, dstFormat); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}
