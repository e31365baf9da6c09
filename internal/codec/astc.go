package codec

import (
	"fmt"
	"image"

	"github.com/arm-software/astc-encoder/astc"

	"github.com/gogpu/texstore/texfmt"
)

// astcQuality is the encoder effort on the astcenc 0..100 scale. 10 is the
// "fast" preset.
const astcQuality = 10

// astcKind is the block footprint of an ASTC LDR format and the swizzle
// that feeds its channels to the encoder.
type astcKind struct {
	blockX, blockY int
	swizzle        astc.Swizzle
}

var (
	astcRGB = astc.Swizzle{R: astc.SwzR, G: astc.SwzG, B: astc.SwzB, A: astc.Swz1}
	astcRG  = astc.Swizzle{R: astc.SwzR, G: astc.SwzG, B: astc.Swz0, A: astc.Swz1}
)

func astcFormat(f texfmt.Format) (astcKind, bool) {
	switch f {
	case texfmt.FormatASTC4x4RGBLDR:
		return astcKind{4, 4, astcRGB}, true
	case texfmt.FormatASTC4x4RGBALDR:
		return astcKind{4, 4, astc.SwizzleRGBA}, true
	case texfmt.FormatASTC4x4RGLDR:
		return astcKind{4, 4, astcRG}, true
	case texfmt.FormatASTC6x6RGBLDR:
		return astcKind{6, 6, astcRGB}, true
	case texfmt.FormatASTC6x6RGBALDR:
		return astcKind{6, 6, astc.SwizzleRGBA}, true
	case texfmt.FormatASTC6x6RGLDR:
		return astcKind{6, 6, astcRG}, true
	case texfmt.FormatASTC8x8RGBLDR:
		return astcKind{8, 8, astcRGB}, true
	case texfmt.FormatASTC8x8RGBALDR:
		return astcKind{8, 8, astc.SwizzleRGBA}, true
	case texfmt.FormatASTC8x8RGLDR:
		return astcKind{8, 8, astcRG}, true
	case texfmt.FormatASTC10x10RGBLDR:
		return astcKind{10, 10, astcRGB}, true
	case texfmt.FormatASTC10x10RGBALDR:
		return astcKind{10, 10, astc.SwizzleRGBA}, true
	case texfmt.FormatASTC10x10RGLDR:
		return astcKind{10, 10, astcRG}, true
	case texfmt.FormatASTC12x12RGBLDR:
		return astcKind{12, 12, astcRGB}, true
	case texfmt.FormatASTC12x12RGBALDR:
		return astcKind{12, 12, astc.SwizzleRGBA}, true
	case texfmt.FormatASTC12x12RGLDR:
		return astcKind{12, 12, astcRG}, true
	default:
		return astcKind{}, false
	}
}

// astcContext allocates a single-threaded astcenc context for k.
func astcContext(k astcKind, flags astc.Flags) (*astc.Context, error) {
	cfg, err := astc.ConfigInit(astc.ProfileLDR, k.blockX, k.blockY, 1, astcQuality, flags)
	if err != nil {
		return nil, err
	}
	return astc.ContextAlloc(&cfg, 1)
}

func encodeASTC(dst []byte, src *image.NRGBA, f texfmt.Format) error {
	k, _ := astcFormat(f)
	width, height := src.Rect.Dx(), src.Rect.Dy()

	ac, err := astcContext(k, 0)
	if err != nil {
		return fmt.Errorf("codec: encode %s: %w", f, err)
	}
	defer ac.Close()

	img := &astc.Image{
		DimX:     width,
		DimY:     height,
		DimZ:     1,
		DataType: astc.TypeU8,
		DataU8:   tightPix(src),
	}
	if err := ac.CompressImage(img, k.swizzle, dst, 0); err != nil {
		return fmt.Errorf("codec: encode %s: %w", f, err)
	}
	return nil
}

func decodeASTC(src []byte, width, height int, f texfmt.Format) (*image.NRGBA, error) {
	k, _ := astcFormat(f)

	ac, err := astcContext(k, astc.FlagDecompressOnly)
	if err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", f, err)
	}
	defer ac.Close()

	out := &astc.Image{
		DimX:     width,
		DimY:     height,
		DimZ:     1,
		DataType: astc.TypeU8,
		DataU8:   make([]byte, width*height*4),
	}
	if err := ac.DecompressImage(src, out, astc.SwizzleRGBA, 0); err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", f, err)
	}
	return &image.NRGBA{
		Pix:    out.DataU8,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// tightPix returns the pixels of m without row padding, copying only when
// m is a sub-image.
func tightPix(m *image.NRGBA) []byte {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	row := w * 4
	if m.Stride == row && len(m.Pix) == row*h {
		return m.Pix
	}
	pix := make([]byte, row*h)
	for y := range h {
		off := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+y)
		copy(pix[y*row:], m.Pix[off:off+row])
	}
	return pix
}
