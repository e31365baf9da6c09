// Package codec converts single mip levels between pixel formats.
//
// Every format goes through a non-premultiplied *image.NRGBA. Per-pixel
// layouts are handled by stdimg, BC1 to BC5 by the block coder in this
// package, ETC1/ETC2 by github.com/nigeltao/etc2 and the ASTC LDR formats by
// the astcenc port.
package codec

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/texstore/internal/stdimg"
	"github.com/gogpu/texstore/texfmt"
)

// ErrUnsupportedFormat is returned for formats with no encoder or decoder
// (BC6, BC7, PVRTC, RLE, None).
var ErrUnsupportedFormat = errors.New("codec: unsupported format")

// CanDecode reports whether Decode handles f.
func CanDecode(f texfmt.Format) bool {
	_, etc := etcFormat(f)
	_, isASTC := astcFormat(f)
	return stdimg.Supported(f) || isBC(f) || etc || isASTC
}

// CanEncode reports whether Encode handles f.
func CanEncode(f texfmt.Format) bool {
	return CanDecode(f)
}

// Decode expands one level of format f with the given pixel size.
func Decode(src []byte, width, height int, f texfmt.Format) (*image.NRGBA, error) {
	if !CanDecode(f) {
		return nil, fmt.Errorf("%w: decode %s", ErrUnsupportedFormat, f)
	}
	if stdimg.Supported(f) {
		return stdimg.Unpack(src, width, height, f)
	}

	if need := texfmt.DataSize(width, height, 1, f); len(src) < need {
		return nil, fmt.Errorf("codec: %s level %dx%d needs %d bytes, have %d",
			f, width, height, need, len(src))
	}

	if isBC(f) {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		decodeBC(dst, src, f)
		return dst, nil
	}
	if width == 0 || height == 0 {
		return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
	}
	if _, ok := astcFormat(f); ok {
		return decodeASTC(src, width, height, f)
	}
	return decodeETC(src, width, height, f)
}

// Encode compresses src into dst using format f. dst must hold exactly one
// level of src's size.
func Encode(dst []byte, src *image.NRGBA, f texfmt.Format) error {
	if !CanEncode(f) {
		return fmt.Errorf("%w: encode %s", ErrUnsupportedFormat, f)
	}
	if stdimg.Supported(f) {
		return stdimg.Pack(dst, src, f)
	}

	width, height := src.Rect.Dx(), src.Rect.Dy()
	if need := texfmt.DataSize(width, height, 1, f); len(dst) != need {
		return fmt.Errorf("codec: %s level %dx%d needs %d bytes, have %d",
			f, width, height, need, len(dst))
	}
	if width == 0 || height == 0 {
		return nil
	}

	if isBC(f) {
		encodeBC(dst, src, f)
		return nil
	}
	if _, ok := astcFormat(f); ok {
		return encodeASTC(dst, src, f)
	}
	return encodeETC(dst, src, f)
}

// Convert re-encodes one level from format from to format to.
func Convert(dst []byte, to texfmt.Format, src []byte, from texfmt.Format, width, height int) error {
	img, err := Decode(src, width, height, from)
	if err != nil {
		return err
	}
	return Encode(dst, img, to)
}
