// Package texfmt describes texture pixel formats and the byte layout of
// mipmapped image data.
//
// Every size computation in texstore is driven by the format table in this
// package: a format stores its pixels in blocks of PixelsPerBlockX by
// PixelsPerBlockY pixels, each block taking BytesPerBlock bytes.
// Uncompressed formats use 1x1 blocks.
package texfmt

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned when a format is not a known format.
var ErrInvalidFormat = errors.New("texfmt: invalid format")

// Format identifies a pixel encoding. The numeric values are persisted.
type Format uint8

const (
	// FormatNone is the absence of a format. It cannot store pixels.
	FormatNone Format = iota

	// FormatRGBUByte is 24-bit RGB (3 bytes per pixel).
	FormatRGBUByte

	// FormatRGBAUByte is 32-bit RGBA, non-premultiplied (4 bytes per pixel).
	FormatRGBAUByte

	// FormatLUByte is 8-bit luminance (1 byte per pixel).
	FormatLUByte

	FormatPVRTC2
	FormatPVRTC4
	FormatETC1
	FormatETC2

	// Run-length encoded formats have a data-dependent size.
	FormatLUByteRLE
	FormatRGBUByteRLE
	FormatRGBAUByteRLE
	FormatLUBitRLE

	FormatBC1
	FormatBC2
	FormatBC3
	FormatBC4
	FormatBC5
	FormatBC6
	FormatBC7

	// FormatBGRAUByte is 32-bit BGRA (4 bytes per pixel).
	FormatBGRAUByte

	FormatASTC4x4RGBLDR
	FormatASTC4x4RGBALDR
	FormatASTC4x4RGLDR
	FormatASTC8x8RGBLDR
	FormatASTC8x8RGBALDR
	FormatASTC8x8RGLDR
	FormatASTC12x12RGBLDR
	FormatASTC12x12RGBALDR
	FormatASTC12x12RGLDR
	FormatASTC6x6RGBLDR
	FormatASTC6x6RGBALDR
	FormatASTC6x6RGLDR
	FormatASTC10x10RGBLDR
	FormatASTC10x10RGBALDR
	FormatASTC10x10RGLDR

	formatCount
)

// Data is the layout metadata of a format.
type Data struct {
	// BytesPerBlock is the size of one block. Zero means the format has no
	// fixed size (None and the RLE formats).
	BytesPerBlock int

	// PixelsPerBlockX and PixelsPerBlockY are the block dimensions.
	PixelsPerBlockX int
	PixelsPerBlockY int

	// Channels is the number of color channels the format carries.
	Channels int
}

// formatTable holds the layout of every known format.
var formatTable = [formatCount]Data{
	FormatNone:         {0, 1, 1, 0},
	FormatRGBUByte:     {3, 1, 1, 3},
	FormatRGBAUByte:    {4, 1, 1, 4},
	FormatLUByte:       {1, 1, 1, 1},
	FormatPVRTC2:       {8, 8, 4, 4},
	FormatPVRTC4:       {8, 4, 4, 4},
	FormatETC1:         {8, 4, 4, 3},
	FormatETC2:         {8, 4, 4, 3},
	FormatLUByteRLE:    {0, 1, 1, 1},
	FormatRGBUByteRLE:  {0, 1, 1, 3},
	FormatRGBAUByteRLE: {0, 1, 1, 4},
	FormatLUBitRLE:     {0, 1, 1, 1},
	FormatBC1:          {8, 4, 4, 4},
	FormatBC2:          {16, 4, 4, 4},
	FormatBC3:          {16, 4, 4, 4},
	FormatBC4:          {8, 4, 4, 1},
	FormatBC5:          {16, 4, 4, 2},
	FormatBC6:          {16, 4, 4, 3},
	FormatBC7:          {16, 4, 4, 4},
	FormatBGRAUByte:    {4, 1, 1, 4},

	FormatASTC4x4RGBLDR:    {16, 4, 4, 3},
	FormatASTC4x4RGBALDR:   {16, 4, 4, 4},
	FormatASTC4x4RGLDR:     {16, 4, 4, 2},
	FormatASTC8x8RGBLDR:    {16, 8, 8, 3},
	FormatASTC8x8RGBALDR:   {16, 8, 8, 4},
	FormatASTC8x8RGLDR:     {16, 8, 8, 2},
	FormatASTC12x12RGBLDR:  {16, 12, 12, 3},
	FormatASTC12x12RGBALDR: {16, 12, 12, 4},
	FormatASTC12x12RGLDR:   {16, 12, 12, 2},
	FormatASTC6x6RGBLDR:    {16, 6, 6, 3},
	FormatASTC6x6RGBALDR:   {16, 6, 6, 4},
	FormatASTC6x6RGLDR:     {16, 6, 6, 2},
	FormatASTC10x10RGBLDR:  {16, 10, 10, 3},
	FormatASTC10x10RGBALDR: {16, 10, 10, 4},
	FormatASTC10x10RGLDR:   {16, 10, 10, 2},
}

var formatNames = [formatCount]string{
	FormatNone:             "None",
	FormatRGBUByte:         "RGB_UByte",
	FormatRGBAUByte:        "RGBA_UByte",
	FormatLUByte:           "L_UByte",
	FormatPVRTC2:           "PVRTC2",
	FormatPVRTC4:           "PVRTC4",
	FormatETC1:             "ETC1",
	FormatETC2:             "ETC2",
	FormatLUByteRLE:        "L_UByteRLE",
	FormatRGBUByteRLE:      "RGB_UByteRLE",
	FormatRGBAUByteRLE:     "RGBA_UByteRLE",
	FormatLUBitRLE:         "L_UBitRLE",
	FormatBC1:              "BC1",
	FormatBC2:              "BC2",
	FormatBC3:              "BC3",
	FormatBC4:              "BC4",
	FormatBC5:              "BC5",
	FormatBC6:              "BC6",
	FormatBC7:              "BC7",
	FormatBGRAUByte:        "BGRA_UByte",
	FormatASTC4x4RGBLDR:    "ASTC_4x4_RGB_LDR",
	FormatASTC4x4RGBALDR:   "ASTC_4x4_RGBA_LDR",
	FormatASTC4x4RGLDR:     "ASTC_4x4_RG_LDR",
	FormatASTC8x8RGBLDR:    "ASTC_8x8_RGB_LDR",
	FormatASTC8x8RGBALDR:   "ASTC_8x8_RGBA_LDR",
	FormatASTC8x8RGLDR:     "ASTC_8x8_RG_LDR",
	FormatASTC12x12RGBLDR:  "ASTC_12x12_RGB_LDR",
	FormatASTC12x12RGBALDR: "ASTC_12x12_RGBA_LDR",
	FormatASTC12x12RGLDR:   "ASTC_12x12_RG_LDR",
	FormatASTC6x6RGBLDR:    "ASTC_6x6_RGB_LDR",
	FormatASTC6x6RGBALDR:   "ASTC_6x6_RGBA_LDR",
	FormatASTC6x6RGLDR:     "ASTC_6x6_RG_LDR",
	FormatASTC10x10RGBLDR:  "ASTC_10x10_RGB_LDR",
	FormatASTC10x10RGBALDR: "ASTC_10x10_RGBA_LDR",
	FormatASTC10x10RGLDR:   "ASTC_10x10_RG_LDR",
}

// Data returns the layout of f. Unknown formats return the zero Data, which
// yields zero-sized storage everywhere.
func (f Format) Data() Data {
	if f >= formatCount {
		return Data{}
	}
	return formatTable[f]
}

// LookupData returns the layout of f, or ErrInvalidFormat.
func LookupData(f Format) (Data, error) {
	if !f.IsValid() {
		return Data{}, fmt.Errorf("%w: %d", ErrInvalidFormat, uint8(f))
	}
	return formatTable[f], nil
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// String returns the format name.
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatNames[f]
}

// ParseFormat returns the format with the given name, as printed by String.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if n == name {
			return Format(f), nil
		}
	}
	return FormatNone, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

// IsBlockCompressed reports whether f packs more than one pixel per block.
func (f Format) IsBlockCompressed() bool {
	d := f.Data()
	return d.BytesPerBlock > 0 && (d.PixelsPerBlockX > 1 || d.PixelsPerBlockY > 1)
}

// IsRLE reports whether f is one of the run-length encoded formats.
func (f Format) IsRLE() bool {
	switch f {
	case FormatLUByteRLE, FormatRGBUByteRLE, FormatRGBAUByteRLE, FormatLUBitRLE:
		return true
	default:
		return false
	}
}

// HasAlpha reports whether f carries an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Data().Channels == 4
}

// Uncompressed returns the uncompressed format that f decodes to.
// Uncompressed formats return themselves; None and unknown formats return
// FormatNone.
func Uncompressed(f Format) Format {
	switch f {
	case FormatRGBUByte, FormatRGBAUByte, FormatLUByte, FormatBGRAUByte:
		return f
	case FormatLUByteRLE, FormatLUBitRLE, FormatBC4:
		return FormatLUByte
	case FormatRGBUByteRLE, FormatETC1, FormatETC2, FormatBC5, FormatBC6:
		return FormatRGBUByte
	case FormatRGBAUByteRLE, FormatPVRTC2, FormatPVRTC4,
		FormatBC1, FormatBC2, FormatBC3, FormatBC7:
		return FormatRGBAUByte
	case FormatASTC4x4RGBLDR, FormatASTC8x8RGBLDR, FormatASTC12x12RGBLDR,
		FormatASTC6x6RGBLDR, FormatASTC10x10RGBLDR,
		FormatASTC4x4RGLDR, FormatASTC8x8RGLDR, FormatASTC12x12RGLDR,
		FormatASTC6x6RGLDR, FormatASTC10x10RGLDR:
		return FormatRGBUByte
	case FormatASTC4x4RGBALDR, FormatASTC8x8RGBALDR, FormatASTC12x12RGBALDR,
		FormatASTC6x6RGBALDR, FormatASTC10x10RGBALDR:
		return FormatRGBAUByte
	default:
		return FormatNone
	}
}
