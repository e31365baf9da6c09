package texfmt

import "github.com/gogpu/gputypes"

// GPUFormat returns the GPU texture format that can receive the bytes of f
// without conversion. Formats without a direct equivalent return
// gputypes.TextureFormatUndefined and must be converted before upload.
func (f Format) GPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBAUByte:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatBGRAUByte:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatLUByte:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// UploadFormat returns the format an image in f should be converted to
// before GPU upload, together with its GPU texture format.
func (f Format) UploadFormat() (Format, gputypes.TextureFormat) {
	if g := f.GPUFormat(); g != gputypes.TextureFormatUndefined {
		return f, g
	}
	switch u := Uncompressed(f); u {
	case FormatNone:
		return FormatNone, gputypes.TextureFormatUndefined
	case FormatRGBUByte:
		// No 24-bit GPU format exists.
		return FormatRGBAUByte, gputypes.TextureFormatRGBA8Unorm
	default:
		return u, u.GPUFormat()
	}
}
