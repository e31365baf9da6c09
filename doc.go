// Package texstore is a mipmap-aware image store for procedural textures.
//
// # Overview
//
// An Image holds one or more mip levels of a single pixel format, either
// uncompressed (L, RGB, RGBA, BGRA) or block compressed (BC, ETC, ASTC,
// PVRTC). All levels live in one contiguous arena whose layout is fully
// determined by the image descriptor (size, format, level count), so sizes
// are bit-exact and serialized images are portable.
//
// An Image is either owned, with its own pixel bytes, or a reference: a
// lightweight descriptor whose pixels are resolved elsewhere through a
// Resolver.
//
// # Quick Start
//
//	op := texstore.NewOperator(texstore.WithWorkers(0))
//	defer op.Close()
//
//	img, err := op.PlainColorImage(256, 256, 0, texfmt.FormatRGBAUByte, texstore.Color{1, 0, 0, 1})
//	if err != nil {
//	    return err
//	}
//	c, _ := img.Sample(0.5, 0.5)
//
// # Operators
//
// Operator implements the algorithms that write images: solid color fill
// (format dispatched, batched, optionally parallel), mip extraction and
// generation, pixel format conversion and linear resize. Conversion and
// resize are pluggable through the Converter and Resizer interfaces.
//
// # Queries
//
// Image answers read-only questions directly over its storage: Sample,
// PlainColor, IsFullAlpha and NonBlackRect. Pixel level queries cover the
// uncompressed formats only: Sample and NonBlackRect return
// ErrUnsupportedFormat for the others, PlainColor and IsFullAlpha report
// false.
//
// # Thread Safety
//
// An Image follows a single-writer, multiple-reader discipline that callers
// enforce. Operator, Pool and Resolver are safe for concurrent use.
//
// # Serialization
//
// WriteTo, ReadImage and the encoding.Binary(Un)Marshaler methods implement
// a little-endian image payload. SaveArchive and LoadArchive wrap a sequence
// of images in the versioned, optionally zstd-compressed envelope of the
// archive package.
package texstore
