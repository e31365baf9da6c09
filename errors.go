package texstore

import (
	"errors"

	"github.com/gogpu/texstore/internal/storage"
	"github.com/gogpu/texstore/texfmt"
)

// Errors returned by texstore.
var (
	// ErrUnsupportedFormat is returned when an operation has no
	// implementation for the image format.
	ErrUnsupportedFormat = errors.New("texstore: unsupported format")

	// ErrInvalidDimensions is returned for sizes or level counts outside the
	// representable range.
	ErrInvalidDimensions = errors.New("texstore: invalid dimensions")

	// ErrReference is returned when an operation needs pixel data and the
	// image is a reference.
	ErrReference = errors.New("texstore: image is a reference")

	// ErrDescMismatch is returned when a loaded image does not match the
	// descriptor of the reference it resolves.
	ErrDescMismatch = errors.New("texstore: descriptor mismatch")

	// ErrLODOutOfRange is returned for a mip level outside the stored chain.
	ErrLODOutOfRange = storage.ErrLODOutOfRange

	// ErrCorruptData is returned when a serialized image is inconsistent.
	ErrCorruptData = storage.ErrCorruptData

	// ErrInvalidFormat is returned for format values outside the format
	// table.
	ErrInvalidFormat = texfmt.ErrInvalidFormat
)
