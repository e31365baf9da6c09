// Package archive implements the versioned envelope used to store a
// sequence of serialized images in one stream.
//
// An archive starts with a 7-byte header: the magic "TXSA", a little-endian
// uint16 version and a flags byte. When FlagZstd is set, everything after
// the header is a single zstd stream. The payload itself is opaque to this
// package.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Magic starts every archive.
const Magic = "TXSA"

// Version is the newest envelope version this package reads and the one it
// writes.
const Version uint16 = 1

// Header flags.
const (
	// FlagZstd marks a zstd-compressed payload.
	FlagZstd uint8 = 1 << 0

	knownFlags = FlagZstd
)

const headerSize = len(Magic) + 2 + 1

// Archive errors.
var (
	// ErrBadMagic is returned when the stream does not start with Magic.
	ErrBadMagic = errors.New("archive: bad magic")

	// ErrUnsupportedVersion is returned for versions newer than Version, or
	// for flags this version does not define.
	ErrUnsupportedVersion = errors.New("archive: unsupported version")
)

// Header is the decoded envelope header.
type Header struct {
	Version uint16
	Flags   uint8
}

// Compressed reports whether the payload is zstd-compressed.
func (h Header) Compressed() bool {
	return h.Flags&FlagZstd != 0
}

// Option configures a Writer.
type Option func(*writerOptions)

type writerOptions struct {
	compress bool
	level    zstd.EncoderLevel
}

// WithZstd compresses the payload at the given level.
func WithZstd(level zstd.EncoderLevel) Option {
	return func(o *writerOptions) {
		o.compress = true
		o.level = level
	}
}

// Writer writes an archive payload. Close must be called to flush it.
type Writer struct {
	out io.Writer
	enc *zstd.Encoder
}

// NewWriter writes the header to w and returns a Writer for the payload.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o := writerOptions{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&o)
	}

	var hdr [headerSize]byte
	copy(hdr[:], Magic)
	binary.LittleEndian.PutUint16(hdr[len(Magic):], Version)
	if o.compress {
		hdr[headerSize-1] = FlagZstd
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("archive: write header: %w", err)
	}

	aw := &Writer{out: w}
	if o.compress {
		enc, err := zstd.NewWriter(w,
			zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)),
			zstd.WithEncoderLevel(o.level),
		)
		if err != nil {
			return nil, fmt.Errorf("archive: zstd writer: %w", err)
		}
		aw.enc = enc
		aw.out = enc
	}
	return aw, nil
}

// Write writes payload bytes.
func (w *Writer) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// Close flushes the compressed stream. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if w.enc == nil {
		return nil
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("archive: zstd close: %w", err)
	}
	return nil
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			// Only invalid options make NewReader fail.
			panic(err)
		}
		return dec
	},
}

// Reader reads an archive payload.
type Reader struct {
	hdr Header
	in  io.Reader
	dec *zstd.Decoder
}

// NewReader reads and validates the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header", ErrBadMagic)
		}
		return nil, fmt.Errorf("archive: read header: %w", err)
	}
	if string(hdr[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}

	h := Header{
		Version: binary.LittleEndian.Uint16(hdr[len(Magic):]),
		Flags:   hdr[headerSize-1],
	}
	if h.Version == 0 || h.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: flags %#x", ErrUnsupportedVersion, h.Flags)
	}

	ar := &Reader{hdr: h, in: r}
	if h.Compressed() {
		dec := decoderPool.Get().(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			decoderPool.Put(dec)
			return nil, fmt.Errorf("archive: zstd reader: %w", err)
		}
		ar.dec = dec
		ar.in = dec
	}
	return ar, nil
}

// Header returns the decoded header.
func (r *Reader) Header() Header {
	return r.hdr
}

// Read reads payload bytes.
func (r *Reader) Read(p []byte) (int, error) {
	return r.in.Read(p)
}

// Close releases the decompressor. It does not close the underlying reader.
func (r *Reader) Close() error {
	if r.dec != nil {
		_ = r.dec.Reset(nil)
		decoderPool.Put(r.dec)
		r.dec = nil
		r.in = eofReader{}
	}
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
