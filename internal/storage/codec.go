package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/texstore/texfmt"
)

// ErrCorruptData is returned when a serialized payload is inconsistent.
var ErrCorruptData = errors.New("storage: corrupt data")

const (
	kindOwned = 0
	kindVoid  = 1

	// maxLODBytes bounds a single serialized level.
	maxLODBytes = 1 << 30
)

// headerSize is sizeX, sizeY, numLODs, format and kind.
const headerSize = 2 + 2 + 1 + 1 + 1

// WriteTo writes the descriptor followed by every level, in ascending order,
// each prefixed by its little-endian uint32 length.
func (s *MipStorage) WriteTo(w io.Writer) (int64, error) {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint16(hdr[0:], s.desc.Size.X)
	binary.LittleEndian.PutUint16(hdr[2:], s.desc.Size.Y)
	hdr[4] = s.desc.NumLODs
	hdr[5] = byte(s.desc.Format)
	hdr[6] = kindOwned
	if s.void {
		hdr[6] = kindVoid
	}

	n, err := w.Write(hdr[:])
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("storage: write header: %w", err)
	}

	var lenBuf [4]byte
	for l := range s.LODCount() {
		data, _ := s.LOD(l)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
		n, err = w.Write(lenBuf[:])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("storage: write lod %d: %w", l, err)
		}
		n, err = w.Write(data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("storage: write lod %d: %w", l, err)
		}
	}
	return written, nil
}

// ReadFrom replaces the storage with a payload written by WriteTo.
func (s *MipStorage) ReadFrom(r io.Reader) (int64, error) {
	var hdr [headerSize]byte
	n, err := io.ReadFull(r, hdr[:])
	read := int64(n)
	if err != nil {
		return read, fmt.Errorf("storage: read header: %w", err)
	}

	desc := texfmt.Desc{
		Size: texfmt.Size{
			X: binary.LittleEndian.Uint16(hdr[0:]),
			Y: binary.LittleEndian.Uint16(hdr[2:]),
		},
		NumLODs: hdr[4],
		Format:  texfmt.Format(hdr[5]),
	}
	if !desc.Format.IsValid() {
		return read, fmt.Errorf("%w: format %d", ErrCorruptData, hdr[5])
	}

	var mode InitType
	switch hdr[6] {
	case kindOwned:
		mode = NotInitialized
	case kindVoid:
		mode = Void
	default:
		return read, fmt.Errorf("%w: storage kind %d", ErrCorruptData, hdr[6])
	}

	fixed := desc.Format.Data().BytesPerBlock > 0
	tmp := New(desc, mode)

	var lenBuf [4]byte
	for l := range tmp.LODCount() {
		n, err = io.ReadFull(r, lenBuf[:])
		read += int64(n)
		if err != nil {
			return read, fmt.Errorf("storage: read lod %d: %w", l, err)
		}
		size := int(binary.LittleEndian.Uint32(lenBuf[:]))

		switch {
		case tmp.void && size != 0:
			return read, fmt.Errorf("%w: void storage with %d bytes in lod %d", ErrCorruptData, size, l)
		case fixed && !tmp.void && size != tmp.LODSize(l):
			return read, fmt.Errorf("%w: lod %d has %d bytes, want %d", ErrCorruptData, l, size, tmp.LODSize(l))
		case size > maxLODBytes:
			return read, fmt.Errorf("%w: lod %d has %d bytes", ErrCorruptData, l, size)
		}

		if !fixed && !tmp.void {
			if err := tmp.ResizeLOD(l, size); err != nil {
				return read, err
			}
		}

		data, _ := tmp.LOD(l)
		n, err = io.ReadFull(r, data)
		read += int64(n)
		if err != nil {
			return read, fmt.Errorf("storage: read lod %d: %w", l, err)
		}
	}

	*s = *tmp
	return read, nil
}
