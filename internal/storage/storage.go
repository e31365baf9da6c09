// Package storage implements mipmapped pixel storage.
//
// A MipStorage keeps every level of an image in one contiguous arena and
// hands out slices of it. Views returned by LOD and Batch alias the arena and
// are invalidated by any call that reallocates it (Init, SetNumLODs growth,
// DropLODs, ResizeLOD, ReadFrom).
package storage

import (
	"errors"
	"fmt"

	"github.com/gogpu/texstore/texfmt"
)

// ErrLODOutOfRange is returned when a level index is outside the stored chain.
var ErrLODOutOfRange = errors.New("storage: lod out of range")

// InitType selects how Init fills newly allocated levels.
type InitType uint8

const (
	// NotInitialized leaves the bytes to the caller. Go zeroes fresh memory,
	// so the content is black, but callers must not rely on it.
	NotInitialized InitType = iota

	// Black zeroes every level.
	Black

	// Void allocates nothing. The levels logically exist but their pixels
	// live elsewhere (reference images).
	Void
)

// String returns the name of the init type.
func (t InitType) String() string {
	switch t {
	case NotInitialized:
		return "NotInitialized"
	case Black:
		return "Black"
	case Void:
		return "Void"
	default:
		return "Unknown"
	}
}

// MipStorage holds the levels of one image.
//
// Thread safety: concurrent reads are safe; writes need external
// synchronization. Batches returned by Batch cover disjoint ranges and can be
// written concurrently.
type MipStorage struct {
	desc texfmt.Desc

	// arena holds all levels back to back; offsets has LODCount()+1 entries
	// and level l spans arena[offsets[l]:offsets[l+1]].
	arena   []byte
	offsets []int
	void    bool
}

// New returns storage initialized for desc.
func New(desc texfmt.Desc, mode InitType) *MipStorage {
	s := &MipStorage{}
	s.Init(desc, mode)
	return s
}

// Init (re)allocates all levels for desc, discarding previous contents.
func (s *MipStorage) Init(desc texfmt.Desc, mode InitType) {
	s.desc = desc
	s.void = mode == Void

	n := desc.LODCount()
	s.offsets = make([]int, n+1)
	if s.void {
		s.arena = nil
		return
	}

	total := 0
	for l := range n {
		s.offsets[l] = total
		total += desc.LODSize(l)
	}
	s.offsets[n] = total

	// make zeroes the arena, which covers both Black and NotInitialized.
	s.arena = make([]byte, total)
}

// Desc returns the descriptor of the stored image.
func (s *MipStorage) Desc() texfmt.Desc {
	return s.desc
}

// LODCount returns the number of stored levels, at least 1.
func (s *MipStorage) LODCount() int {
	return s.desc.LODCount()
}

// LOD returns the bytes of the given level. The slice aliases the storage.
func (s *MipStorage) LOD(level int) ([]byte, error) {
	if level < 0 || level >= s.LODCount() {
		return nil, fmt.Errorf("%w: level %d of %d", ErrLODOutOfRange, level, s.LODCount())
	}
	if s.void {
		return nil, nil
	}
	return s.arena[s.offsets[level]:s.offsets[level+1]:s.offsets[level+1]], nil
}

// LODSize returns the byte length of a level, or 0 when out of range.
func (s *MipStorage) LODSize(level int) int {
	if level < 0 || level >= s.LODCount() || s.void {
		return 0
	}
	return s.offsets[level+1] - s.offsets[level]
}

// IsVoid reports whether the storage was initialized as Void.
func (s *MipStorage) IsVoid() bool {
	return s.void
}

// IsEmpty reports whether the storage holds no bytes, either because it is
// void or because the image has zero area.
func (s *MipStorage) IsEmpty() bool {
	return s.void || len(s.arena) == 0
}

// DataSize returns the number of bytes in use across all levels.
func (s *MipStorage) DataSize() int {
	return len(s.arena)
}

// AllocatedSize returns the number of bytes reserved by the arena.
func (s *MipStorage) AllocatedSize() int {
	return cap(s.arena)
}

// SetNumLODs changes the number of stored levels. Shrinking keeps the
// coarser levels out of the chain; growing appends zeroed levels sized by
// the descriptor. A count below 1 counts as 1.
func (s *MipStorage) SetNumLODs(n int) {
	n = min(max(n, 1), 255)
	old := s.LODCount()
	if n == old {
		s.desc.NumLODs = uint8(n)
		return
	}

	s.desc.NumLODs = uint8(n)
	if s.void {
		s.offsets = make([]int, n+1)
		return
	}

	if n < old {
		s.offsets = s.offsets[:n+1]
		s.arena = s.arena[:s.offsets[n]]
		return
	}

	offsets := make([]int, n+1)
	copy(offsets, s.offsets[:old+1])
	total := offsets[old]
	for l := old; l < n; l++ {
		offsets[l] = total
		total += s.desc.LODSize(l)
	}
	offsets[n] = total

	arena := make([]byte, total)
	copy(arena, s.arena)
	s.arena = arena
	s.offsets = offsets
}

// DropLODs removes the n finest levels. Level n becomes level 0 and the
// descriptor size shrinks to match. At least one level is always kept.
func (s *MipStorage) DropLODs(n int) {
	count := s.LODCount()
	n = min(n, count-1)
	if n <= 0 {
		return
	}

	s.desc.Size = s.desc.Size.Mip(n)
	s.desc.NumLODs = uint8(count - n)

	if s.void {
		s.offsets = make([]int, count-n+1)
		return
	}

	base := s.offsets[n]
	arena := make([]byte, len(s.arena)-base)
	copy(arena, s.arena[base:])

	offsets := make([]int, count-n+1)
	for i := range offsets {
		offsets[i] = s.offsets[n+i] - base
	}
	s.arena = arena
	s.offsets = offsets
}

// ResizeLOD sets the byte length of one level, keeping its leading bytes.
// It exists for formats whose level size depends on the content.
func (s *MipStorage) ResizeLOD(level, size int) error {
	if level < 0 || level >= s.LODCount() {
		return fmt.Errorf("%w: level %d of %d", ErrLODOutOfRange, level, s.LODCount())
	}
	if s.void {
		return nil
	}

	oldSize := s.offsets[level+1] - s.offsets[level]
	delta := size - oldSize
	if delta == 0 {
		return nil
	}

	arena := make([]byte, len(s.arena)+delta)
	copy(arena, s.arena[:s.offsets[level]+min(oldSize, size)])
	copy(arena[s.offsets[level+1]+delta:], s.arena[s.offsets[level+1]:])
	for i := level + 1; i < len(s.offsets); i++ {
		s.offsets[i] += delta
	}
	s.arena = arena
	return nil
}

// Clone returns a deep copy of the storage.
func (s *MipStorage) Clone() *MipStorage {
	c := &MipStorage{
		desc:    s.desc,
		offsets: append([]int(nil), s.offsets...),
		void:    s.void,
	}
	if s.arena != nil {
		c.arena = append([]byte(nil), s.arena...)
	}
	return c
}
