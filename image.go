package texstore

import (
	"fmt"

	"github.com/gogpu/texstore/internal/storage"
	"github.com/gogpu/texstore/texfmt"
)

// InitType selects how new pixel storage is filled.
type InitType = storage.InitType

// Storage initialization modes.
const (
	// NotInitialized leaves the content to the caller.
	NotInitialized = storage.NotInitialized
	// Black zeroes every level.
	Black = storage.Black
	// Void allocates no pixel bytes. Reference images use it.
	Void = storage.Void
)

// Flags is the image flag bitset. It is serialized as one byte.
type Flags uint8

// Image flags.
const (
	// FlagCannotBeScaled marks images that must keep their size.
	FlagCannotBeScaled Flags = 1 << 0

	// FlagHasRelevancyMap marks a valid relevancy range. It is never
	// serialized.
	FlagHasRelevancyMap Flags = 1 << 5

	// FlagIsReference marks an image whose pixels live elsewhere.
	FlagIsReference Flags = 1 << 6

	// FlagIsForceLoad asks the resolver to always load fresh data for a
	// reference image.
	FlagIsForceLoad Flags = 1 << 7

	referenceFlags = FlagIsReference | FlagIsForceLoad
)

// Rect is an axis-aligned region of an image.
type Rect struct {
	MinX, MinY   uint16
	SizeX, SizeY uint16
}

// Image is a mipmapped bitmap of one pixel format.
//
// An image is either owned, holding its pixel bytes, or a reference whose
// storage is void and whose pixels are identified by ReferenceID. An owned
// image never turns into a reference in place or back.
//
// Images follow a single-writer, multiple-reader discipline enforced by the
// caller.
type Image struct {
	data  *storage.MipStorage
	flags Flags
	refID uint32

	relevancyMinY uint16
	relevancyMaxY uint16
}

// New returns an image of the given size, level count and format.
func New(width, height, lods int, f texfmt.Format, mode InitType) (*Image, error) {
	img := &Image{}
	if err := img.Init(width, height, lods, f, mode); err != nil {
		return nil, err
	}
	return img, nil
}

// NewFromDesc returns an image laid out by desc.
func NewFromDesc(desc texfmt.Desc, mode InitType) (*Image, error) {
	return New(int(desc.Size.X), int(desc.Size.Y), int(desc.NumLODs), desc.Format, mode)
}

// NewReference returns a reference image: void storage laid out by desc
// with FlagIsReference set, plus FlagIsForceLoad when forceLoad is true.
func NewReference(id uint32, desc texfmt.Desc, forceLoad bool) *Image {
	img := &Image{
		data:  storage.New(desc, storage.Void),
		flags: FlagIsReference,
		refID: id,
	}
	if forceLoad {
		img.flags |= FlagIsForceLoad
	}
	return img
}

// Init rebuilds the storage, discarding previous content, and resets flags,
// reference ID and relevancy. Sizes are limited to 65535 and level counts
// to 255; a level count of 0 counts as 1.
func (i *Image) Init(width, height, lods int, f texfmt.Format, mode InitType) error {
	if width < 0 || height < 0 || width > 0xffff || height > 0xffff {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidDimensions, width, height)
	}
	if lods < 0 || lods > 0xff {
		return fmt.Errorf("%w: %d lods", ErrInvalidDimensions, lods)
	}
	if !f.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidFormat, uint8(f))
	}

	desc := texfmt.Desc{
		Size:    texfmt.Size{X: uint16(width), Y: uint16(height)},
		Format:  f,
		NumLODs: uint8(lods),
	}
	if i.data == nil {
		i.data = storage.New(desc, mode)
	} else {
		i.data.Init(desc, mode)
	}
	i.flags = 0
	i.refID = 0
	i.relevancyMinY, i.relevancyMaxY = 0, 0
	return nil
}

// InitToBlack reallocates the storage for the current descriptor, black for
// owned images and void for references. Only the reference flags survive
// and the relevancy range is reset.
func (i *Image) InitToBlack() {
	mode := storage.Black
	if i.IsReference() {
		mode = storage.Void
	}
	i.data.Init(i.Desc(), mode)
	i.flags &= referenceFlags
	i.relevancyMinY, i.relevancyMaxY = 0, 0
}

// SizeX returns the width of level 0.
func (i *Image) SizeX() uint16 { return i.data.Desc().Size.X }

// SizeY returns the height of level 0.
func (i *Image) SizeY() uint16 { return i.data.Desc().Size.Y }

// Size returns the size of level 0.
func (i *Image) Size() texfmt.Size { return i.data.Desc().Size }

// Format returns the pixel format.
func (i *Image) Format() texfmt.Format { return i.data.Desc().Format }

// Desc returns the image descriptor.
func (i *Image) Desc() texfmt.Desc { return i.data.Desc() }

// LODCount returns the number of mip levels, at least 1.
func (i *Image) LODCount() int { return i.data.LODCount() }

// LODData returns the bytes of a mip level. The slice aliases the image and
// is invalidated by any call that reallocates the storage. Reference images
// return a nil slice.
func (i *Image) LODData(level int) ([]byte, error) {
	return i.data.LOD(level)
}

// LODDataSize returns the byte length of a level, 0 when out of range or
// void.
func (i *Image) LODDataSize(level int) int {
	return i.data.LODSize(level)
}

// MipSize returns the size of mip level mip, halving with ceiling rounding.
func (i *Image) MipSize(mip int) texfmt.Size {
	return i.Size().Mip(mip)
}

// DataSize returns the number of pixel bytes held across all levels.
func (i *Image) DataSize() int {
	return i.data.DataSize()
}

// AllocatedSize returns the number of bytes reserved for pixels.
func (i *Image) AllocatedSize() int {
	return i.data.AllocatedSize()
}

// IsEmpty reports whether the image holds no pixel bytes, either because
// it is void or because it has zero area.
func (i *Image) IsEmpty() bool {
	return i.data.IsEmpty()
}

// IsVoid reports whether the storage is void.
func (i *Image) IsVoid() bool {
	return i.data.IsVoid()
}

// ReduceLODsTo keeps at most n levels, dropping the coarsest. It never adds
// levels.
func (i *Image) ReduceLODsTo(n int) {
	if n < i.LODCount() {
		i.data.SetNumLODs(n)
	}
}

// ReduceLODs drops the n finest levels, as if the image had been loaded at a
// lower resolution. The size shrinks accordingly and one level always
// remains.
func (i *Image) ReduceLODs(n int) {
	i.data.DropLODs(n)
}

// Flags returns the flag bitset.
func (i *Image) Flags() Flags { return i.flags }

// SetFlags replaces the flags. The reference flags are fixed at creation and
// are not changed.
func (i *Image) SetFlags(f Flags) {
	i.flags = f&^referenceFlags | i.flags&referenceFlags
}

// IsReference reports whether the image is a reference.
func (i *Image) IsReference() bool { return i.flags&FlagIsReference != 0 }

// IsForceLoad reports whether the reference must bypass cached data.
func (i *Image) IsForceLoad() bool { return i.flags&FlagIsForceLoad != 0 }

// ReferenceID returns the ID of a reference image, 0 for owned images.
func (i *Image) ReferenceID() uint32 { return i.refID }

// Relevancy returns the relevancy range and whether one is set.
func (i *Image) Relevancy() (minY, maxY uint16, ok bool) {
	return i.relevancyMinY, i.relevancyMaxY, i.flags&FlagHasRelevancyMap != 0
}

// SetRelevancy marks rows [minY, maxY] as the interesting part of the image.
func (i *Image) SetRelevancy(minY, maxY uint16) {
	i.relevancyMinY, i.relevancyMaxY = minY, maxY
	i.flags |= FlagHasRelevancyMap
}

// ClearRelevancy removes the relevancy range.
func (i *Image) ClearRelevancy() {
	i.relevancyMinY, i.relevancyMaxY = 0, 0
	i.flags &^= FlagHasRelevancyMap
}

// Clone returns a deep copy.
func (i *Image) Clone() *Image {
	c := *i
	c.data = i.data.Clone()
	return &c
}

// String returns a short description for logs.
func (i *Image) String() string {
	d := i.Desc()
	if i.IsReference() {
		return fmt.Sprintf("ref#%d %dx%d %s x%d", i.refID, d.Size.X, d.Size.Y, d.Format, i.LODCount())
	}
	return fmt.Sprintf("%dx%d %s x%d", d.Size.X, d.Size.Y, d.Format, i.LODCount())
}
