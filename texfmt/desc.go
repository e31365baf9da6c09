package texfmt

import "math/bits"

// Size is an image size in pixels.
type Size struct {
	X uint16
	Y uint16
}

// IsZero reports whether either dimension is zero.
func (s Size) IsZero() bool {
	return s.X == 0 || s.Y == 0
}

// Mip returns the size of mip level n of an image whose base size is s.
// Each level halves both dimensions, rounding up, so a nonzero dimension
// never drops below 1.
func (s Size) Mip(n int) Size {
	x, y := int(s.X), int(s.Y)
	for range max(n, 0) {
		x = (x + 1) / 2
		y = (y + 1) / 2
	}
	return Size{X: uint16(x), Y: uint16(y)}
}

// Desc fully determines the byte layout of an image.
type Desc struct {
	Size    Size
	Format  Format
	NumLODs uint8
}

// LODCount returns the number of stored levels. A NumLODs of zero still
// stores the base level.
func (d Desc) LODCount() int {
	return max(1, int(d.NumLODs))
}

// DataSize returns the total byte size of all levels of d.
func (d Desc) DataSize() int {
	return DataSize(int(d.Size.X), int(d.Size.Y), int(d.NumLODs), d.Format)
}

// LODSize returns the byte size of a single level of d.
func (d Desc) LODSize(level int) int {
	m := d.Size.Mip(level)
	return DataSize(int(m.X), int(m.Y), 1, d.Format)
}

// DataSize returns the number of bytes needed to store lodCount levels of a
// sizeX by sizeY image in format f. Each level takes
// ceil(w/PixelsPerBlockX) * ceil(h/PixelsPerBlockY) * BytesPerBlock bytes,
// and w, h are halved (rounding up) between levels. A lodCount below 1
// counts as 1. Formats without a fixed block size return 0.
func DataSize(sizeX, sizeY, lodCount int, f Format) int {
	d := f.Data()
	if d.BytesPerBlock == 0 || sizeX <= 0 || sizeY <= 0 {
		return 0
	}

	total := 0
	for range max(1, lodCount) {
		blocksX := (sizeX + d.PixelsPerBlockX - 1) / d.PixelsPerBlockX
		blocksY := (sizeY + d.PixelsPerBlockY - 1) / d.PixelsPerBlockY
		total += blocksX * blocksY * d.BytesPerBlock

		sizeX = (sizeX + 1) / 2
		sizeY = (sizeY + 1) / 2
	}
	return total
}

// MipmapCount returns the length of the full mip chain of a sizeX by sizeY
// image: floor(log2(max(sizeX, sizeY))) + 1, or 0 for an empty image.
func MipmapCount(sizeX, sizeY int) int {
	if sizeX <= 0 || sizeY <= 0 {
		return 0
	}
	return bits.Len(uint(max(sizeX, sizeY)))
}
