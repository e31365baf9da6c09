package codec

import (
	"encoding/binary"
	"image"

	"github.com/gogpu/texstore/internal/stdimg"
	"github.com/gogpu/texstore/texfmt"
)

// block holds the 16 pixels of a 4x4 block in row-major order.
type block [16][4]byte

func isBC(f texfmt.Format) bool {
	switch f {
	case texfmt.FormatBC1, texfmt.FormatBC2, texfmt.FormatBC3, texfmt.FormatBC4, texfmt.FormatBC5:
		return true
	default:
		return false
	}
}

// gather reads the block at block coordinates (bx, by). Pixels past the
// image edge repeat the last row or column.
func gather(src *image.NRGBA, bx, by int, px *block) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for j := range 4 {
		y := min(by*4+j, h-1)
		for i := range 4 {
			x := min(bx*4+i, w-1)
			off := y*src.Stride + x*4
			copy(px[j*4+i][:], src.Pix[off:off+4])
		}
	}
}

// scatter writes the in-bounds part of a decoded block.
func scatter(dst *image.NRGBA, bx, by int, px *block) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for j := range 4 {
		y := by*4 + j
		if y >= h {
			break
		}
		for i := range 4 {
			x := bx*4 + i
			if x >= w {
				break
			}
			off := y*dst.Stride + x*4
			copy(dst.Pix[off:off+4], px[j*4+i][:])
		}
	}
}

func encodeBC(dst []byte, src *image.NRGBA, f texfmt.Format) {
	bw := (src.Rect.Dx() + 3) / 4
	bh := (src.Rect.Dy() + 3) / 4
	size := f.Data().BytesPerBlock

	var px block
	var ch [16]byte
	off := 0
	for by := range bh {
		for bx := range bw {
			gather(src, bx, by, &px)
			out := dst[off : off+size]

			switch f {
			case texfmt.FormatBC1:
				encodeColor(out, &px, true)
			case texfmt.FormatBC2:
				encodeExplicitAlpha(out[:8], &px)
				encodeColor(out[8:], &px, false)
			case texfmt.FormatBC3:
				channel(&px, 3, &ch)
				encodeAlpha(out[:8], &ch)
				encodeColor(out[8:], &px, false)
			case texfmt.FormatBC4:
				for i := range px {
					ch[i] = stdimg.Luminance(px[i][0], px[i][1], px[i][2])
				}
				encodeAlpha(out, &ch)
			case texfmt.FormatBC5:
				channel(&px, 0, &ch)
				encodeAlpha(out[:8], &ch)
				channel(&px, 1, &ch)
				encodeAlpha(out[8:], &ch)
			}
			off += size
		}
	}
}

func decodeBC(dst *image.NRGBA, src []byte, f texfmt.Format) {
	bw := (dst.Rect.Dx() + 3) / 4
	bh := (dst.Rect.Dy() + 3) / 4
	size := f.Data().BytesPerBlock

	var px block
	var ch [16]byte
	off := 0
	for by := range bh {
		for bx := range bw {
			in := src[off : off+size]

			switch f {
			case texfmt.FormatBC1:
				decodeColor(in, &px, false)
			case texfmt.FormatBC2:
				decodeColor(in[8:], &px, true)
				alpha := binary.LittleEndian.Uint64(in)
				for i := range px {
					px[i][3] = byte(alpha>>(4*i)&0xf) * 17
				}
			case texfmt.FormatBC3:
				decodeColor(in[8:], &px, true)
				decodeAlpha(in[:8], &ch)
				for i := range px {
					px[i][3] = ch[i]
				}
			case texfmt.FormatBC4:
				decodeAlpha(in, &ch)
				for i, v := range ch {
					px[i] = [4]byte{v, v, v, 255}
				}
			case texfmt.FormatBC5:
				decodeAlpha(in[:8], &ch)
				for i, v := range ch {
					px[i] = [4]byte{v, 0, 0, 255}
				}
				decodeAlpha(in[8:], &ch)
				for i, v := range ch {
					px[i][1] = v
				}
			}

			scatter(dst, bx, by, &px)
			off += size
		}
	}
}

func channel(px *block, c int, out *[16]byte) {
	for i := range px {
		out[i] = px[i][c]
	}
}

func pack565(c [4]byte) uint16 {
	r := (uint16(c[0])*31 + 127) / 255
	g := (uint16(c[1])*63 + 127) / 255
	b := (uint16(c[2])*31 + 127) / 255
	return r<<11 | g<<5 | b
}

func unpack565(v uint16) [4]byte {
	r := byte(v >> 11 & 0x1f)
	g := byte(v >> 5 & 0x3f)
	b := byte(v & 0x1f)
	return [4]byte{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 255}
}

// colorPalette expands two endpoints. In three-color mode entry 3 is
// transparent black.
func colorPalette(c0, c1 uint16, four bool) [4][4]byte {
	var p [4][4]byte
	p[0] = unpack565(c0)
	p[1] = unpack565(c1)

	if four || c0 > c1 {
		for i := range 3 {
			a, b := int(p[0][i]), int(p[1][i])
			p[2][i] = byte((2*a + b) / 3)
			p[3][i] = byte((a + 2*b) / 3)
		}
		p[2][3], p[3][3] = 255, 255
		return p
	}

	for i := range 3 {
		p[2][i] = byte((int(p[0][i]) + int(p[1][i])) / 2)
	}
	p[2][3] = 255
	return p
}

func decodeColor(in []byte, px *block, four bool) {
	c0 := binary.LittleEndian.Uint16(in[0:])
	c1 := binary.LittleEndian.Uint16(in[2:])
	idx := binary.LittleEndian.Uint32(in[4:])

	p := colorPalette(c0, c1, four)
	for i := range px {
		px[i] = p[idx>>(2*i)&3]
	}
}

// encodeColor fits the block with the corners of its RGB bounding box.
// With punchThrough, pixels whose alpha is below 128 map to the
// transparent entry of three-color mode.
func encodeColor(out []byte, px *block, punchThrough bool) {
	lo := [4]byte{255, 255, 255, 255}
	var hi [4]byte
	opaque, transparent := 0, false

	for i := range px {
		if punchThrough && px[i][3] < 128 {
			transparent = true
			continue
		}
		opaque++
		for c := range 3 {
			lo[c] = min(lo[c], px[i][c])
			hi[c] = max(hi[c], px[i][c])
		}
	}

	if opaque == 0 {
		binary.LittleEndian.PutUint16(out[0:], 0)
		binary.LittleEndian.PutUint16(out[2:], 0)
		binary.LittleEndian.PutUint32(out[4:], 0xffffffff)
		return
	}

	c0, c1 := pack565(hi), pack565(lo)
	if transparent && c0 > c1 {
		c0, c1 = c1, c0
	}
	binary.LittleEndian.PutUint16(out[0:], c0)
	binary.LittleEndian.PutUint16(out[2:], c1)

	four := !punchThrough || c0 > c1
	p := colorPalette(c0, c1, four)
	candidates := 4
	if !four {
		candidates = 3
	}

	var idx uint32
	for i := range px {
		if punchThrough && px[i][3] < 128 {
			idx |= 3 << (2 * i)
			continue
		}
		best, bestDist := 0, 1<<30
		for k := range candidates {
			d := 0
			for c := range 3 {
				diff := int(px[i][c]) - int(p[k][c])
				d += diff * diff
			}
			if d < bestDist {
				best, bestDist = k, d
			}
		}
		idx |= uint32(best) << (2 * i)
	}
	binary.LittleEndian.PutUint32(out[4:], idx)
}

func encodeExplicitAlpha(out []byte, px *block) {
	var bits uint64
	for i := range px {
		v := (uint64(px[i][3])*15 + 127) / 255
		bits |= v << (4 * i)
	}
	binary.LittleEndian.PutUint64(out, bits)
}

func alphaPalette(a0, a1 byte) [8]byte {
	p := [8]byte{a0, a1}
	x, y := int(a0), int(a1)
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			p[i+1] = byte(((7-i)*x + i*y) / 7)
		}
		return p
	}
	for i := 1; i <= 4; i++ {
		p[i+1] = byte(((5-i)*x + i*y) / 5)
	}
	p[6], p[7] = 0, 255
	return p
}

func decodeAlpha(in []byte, out *[16]byte) {
	p := alphaPalette(in[0], in[1])
	var bits uint64
	for i := range 6 {
		bits |= uint64(in[2+i]) << (8 * i)
	}
	for i := range out {
		out[i] = p[bits>>(3*i)&7]
	}
}

// encodeAlpha writes a single-channel block in eight-value mode.
func encodeAlpha(out []byte, vals *[16]byte) {
	lo, hi := byte(255), byte(0)
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out[0], out[1] = hi, lo

	var bits uint64
	if hi != lo {
		p := alphaPalette(hi, lo)
		for i, v := range vals {
			best, bestDist := 0, 256
			for k, pv := range p {
				d := int(v) - int(pv)
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					best, bestDist = k, d
				}
			}
			bits |= uint64(best) << (3 * i)
		}
	}
	for i := range 6 {
		out[2+i] = byte(bits >> (8 * i))
	}
}
