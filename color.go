package texstore

// Color is a non-premultiplied RGBA color with channels in [0, 1].
type Color [4]float32

// PlaceholderColor fills images created by Operator.Placeholder.
var PlaceholderColor = Color{1, 0, 1, 1}

// quantize converts a channel to a byte. The product is truncated, not
// rounded, and NaN maps to 0.
func quantize(c float32) byte {
	v := 255 * c
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// Bytes returns the quantized channels.
func (c Color) Bytes() [4]byte {
	return [4]byte{quantize(c[0]), quantize(c[1]), quantize(c[2]), quantize(c[3])}
}

// ColorFromBytes converts 8-bit channels to a Color.
func ColorFromBytes(r, g, b, a byte) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}
