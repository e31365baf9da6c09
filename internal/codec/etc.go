package codec

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/nigeltao/etc2/lib/etc2"
	"github.com/nigeltao/etc2/lib/pkm"

	"github.com/gogpu/texstore/internal/stdimg"
	"github.com/gogpu/texstore/texfmt"
)

// etcKind maps a format to the etc2 encoder format and the PKM header
// version and format bytes.
type etcKind struct {
	format  etc2.Format
	version byte
	pkmType byte
}

func etcFormat(f texfmt.Format) (etcKind, bool) {
	switch f {
	case texfmt.FormatETC1:
		return etcKind{etc2.FormatETC1, 0x31, 0x00}, true
	case texfmt.FormatETC2:
		return etcKind{etc2.FormatETC2RGB, 0x32, 0x01}, true
	default:
		return etcKind{}, false
	}
}

func encodeETC(dst []byte, src *image.NRGBA, f texfmt.Format) error {
	k, _ := etcFormat(f)

	buf := bytes.NewBuffer(make([]byte, 0, len(dst)))
	if err := etc2.Encode(buf, src, k.format, nil); err != nil {
		return fmt.Errorf("codec: encode %s: %w", f, err)
	}
	if buf.Len() != len(dst) {
		return fmt.Errorf("codec: encode %s: produced %d bytes, want %d", f, buf.Len(), len(dst))
	}
	copy(dst, buf.Bytes())
	return nil
}

// decodeETC wraps the raw blocks in a PKM header and lets the pkm decoder
// expand them.
func decodeETC(src []byte, width, height int, f texfmt.Format) (*image.NRGBA, error) {
	k, _ := etcFormat(f)

	var hdr [16]byte
	copy(hdr[:4], pkm.Magic)
	hdr[4] = k.version
	hdr[5] = 0x30
	hdr[7] = k.pkmType

	rw, rh := (width+3)&^3, (height+3)&^3
	hdr[8], hdr[9] = byte(rw>>8), byte(rw)
	hdr[10], hdr[11] = byte(rh>>8), byte(rh)
	hdr[12], hdr[13] = byte(width>>8), byte(width)
	hdr[14], hdr[15] = byte(height>>8), byte(height)

	m, err := pkm.Decode(io.MultiReader(bytes.NewReader(hdr[:]), bytes.NewReader(src)))
	if err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", f, err)
	}
	return stdimg.ToNRGBA(m), nil
}
