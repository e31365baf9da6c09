package texstore

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gogpu/texstore/archive"
	"github.com/gogpu/texstore/internal/storage"
)

// maxPrealloc bounds the slice capacity reserved from an untrusted image
// count.
const maxPrealloc = 1024

// WriteTo writes the image: the storage payload, one flags byte with
// FlagHasRelevancyMap cleared and, for references, the little-endian
// uint32 reference ID. The relevancy range is not written.
func (i *Image) WriteTo(w io.Writer) (int64, error) {
	written, err := i.data.WriteTo(w)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 1, 5)
	buf[0] = byte(i.flags &^ FlagHasRelevancyMap)
	if i.IsReference() {
		buf = binary.LittleEndian.AppendUint32(buf, i.refID)
	}
	n, err := w.Write(buf)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("texstore: write flags: %w", err)
	}
	return written, nil
}

// ReadFrom replaces the image with one written by WriteTo. On error the
// image is left unchanged.
func (i *Image) ReadFrom(r io.Reader) (int64, error) {
	data := &storage.MipStorage{}
	read, err := data.ReadFrom(r)
	if err != nil {
		return read, err
	}

	var buf [4]byte
	n, err := io.ReadFull(r, buf[:1])
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("texstore: read flags: %w", err)
	}
	flags := Flags(buf[0])

	var id uint32
	if flags&FlagIsReference != 0 {
		if !data.IsVoid() {
			return read, fmt.Errorf("%w: reference with pixel data", ErrCorruptData)
		}
		n, err = io.ReadFull(r, buf[:])
		read += int64(n)
		if err != nil {
			return read, fmt.Errorf("texstore: read reference id: %w", err)
		}
		id = binary.LittleEndian.Uint32(buf[:])
	} else if flags&FlagIsForceLoad != 0 {
		return read, fmt.Errorf("%w: force-load flag on owned image", ErrCorruptData)
	}

	*i = Image{
		data:  data,
		flags: flags &^ FlagHasRelevancyMap,
		refID: id,
	}
	return read, nil
}

// ReadImage reads one image written by WriteTo.
func ReadImage(r io.Reader) (*Image, error) {
	img := &Image{}
	if _, err := img.ReadFrom(r); err != nil {
		return nil, err
	}
	return img, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (i *Image) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(i.DataSize() + 64)
	if _, err := i.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes are
// an error.
func (i *Image) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if _, err := i.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptData, r.Len())
	}
	return nil
}

// SaveArchive writes images to w inside an archive envelope: a
// little-endian uint32 count followed by each image.
func SaveArchive(w io.Writer, images []*Image, opts ...archive.Option) error {
	aw, err := archive.NewWriter(w, opts...)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(aw)

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(images)))
	if _, err := bw.Write(count[:]); err != nil {
		return fmt.Errorf("texstore: write archive: %w", err)
	}
	for n, img := range images {
		if _, err := img.WriteTo(bw); err != nil {
			return fmt.Errorf("texstore: write image %d: %w", n, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("texstore: write archive: %w", err)
	}
	return aw.Close()
}

// LoadArchive reads the images of an archive written by SaveArchive.
func LoadArchive(r io.Reader) ([]*Image, error) {
	ar, err := archive.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer ar.Close()
	br := bufio.NewReader(ar)

	var count [4]byte
	if _, err := io.ReadFull(br, count[:]); err != nil {
		return nil, fmt.Errorf("texstore: read archive: %w", err)
	}
	n := binary.LittleEndian.Uint32(count[:])

	images := make([]*Image, 0, min(n, maxPrealloc))
	for k := range n {
		img, err := ReadImage(br)
		if err != nil {
			return nil, fmt.Errorf("texstore: read image %d: %w", k, err)
		}
		images = append(images, img)
	}
	return images, nil
}
