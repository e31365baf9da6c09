package texstore

import (
	"errors"
	"fmt"

	"github.com/gogpu/texstore/internal/parallel"
	"github.com/gogpu/texstore/texfmt"
)

// BatchSizeInElems is the number of pixels, or blocks for block formats,
// that FillColor writes per batch.
const BatchSizeInElems = 16384

// Operator runs algorithms over images: fills, mip extraction and
// generation, placeholder creation and the conversion and resize services.
//
// An Operator holds no per-image state. It is safe for concurrent use as
// long as no two calls write the same image.
type Operator struct {
	scheduler Scheduler
	owned     *parallel.WorkerPool
	converter Converter
	resizer   Resizer
	pool      *Pool
	quality   int
}

// NewOperator creates an operator with the given options. Without options
// it runs everything on the calling goroutine.
func NewOperator(opts ...OperatorOption) *Operator {
	o := defaultOperatorOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sched, owned := o.newScheduler()
	return &Operator{
		scheduler: sched,
		owned:     owned,
		converter: o.converter,
		resizer:   o.resizer,
		pool:      o.pool,
		quality:   o.quality,
	}
}

// Close stops the worker pool started by WithWorkers. It is a no-op for
// other operators.
func (o *Operator) Close() {
	if o.owned != nil {
		o.owned.Close()
	}
}

func (o *Operator) forEach(n int, fn func(i int)) {
	if o.scheduler == nil || n < 2 {
		for i := range n {
			fn(i)
		}
		return
	}
	o.scheduler.ForEach(n, fn)
}

func (o *Operator) temp(desc texfmt.Desc) (*Image, error) {
	if o.pool != nil {
		return o.pool.Get(desc, NotInitialized)
	}
	return NewFromDesc(desc, NotInitialized)
}

func (o *Operator) release(img *Image) {
	if o.pool != nil {
		o.pool.Put(img)
	}
}

// PixelFormat converts src to target through the configured converter.
func (o *Operator) PixelFormat(quality int, src *Image, target texfmt.Format) (*Image, error) {
	return o.converter.PixelFormat(quality, src, target)
}

// ResizeLinear resamples src into dst through the configured resizer.
func (o *Operator) ResizeLinear(dst *Image, quality int, src *Image) error {
	return o.resizer.ResizeLinear(dst, quality, src)
}

// ExtractMip returns a single-level image holding mip level mip of img.
//
// Level 0 of a single-level image is a full copy. A stored level is copied
// byte for byte; when the stored length differs from the computed one, as
// for run-length encoded formats, the new level takes the stored length.
// Levels past the stored chain are synthesized by resizing level 0.
func (o *Operator) ExtractMip(img *Image, mip int) (*Image, error) {
	if img.IsReference() || img.IsVoid() {
		return nil, fmt.Errorf("%w: extract mip from %s", ErrReference, img)
	}
	if mip < 0 {
		return nil, fmt.Errorf("%w: mip %d", ErrLODOutOfRange, mip)
	}
	if mip == 0 && img.LODCount() == 1 {
		return img.Clone(), nil
	}

	size := img.MipSize(mip)
	dst, err := New(int(size.X), int(size.Y), 1, img.Format(), NotInitialized)
	if err != nil {
		return nil, err
	}

	if mip < img.LODCount() {
		src, err := img.LODData(mip)
		if err != nil {
			return nil, err
		}
		if len(src) != dst.LODDataSize(0) {
			if err := dst.data.ResizeLOD(0, len(src)); err != nil {
				return nil, err
			}
		}
		out, _ := dst.LODData(0)
		copy(out, src)
		return dst, nil
	}

	Logger().Debug("synthesize mip", "image", img.String(), "mip", mip, "size", fmt.Sprintf("%dx%d", size.X, size.Y))
	if err := o.resizer.ResizeLinear(dst, o.quality, img); err != nil {
		return nil, fmt.Errorf("texstore: extract mip %d: %w", mip, err)
	}
	return dst, nil
}

// FillColor sets every pixel of every level of img to c.
//
// L, RGB, RGBA and BGRA are packed directly. Other formats with a fixed
// block size get one block encoded through the converter, which is then
// repeated over the storage. Channels are quantized with truncation.
func (o *Operator) FillColor(img *Image, c Color) error {
	if img.IsReference() || img.IsVoid() {
		return fmt.Errorf("%w: fill %s", ErrReference, img)
	}

	elem, ok := pattern(img.Format(), c)
	path := "pixel"
	if !ok {
		var err error
		if elem, err = o.encodeBlock(img.Format(), c); err != nil {
			return err
		}
		path = "block"
	}

	n := img.data.NumBatches(BatchSizeInElems, len(elem))
	Logger().Debug("fill color", "image", img.String(), "path", path, "batches", n)

	o.forEach(n, func(i int) {
		fillPattern(img.data.Batch(i, BatchSizeInElems, len(elem)), elem)
	})
	return nil
}

// encodeBlock returns one block of format f filled with c.
func (o *Operator) encodeBlock(f texfmt.Format, c Color) ([]byte, error) {
	d := f.Data()
	if d.BytesPerBlock == 0 {
		return nil, fmt.Errorf("%w: fill %s", ErrUnsupportedFormat, f)
	}

	block, err := o.temp(texfmt.Desc{
		Size:    texfmt.Size{X: uint16(d.PixelsPerBlockX), Y: uint16(d.PixelsPerBlockY)},
		Format:  texfmt.FormatRGBAUByte,
		NumLODs: 1,
	})
	if err != nil {
		return nil, err
	}
	defer o.release(block)

	px, _ := pattern(texfmt.FormatRGBAUByte, c)
	raw, _ := block.LODData(0)
	fillPattern(raw, px)

	enc, err := o.converter.PixelFormat(o.quality, block, f)
	if err != nil {
		return nil, fmt.Errorf("texstore: fill %s: %w", f, err)
	}
	out, err := enc.LODData(0)
	if err != nil {
		return nil, err
	}
	if len(out) != d.BytesPerBlock {
		return nil, fmt.Errorf("%w: %s block is %d bytes, want %d",
			ErrCorruptData, f, len(out), d.BytesPerBlock)
	}
	return out, nil
}

// fillPattern repeats elem over b. len(b) must be a multiple of len(elem).
func fillPattern(b, elem []byte) {
	if len(b) == 0 {
		return
	}

	same := true
	for _, v := range elem[1:] {
		if v != elem[0] {
			same = false
			break
		}
	}
	switch {
	case same && elem[0] == 0:
		clear(b)
	case same:
		v := elem[0]
		for i := range b {
			b[i] = v
		}
	default:
		// Two elements per copy, then the odd one.
		var pair [32]byte
		n := copy(pair[:], elem)
		copy(pair[n:], elem)
		step := 2 * len(elem)
		off := 0
		for ; off+step <= len(b); off += step {
			copy(b[off:], pair[:step])
		}
		copy(b[off:], elem)
	}
}

// PlainColorImage returns a new image filled with c. A lods of 0 builds the
// full mip chain.
func (o *Operator) PlainColorImage(width, height, lods int, f texfmt.Format, c Color) (*Image, error) {
	if lods == 0 {
		lods = max(texfmt.MipmapCount(width, height), 1)
	}
	img, err := New(width, height, lods, f, NotInitialized)
	if err != nil {
		return nil, err
	}
	if err := o.FillColor(img, c); err != nil {
		return nil, err
	}
	return img, nil
}

// Placeholder returns an image laid out by desc and filled with
// PlaceholderColor. Formats that cannot be filled fall back to the format
// they decode to.
func (o *Operator) Placeholder(desc texfmt.Desc) (*Image, error) {
	w, h, lods := int(desc.Size.X), int(desc.Size.Y), desc.LODCount()
	img, err := o.PlainColorImage(w, h, lods, desc.Format, PlaceholderColor)
	if errors.Is(err, ErrUnsupportedFormat) {
		f := texfmt.Uncompressed(desc.Format)
		if f == texfmt.FormatNone {
			f = texfmt.FormatRGBAUByte
		}
		Logger().Debug("placeholder fallback", "format", desc.Format.String(), "fallback", f.String())
		return o.PlainColorImage(w, h, lods, f, PlaceholderColor)
	}
	return img, err
}

// GenerateMips rebuilds img with n levels, computing levels 1 to n-1 from
// level 0 with the resizer. n <= 0 or past the full chain builds the full
// chain.
func (o *Operator) GenerateMips(img *Image, n int) error {
	if img.IsReference() || img.IsVoid() {
		return fmt.Errorf("%w: generate mips for %s", ErrReference, img)
	}
	if img.Format().Data().BytesPerBlock == 0 {
		return fmt.Errorf("%w: generate mips for %s", ErrUnsupportedFormat, img.Format())
	}

	full := max(texfmt.MipmapCount(int(img.SizeX()), int(img.SizeY())), 1)
	if n <= 0 || n > full {
		n = full
	}
	img.data.SetNumLODs(n)
	if n == 1 {
		return nil
	}

	Logger().Debug("generate mips", "image", img.String(), "lods", n)

	errs := make([]error, n-1)
	o.forEach(n-1, func(i int) {
		errs[i] = o.buildMip(img, i+1)
	})
	return errors.Join(errs...)
}

// buildMip resizes level 0 of img into level l. Level l and level 0 are
// disjoint so levels may be built concurrently.
func (o *Operator) buildMip(img *Image, l int) error {
	tmp, err := o.temp(texfmt.Desc{Size: img.MipSize(l), Format: img.Format(), NumLODs: 1})
	if err != nil {
		return err
	}
	defer o.release(tmp)

	if err := o.resizer.ResizeLinear(tmp, o.quality, img); err != nil {
		return fmt.Errorf("texstore: mip %d: %w", l, err)
	}
	src, _ := tmp.LODData(0)
	dst, err := img.LODData(l)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}
