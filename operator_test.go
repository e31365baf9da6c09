package texstore

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/texstore/internal/parallel"
	"github.com/gogpu/texstore/texfmt"
)

func TestFillColor_RGBA2x2(t *testing.T) {
	img := mustNew(t, 2, 2, 1, texfmt.FormatRGBAUByte, NotInitialized)
	if err := NewOperator().FillColor(img, Color{1, 0, 0, 1}); err != nil {
		t.Fatalf("FillColor() error = %v", err)
	}
	got, _ := img.LODData(0)
	want := bytes.Repeat([]byte{255, 0, 0, 255}, 4)
	if !bytes.Equal(got, want) {
		t.Errorf("LOD 0 = %v, want %v", got, want)
	}
}

func TestFillColor_Formats(t *testing.T) {
	colors := []Color{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.5, 0.5, 0.5},
		{1, 0, 0, 1},
		{0.1, 0.7, 0.3, 0.9},
	}
	formats := []texfmt.Format{
		texfmt.FormatLUByte,
		texfmt.FormatRGBUByte,
		texfmt.FormatRGBAUByte,
		texfmt.FormatBGRAUByte,
	}
	op := NewOperator()

	for _, f := range formats {
		for _, c := range colors {
			t.Run(f.String(), func(t *testing.T) {
				img := mustNew(t, 37, 21, texfmt.MipmapCount(37, 21), f, NotInitialized)
				if err := op.FillColor(img, c); err != nil {
					t.Fatalf("FillColor() error = %v", err)
				}

				px, _ := pattern(f, c)
				for l := range img.LODCount() {
					data, _ := img.LODData(l)
					if !bytes.Equal(data, bytes.Repeat(px, len(data)/len(px))) {
						t.Fatalf("LOD %d is not uniform %v", l, px)
					}
				}

				got, ok := img.PlainColor()
				if !ok {
					t.Fatal("PlainColor() = false after FillColor")
				}
				want := c
				if f == texfmt.FormatLUByte {
					want = Color{c[0], c[0], c[0], 1}
				} else if !f.HasAlpha() {
					want[3] = 1
				}
				if !colorNear(got, want, 1.0/255+1e-6) {
					t.Errorf("PlainColor() = %v, want about %v", got, want)
				}

				before, _ := img.MarshalBinary()
				if err := op.FillColor(img, c); err != nil {
					t.Fatalf("second FillColor() error = %v", err)
				}
				if after, _ := img.MarshalBinary(); !bytes.Equal(before, after) {
					t.Error("second FillColor changed the bytes")
				}
			})
		}
	}
}

func TestFillColor_LargeBatches(t *testing.T) {
	// 3 bytes per pixel and more than one batch per level.
	img := mustNew(t, 300, 200, 3, texfmt.FormatRGBUByte, NotInitialized)
	op := NewOperator(WithWorkers(4))
	defer op.Close()

	if n := img.data.NumBatches(BatchSizeInElems, 3); n < 4 {
		t.Fatalf("NumBatches() = %d, want several", n)
	}
	if err := op.FillColor(img, Color{0.2, 0.4, 0.6, 1}); err != nil {
		t.Fatalf("FillColor() error = %v", err)
	}
	for l := range img.LODCount() {
		data, _ := img.LODData(l)
		for i := 0; i < len(data); i += 3 {
			if data[i] != 51 || data[i+1] != 102 || data[i+2] != 153 {
				t.Fatalf("LOD %d pixel %d = %v", l, i/3, data[i:i+3])
			}
		}
	}
}

type countingScheduler struct {
	calls atomic.Int32
	pool  *parallel.WorkerPool
}

func (s *countingScheduler) ForEach(n int, fn func(i int)) {
	s.calls.Add(1)
	s.pool.ForEach(n, fn)
}

func TestFillColor_Scheduler(t *testing.T) {
	wp := parallel.NewWorkerPool(2)
	defer wp.Close()
	sched := &countingScheduler{pool: wp}

	op := NewOperator(WithScheduler(sched))
	img := mustNew(t, 256, 256, 1, texfmt.FormatRGBAUByte, NotInitialized)
	if err := op.FillColor(img, Color{0, 1, 0, 1}); err != nil {
		t.Fatalf("FillColor() error = %v", err)
	}
	if sched.calls.Load() != 1 {
		t.Errorf("scheduler called %d times, want 1", sched.calls.Load())
	}
	if c, ok := img.PlainColor(); !ok || c != (Color{0, 1, 0, 1}) {
		t.Errorf("PlainColor() = %v, %v", c, ok)
	}
}

func TestFillColor_BlockFormats(t *testing.T) {
	tests := []struct {
		format texfmt.Format
		color  Color
		tol    float32
	}{
		{texfmt.FormatBC1, Color{1, 0, 0, 1}, 0},
		{texfmt.FormatBC2, Color{0, 0, 1, 0.2}, 0.04},
		{texfmt.FormatBC3, Color{0, 1, 1, 0.5}, 0.01},
		{texfmt.FormatBC4, Color{0.6, 0.6, 0.6, 1}, 0.01},
		{texfmt.FormatETC1, Color{0, 1, 0, 1}, 0.05},
		{texfmt.FormatASTC4x4RGBALDR, Color{1, 0.5, 0, 0.5}, 0.01},
		{texfmt.FormatASTC6x6RGBALDR, Color{0.25, 0.75, 1, 1}, 0.01},
		{texfmt.FormatASTC8x8RGBLDR, Color{0.2, 0.4, 0.8, 1}, 0.01},
	}
	op := NewOperator()
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			img := mustNew(t, 10, 6, 3, tt.format, Black)
			if err := op.FillColor(img, tt.color); err != nil {
				t.Fatalf("FillColor() error = %v", err)
			}

			blockBytes := tt.format.Data().BytesPerBlock
			lod0, _ := img.LODData(0)
			first := lod0[:blockBytes]
			for l := range img.LODCount() {
				data, _ := img.LODData(l)
				for off := 0; off < len(data); off += blockBytes {
					if !bytes.Equal(data[off:off+blockBytes], first) {
						t.Fatalf("LOD %d block at %d differs", l, off)
					}
				}
			}

			dec, err := op.PixelFormat(0, img, texfmt.FormatRGBAUByte)
			if err != nil {
				t.Fatalf("PixelFormat() error = %v", err)
			}
			got, err := dec.Sample(0.5, 0.5)
			if err != nil {
				t.Fatalf("Sample() error = %v", err)
			}
			want := tt.color
			if tt.format == texfmt.FormatETC1 || tt.format == texfmt.FormatBC4 {
				want[3] = 1
			}
			if !colorNear(got, want, tt.tol+1.0/255) {
				t.Errorf("decoded = %v, want about %v", got, want)
			}
		})
	}
}

func TestFillColor_Errors(t *testing.T) {
	op := NewOperator()

	ref := NewReference(1, texfmt.Desc{Size: texfmt.Size{X: 4, Y: 4}, Format: texfmt.FormatRGBAUByte}, false)
	if err := op.FillColor(ref, Color{}); !errors.Is(err, ErrReference) {
		t.Errorf("reference error = %v, want ErrReference", err)
	}

	for _, f := range []texfmt.Format{texfmt.FormatRGBAUByteRLE, texfmt.FormatBC7, texfmt.FormatNone} {
		img := mustNew(t, 4, 4, 1, f, Black)
		if err := op.FillColor(img, Color{1, 1, 1, 1}); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s error = %v, want ErrUnsupportedFormat", f, err)
		}
	}

	empty := mustNew(t, 0, 0, 1, texfmt.FormatRGBAUByte, Black)
	if err := op.FillColor(empty, Color{1, 1, 1, 1}); err != nil {
		t.Errorf("empty image error = %v", err)
	}
}

func TestFillPattern(t *testing.T) {
	tests := []struct {
		name string
		elem []byte
		n    int
	}{
		{"zero", []byte{0, 0, 0, 0}, 5},
		{"memset", []byte{7, 7, 7}, 4},
		{"even pixels", []byte{1, 2, 3, 4}, 6},
		{"odd pixels", []byte{1, 2, 3}, 7},
		{"single", []byte{9, 8}, 1},
		{"block", bytes.Repeat([]byte{1, 2, 3, 4}, 4), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bytes.Repeat([]byte{0xEE}, len(tt.elem)*tt.n)
			fillPattern(b, tt.elem)
			if want := bytes.Repeat(tt.elem, tt.n); !bytes.Equal(b, want) {
				t.Errorf("fillPattern() = %v, want %v", b, want)
			}
		})
	}
}

func TestExtractMip(t *testing.T) {
	op := NewOperator()
	img := mustNew(t, 16, 8, 4, texfmt.FormatRGBAUByte, NotInitialized)
	for l := range img.LODCount() {
		data, _ := img.LODData(l)
		for i := range data {
			data[i] = byte(i*7 + l)
		}
	}

	for l := range img.LODCount() {
		got, err := op.ExtractMip(img, l)
		if err != nil {
			t.Fatalf("ExtractMip(%d) error = %v", l, err)
		}
		if got.LODCount() != 1 {
			t.Errorf("ExtractMip(%d) has %d lods", l, got.LODCount())
		}
		if got.Size() != img.MipSize(l) {
			t.Errorf("ExtractMip(%d) size = %v, want %v", l, got.Size(), img.MipSize(l))
		}
		want, _ := img.LODData(l)
		data, _ := got.LODData(0)
		if !bytes.Equal(data, want) {
			t.Errorf("ExtractMip(%d) bytes differ", l)
		}
	}
}

func TestExtractMip_SingleLevelCopy(t *testing.T) {
	op := NewOperator()
	img := mustNew(t, 3, 3, 1, texfmt.FormatRGBUByte, Black)
	img.SetFlags(FlagCannotBeScaled)

	got, err := op.ExtractMip(img, 0)
	if err != nil {
		t.Fatalf("ExtractMip() error = %v", err)
	}
	if got == img {
		t.Fatal("ExtractMip returned the source image")
	}
	if got.Flags() != img.Flags() || got.Desc() != img.Desc() {
		t.Errorf("copy = %s flags %#x, want %s flags %#x", got, got.Flags(), img, img.Flags())
	}
}

func TestExtractMip_VariableSize(t *testing.T) {
	img := mustNew(t, 8, 8, 2, texfmt.FormatRGBAUByteRLE, Black)
	if err := img.data.ResizeLOD(1, 13); err != nil {
		t.Fatalf("ResizeLOD() error = %v", err)
	}
	src, _ := img.LODData(1)
	for i := range src {
		src[i] = byte(i + 1)
	}

	got, err := NewOperator().ExtractMip(img, 1)
	if err != nil {
		t.Fatalf("ExtractMip() error = %v", err)
	}
	data, _ := got.LODData(0)
	if !bytes.Equal(data, src) {
		t.Errorf("ExtractMip() = %v, want %v", data, src)
	}
}

func TestExtractMip_Synthesized(t *testing.T) {
	op := NewOperator()
	img, err := op.PlainColorImage(16, 16, 1, texfmt.FormatRGBAUByte, Color{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("PlainColorImage() error = %v", err)
	}

	got, err := op.ExtractMip(img, 2)
	if err != nil {
		t.Fatalf("ExtractMip() error = %v", err)
	}
	if got.Size() != (texfmt.Size{X: 4, Y: 4}) || got.LODCount() != 1 {
		t.Fatalf("ExtractMip() = %s, want 4x4 with one lod", got)
	}
	if c, ok := got.PlainColor(); !ok || !colorNear(c, Color{0, 0, 1, 1}, 1.0/255) {
		t.Errorf("PlainColor() = %v, %v, want blue", c, ok)
	}
}

func TestExtractMip_Errors(t *testing.T) {
	op := NewOperator()
	img := mustNew(t, 4, 4, 1, texfmt.FormatRGBAUByte, Black)
	if _, err := op.ExtractMip(img, -1); !errors.Is(err, ErrLODOutOfRange) {
		t.Errorf("negative mip error = %v", err)
	}
	ref := NewReference(2, img.Desc(), false)
	if _, err := op.ExtractMip(ref, 0); !errors.Is(err, ErrReference) {
		t.Errorf("reference error = %v", err)
	}
}

func TestPlainColorImage(t *testing.T) {
	op := NewOperator()
	img, err := op.PlainColorImage(64, 16, 0, texfmt.FormatBGRAUByte, Color{1, 0.5, 0, 1})
	if err != nil {
		t.Fatalf("PlainColorImage() error = %v", err)
	}
	if img.LODCount() != 7 {
		t.Errorf("LODCount() = %d, want 7", img.LODCount())
	}
	last, _ := img.LODData(img.LODCount() - 1)
	if !bytes.Equal(last, []byte{0, 127, 255, 255}) {
		t.Errorf("last level = %v", last)
	}
}

func TestPlaceholder(t *testing.T) {
	op := NewOperator()
	tests := []struct {
		name       string
		desc       texfmt.Desc
		wantFormat texfmt.Format
	}{
		{"rgba", texfmt.Desc{Size: texfmt.Size{X: 8, Y: 8}, Format: texfmt.FormatRGBAUByte, NumLODs: 2}, texfmt.FormatRGBAUByte},
		{"bc1", texfmt.Desc{Size: texfmt.Size{X: 8, Y: 8}, Format: texfmt.FormatBC1, NumLODs: 1}, texfmt.FormatBC1},
		{"astc keeps format", texfmt.Desc{Size: texfmt.Size{X: 8, Y: 8}, Format: texfmt.FormatASTC4x4RGBALDR, NumLODs: 2}, texfmt.FormatASTC4x4RGBALDR},
		{"bc7 falls back", texfmt.Desc{Size: texfmt.Size{X: 8, Y: 8}, Format: texfmt.FormatBC7, NumLODs: 1}, texfmt.FormatRGBAUByte},
		{"rle falls back", texfmt.Desc{Size: texfmt.Size{X: 4, Y: 4}, Format: texfmt.FormatRGBUByteRLE}, texfmt.FormatRGBUByte},
		{"none falls back", texfmt.Desc{Size: texfmt.Size{X: 4, Y: 4}, Format: texfmt.FormatNone}, texfmt.FormatRGBAUByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := op.Placeholder(tt.desc)
			if err != nil {
				t.Fatalf("Placeholder() error = %v", err)
			}
			if img.Format() != tt.wantFormat {
				t.Errorf("Format() = %s, want %s", img.Format(), tt.wantFormat)
			}
			if img.Size() != tt.desc.Size || img.LODCount() != tt.desc.LODCount() {
				t.Errorf("Placeholder() = %s, want layout of %+v", img, tt.desc)
			}
			if img.Format().IsBlockCompressed() {
				return
			}
			if c, ok := img.PlainColor(); !ok || c != PlaceholderColor {
				t.Errorf("PlainColor() = %v, %v, want magenta", c, ok)
			}
		})
	}
}

func TestGenerateMips(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		n        int
		format   texfmt.Format
		wantLODs int
	}{
		{"full chain", 32, 8, 0, texfmt.FormatRGBAUByte, 6},
		{"limited", 32, 32, 3, texfmt.FormatLUByte, 3},
		{"clamped", 4, 4, 20, texfmt.FormatRGBUByte, 3},
		{"odd", 5, 3, 0, texfmt.FormatRGBAUByte, 3},
		{"bc1", 16, 16, 0, texfmt.FormatBC1, 5},
		{"single pixel", 1, 1, 0, texfmt.FormatRGBAUByte, 1},
	}
	for _, workers := range []int{0, 3} {
		var opts []OperatorOption
		if workers > 0 {
			opts = append(opts, WithWorkers(workers), WithImagePool(NewPool(4)))
		}
		op := NewOperator(opts...)
		defer op.Close()

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				img, err := op.PlainColorImage(tt.w, tt.h, 1, tt.format, Color{1, 1, 1, 1})
				if err != nil {
					t.Fatalf("PlainColorImage() error = %v", err)
				}
				if err := op.GenerateMips(img, tt.n); err != nil {
					t.Fatalf("GenerateMips() error = %v", err)
				}
				if img.LODCount() != tt.wantLODs {
					t.Fatalf("LODCount() = %d, want %d", img.LODCount(), tt.wantLODs)
				}
				if img.DataSize() != img.Desc().DataSize() {
					t.Errorf("DataSize() = %d, want %d", img.DataSize(), img.Desc().DataSize())
				}
				if img.Format().IsBlockCompressed() {
					return
				}
				for l := range img.LODCount() {
					mip, err := op.ExtractMip(img, l)
					if err != nil {
						t.Fatalf("ExtractMip(%d) error = %v", l, err)
					}
					if c, ok := mip.PlainColor(); !ok || !colorNear(c, Color{1, 1, 1, 1}, 1.0/255) {
						t.Errorf("mip %d PlainColor() = %v, %v, want white", l, c, ok)
					}
				}
			})
		}
	}
}

func TestGenerateMips_Errors(t *testing.T) {
	op := NewOperator()
	ref := NewReference(1, texfmt.Desc{Size: texfmt.Size{X: 4, Y: 4}, Format: texfmt.FormatRGBAUByte}, false)
	if err := op.GenerateMips(ref, 0); !errors.Is(err, ErrReference) {
		t.Errorf("reference error = %v", err)
	}
	rle := mustNew(t, 4, 4, 1, texfmt.FormatLUByteRLE, Black)
	if err := op.GenerateMips(rle, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("rle error = %v", err)
	}

	failing := NewOperator(WithResizer(ResizerFunc(func(*Image, int, *Image) error {
		return errors.New("boom")
	})))
	img := mustNew(t, 8, 8, 1, texfmt.FormatRGBAUByte, Black)
	if err := failing.GenerateMips(img, 0); err == nil {
		t.Error("GenerateMips() with a failing resizer returned nil")
	}
}

func TestOperatorOptions(t *testing.T) {
	var converted, resized bool
	conv := ConverterFunc(func(q int, src *Image, f texfmt.Format) (*Image, error) {
		converted = true
		if q != 3 {
			t.Errorf("quality = %d, want 3", q)
		}
		return CodecConverter{}.PixelFormat(q, src, f)
	})
	rs := ResizerFunc(func(dst *Image, q int, src *Image) error {
		resized = true
		return LinearResizer{}.ResizeLinear(dst, q, src)
	})

	op := NewOperator(WithConverter(conv), WithResizer(rs), WithQuality(3), WithConverter(nil))
	img := mustNew(t, 8, 8, 1, texfmt.FormatBC1, Black)
	if err := op.FillColor(img, Color{1, 1, 1, 1}); err != nil {
		t.Fatalf("FillColor() error = %v", err)
	}
	if !converted {
		t.Error("custom converter not used")
	}
	if _, err := op.ExtractMip(img, 1); err != nil {
		t.Fatalf("ExtractMip() error = %v", err)
	}
	if !resized {
		t.Error("custom resizer not used")
	}
}

func TestOperatorWorkersClose(t *testing.T) {
	op := NewOperator(WithWorkers(2))
	if op.owned == nil || !op.owned.IsRunning() {
		t.Fatal("WithWorkers did not start a pool")
	}
	op.Close()
	if op.owned.IsRunning() {
		t.Error("Close did not stop the pool")
	}

	// The closed pool runs work inline.
	img := mustNew(t, 64, 64, 1, texfmt.FormatLUByte, NotInitialized)
	if err := op.FillColor(img, Color{1, 1, 1, 1}); err != nil {
		t.Fatalf("FillColor() after Close error = %v", err)
	}
}

func BenchmarkFillColor(b *testing.B) {
	img := mustNew(b, 1024, 1024, 1, texfmt.FormatRGBAUByte, NotInitialized)
	op := NewOperator()
	b.SetBytes(int64(img.DataSize()))
	b.ReportAllocs()
	for b.Loop() {
		_ = op.FillColor(img, Color{0.2, 0.4, 0.6, 1})
	}
}

func BenchmarkFillColorParallel(b *testing.B) {
	img := mustNew(b, 1024, 1024, 1, texfmt.FormatRGBAUByte, NotInitialized)
	op := NewOperator(WithWorkers(0))
	defer op.Close()
	b.SetBytes(int64(img.DataSize()))
	b.ReportAllocs()
	for b.Loop() {
		_ = op.FillColor(img, Color{0.2, 0.4, 0.6, 1})
	}
}
