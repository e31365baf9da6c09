package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	_ "github.com/nigeltao/etc2/lib/pkm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/archive"
	"github.com/gogpu/texstore/internal/stdimg"
	"github.com/gogpu/texstore/texfmt"
)

// archiveParams are shared by the commands that write archives.
type archiveParams struct {
	Output string `help:"Destination archive." short:"o" required:"" type:"path"`
	Zstd   string `help:"Compress with zstd at this level (fastest, default, better, best)." placeholder:"LEVEL"`
}

func (p archiveParams) save(images ...*texstore.Image) (err error) {
	var opts []archive.Option
	if p.Zstd != "" {
		ok, level := zstd.EncoderLevelFromString(p.Zstd)
		if !ok {
			return fmt.Errorf("unknown zstd level %q", p.Zstd)
		}
		opts = append(opts, archive.WithZstd(level))
	}

	f, err := os.Create(p.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return texstore.SaveArchive(f, images, opts...)
}

func loadArchive(path string) ([]*texstore.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return texstore.LoadArchive(f)
}

type importCmd struct {
	Source string `arg:"" help:"Source image." type:"existingfile"`
	Format string `help:"Stored pixel format." default:"RGBA_UByte"`
	Mips   int    `help:"Number of mip levels, 0 for the full chain." default:"1"`

	archiveParams
}

func (c *importCmd) Run(op *texstore.Operator) error {
	format, err := texfmt.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Source)
	if err != nil {
		return err
	}
	src, kind, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.Source, err)
	}
	nrgba := stdimg.ToNRGBA(src)

	img, err := texstore.New(nrgba.Rect.Dx(), nrgba.Rect.Dy(), 1, texfmt.FormatRGBAUByte, texstore.NotInitialized)
	if err != nil {
		return err
	}
	lod, _ := img.LODData(0)
	if err := stdimg.Pack(lod, nrgba, texfmt.FormatRGBAUByte); err != nil {
		return err
	}

	if c.Mips != 1 {
		if err := op.GenerateMips(img, c.Mips); err != nil {
			return err
		}
	}
	if format != img.Format() {
		if img, err = op.PixelFormat(0, img, format); err != nil {
			return err
		}
	}

	texstore.Logger().Info("imported", "source", c.Source, "kind", kind, "image", img.String())
	return c.save(img)
}

type infoCmd struct {
	File string `arg:"" help:"Archive to describe." type:"existingfile"`
}

func (c *infoCmd) Run() error {
	images, err := loadArchive(c.File)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s: %d images\n", c.File, len(images))
	for i, img := range images {
		p.Printf("#%d %s, %d bytes", i, img.String(), img.DataSize())
		if img.IsReference() {
			p.Printf(", reference %d", img.ReferenceID())
			if img.IsForceLoad() {
				p.Printf(" (force load)")
			}
			p.Printf("\n")
			continue
		}
		if col, ok := img.PlainColor(); ok {
			b := col.Bytes()
			p.Printf(", plain #%02x%02x%02x%02x", b[0], b[1], b[2], b[3])
		}
		if img.IsFullAlpha() {
			p.Printf(", opaque")
		}
		if r, err := img.NonBlackRect(); err == nil {
			p.Printf(", content %dx%d+%d+%d", r.SizeX, r.SizeY, r.MinX, r.MinY)
		}
		p.Printf("\n")
	}
	return nil
}

type fillCmd struct {
	Size   string `help:"Image size as WIDTHxHEIGHT." default:"256x256"`
	Format string `help:"Pixel format." default:"RGBA_UByte"`
	Color  string `help:"Color as comma-separated R,G,B,A in [0, 1]." default:"1,0,1,1"`
	LODs   int    `name:"lods" help:"Number of mip levels, 0 for the full chain." default:"1"`

	archiveParams
}

func (c *fillCmd) Run(op *texstore.Operator) error {
	w, h, err := parseSize(c.Size)
	if err != nil {
		return err
	}
	col, err := parseColor(c.Color)
	if err != nil {
		return err
	}
	format, err := texfmt.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	img, err := op.PlainColorImage(w, h, c.LODs, format, col)
	if err != nil {
		return err
	}
	return c.save(img)
}

type exportCmd struct {
	File   string `arg:"" help:"Source archive." type:"existingfile"`
	Output string `help:"Destination PNG." short:"o" required:"" type:"path"`
	Index  int    `help:"Image index in the archive." default:"0"`
	Mip    int    `help:"Mip level to export." default:"0"`
}

func (c *exportCmd) Run(op *texstore.Operator) (err error) {
	images, err := loadArchive(c.File)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(images) {
		return fmt.Errorf("index %d out of range, archive has %d images", c.Index, len(images))
	}

	img, err := op.ExtractMip(images[c.Index], c.Mip)
	if err != nil {
		return err
	}
	if !stdimg.Supported(img.Format()) {
		if img, err = op.PixelFormat(0, img, texfmt.FormatRGBAUByte); err != nil {
			return err
		}
	}

	lod, _ := img.LODData(0)
	out, err := stdimg.ToImage(lod, int(img.SizeX()), int(img.SizeY()), img.Format())
	if err != nil {
		return err
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, out)
}

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	if w, err = strconv.Atoi(ws); err == nil {
		h, err = strconv.Atoi(hs)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return w, h, nil
}

func parseColor(s string) (texstore.Color, error) {
	var c texstore.Color
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return c, errors.New("color needs four comma-separated channels")
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return c, fmt.Errorf("invalid color channel %q: %w", p, err)
		}
		c[i] = float32(v)
	}
	return c, nil
}
