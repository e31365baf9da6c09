// Command texstore imports, inspects, fills and exports texture archives.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/gogpu/texstore"
)

// CLI is the command line of texstore.
type CLI struct {
	Verbose bool `help:"Log debug records to stderr." short:"v"`

	Import importCmd `cmd:"" help:"Convert a PNG, JPEG, GIF, BMP, TIFF or WebP file into an archive."`
	Info   infoCmd   `cmd:"" help:"Describe the images of an archive."`
	Fill   fillCmd   `cmd:"" help:"Write an archive holding one plain color image."`
	Export exportCmd `cmd:"" help:"Write one mip of an archived image as PNG."`
}

// AfterApply installs the logger before any command runs.
func (c *CLI) AfterApply() error {
	if c.Verbose {
		texstore.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("texstore"),
		kong.Description("Mipmapped texture archive tool."),
		kong.UsageOnError(),
	)

	op := texstore.NewOperator(texstore.WithWorkers(0))
	defer op.Close()

	if err := kctx.Run(&cli, op); err != nil {
		slog.Error("command failed", "cmd", kctx.Command(), "error", err)
		op.Close()
		os.Exit(1)
	}
}
