// Command paintbynum converts photographs into paint-by-numbers templates.
//
//	paintbynum convert photo.jpg -o template --colors 12
//	paintbynum analyze photo.jpg
//	paintbynum serve --addr :8080
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"paintbynum"
	"paintbynum/internal/server"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cli struct {
		Convert convertCmd `cmd:"" help:"Convert an image into template layers"`
		Analyze analyzeCmd `cmd:"" help:"Recommend settings for an image"`
		Serve   serveCmd   `cmd:"" help:"Run the HTTP API"`
	}

	kctx := kong.Parse(&cli,
		kong.Name("paintbynum"),
		kong.Description("Paint-by-numbers template generator"),
		kong.UsageOnError(),
	)
	if err := kctx.Run(log); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type convertCmd struct {
	Input  string `arg:"" help:"Source image (png, jpeg, gif, bmp, tiff, webp)"`
	Output string `short:"o" help:"Output basename; layer suffixes are appended" default:"template"`

	Colors         int     `help:"Palette size (1-256)" default:"12"`
	MinRegion      int     `help:"Smallest zone area in pixels" default:"64"`
	Smoothness     float64 `help:"Palette smoothing bias (0-100)" default:"20"`
	MergeTolerance float64 `help:"Color distance for artistic merging" default:"0.12"`
	PlainMerge     bool    `help:"Absorb small zones into the largest neighbor regardless of color"`
	NoSmartPalette bool    `help:"Seed the palette from raw frequency instead of dominant colors"`
	SVG            bool    `help:"Also write a vector template" default:"true" negatable:""`
	Quiet          bool    `short:"q" help:"Suppress progress output"`
}

func (c *convertCmd) options() paintbynum.Options {
	opts := paintbynum.DefaultOptions()
	opts.NumColors = c.Colors
	opts.MinRegionSize = c.MinRegion
	opts.Smoothness = c.Smoothness
	opts.MergeTolerance = c.MergeTolerance
	opts.EnableArtisticMerge = !c.PlainMerge
	opts.SmartPalette = !c.NoSmartPalette
	return opts
}

func (c *convertCmd) Run(log *slog.Logger) error {
	img, err := paintbynum.LoadImage(c.Input)
	if err != nil {
		return fmt.Errorf("loading %q: %w", c.Input, err)
	}

	var result *paintbynum.Result
	for n := range paintbynum.ProcessWithProgress(context.Background(), img, c.options()) {
		switch {
		case n.Err != nil:
			return fmt.Errorf("processing %q: %w", c.Input, n.Err)
		case n.Result != nil:
			result = n.Result
		default:
			if !c.Quiet && n.Progress == 0 {
				log.Info("stage", "name", n.Stage)
			}
		}
	}

	if err := paintbynum.SavePNG(c.Output+"_contours.png", result.Contours); err != nil {
		return err
	}
	if err := paintbynum.SavePNG(c.Output+"_numbered.png", result.Numbered); err != nil {
		return err
	}
	if err := paintbynum.SavePNG(c.Output+"_colorized.png", result.Colorized); err != nil {
		return err
	}

	if c.SVG {
		f, err := os.Create(c.Output + ".svg")
		if err != nil {
			return err
		}
		if err := result.WriteSVG(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if err := c.writeManifest(result); err != nil {
		return err
	}

	log.Info("converted", "input", c.Input, "output", c.Output,
		"palette", len(result.Palette), "zones", len(result.Zones))
	return nil
}

// writeManifest saves the palette and zone table so a UI or print layout can
// be built without re-running the engine.
func (c *convertCmd) writeManifest(result *paintbynum.Result) error {
	f, err := os.Create(c.Output + ".json")
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Width   int               `json:"width"`
		Height  int               `json:"height"`
		Palette []string          `json:"palette"`
		Zones   []paintbynum.Zone `json:"zones"`
	}{result.Width, result.Height, result.Palette, result.Zones})
}

type analyzeCmd struct {
	Input string `arg:"" help:"Source image"`
}

func (c *analyzeCmd) Run(log *slog.Logger) error {
	img, err := paintbynum.LoadImage(c.Input)
	if err != nil {
		return fmt.Errorf("loading %q: %w", c.Input, err)
	}
	analysis, err := paintbynum.Analyze(img)
	if err != nil {
		return fmt.Errorf("analyzing %q: %w", c.Input, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}

type serveCmd struct {
	Addr    string `help:"Listen address" default:":8080"`
	MaxBody int64  `help:"Request body limit in bytes" default:"67108864"`
}

func (c *serveCmd) Run(log *slog.Logger) error {
	handler := server.New(log, c.MaxBody)
	log.Info("listening", "addr", c.Addr)
	return http.ListenAndServe(c.Addr, handler)
}
