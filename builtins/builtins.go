// Package builtins ships the viewer's built-in plugin: synthetic sample
// datasets and a small status widget. It doubles as the reference for
// how compiled-in plugins publish contributions: declare them in a
// manifest, export the callables from an init function, and hand both
// to the registry.
package builtins

import (
	"context"
	_ "embed"
	"fmt"
	"sync/atomic"

	"github.com/lumen-labs/lumenplug"
	"github.com/lumen-labs/lumenplug/manifest"
	"github.com/lumen-labs/lumenplug/resolve"
)

//go:embed manifest.yaml
var manifestYAML []byte

// Manifest returns the built-in plugin's parsed, validated manifest.
func Manifest() (*manifest.Manifest, error) {
	return manifest.LoadBytes(manifestYAML, "builtins/manifest.yaml")
}

// Register adds the built-in export modules to the given table.
func Register(exports *resolve.Exports) {
	exports.RegisterModule("lumen_builtins.sample_data", func() (map[string]resolve.Callable, error) {
		return map[string]resolve.Callable{
			"gradient_2d":     sampleGradient2D,
			"checkerboard_2d": sampleCheckerboard2D,
		}, nil
	})
	exports.RegisterModule("lumen_builtins.widgets", func() (map[string]resolve.Callable, error) {
		return map[string]resolve.Callable{
			"status_panel": makeStatusPanel,
		}, nil
	})
}

// NewRegistry builds a registry for the built-in plugin against a fresh
// export table.
func NewRegistry(opts ...lumenplug.Option) (*lumenplug.Registry, error) {
	m, err := Manifest()
	if err != nil {
		return nil, err
	}
	exports := resolve.NewExports()
	Register(exports)
	opts = append([]lumenplug.Option{lumenplug.WithExports(exports)}, opts...)
	return lumenplug.New(m, opts...)
}

const sampleSize = 64

// sampleGradient2D returns a single horizontal-ramp image layer.
func sampleGradient2D(_ context.Context, _ ...any) (any, error) {
	data := make([][]float64, sampleSize)
	for y := range data {
		row := make([]float64, sampleSize)
		for x := range row {
			row[x] = float64(x) / float64(sampleSize-1)
		}
		data[y] = row
	}
	return []lumenplug.LayerData{{
		Data: data,
		Meta: map[string]any{"name": "gradient"},
		Kind: lumenplug.LayerImage,
	}}, nil
}

// sampleCheckerboard2D returns an image layer plus a labels layer
// marking the dark squares.
func sampleCheckerboard2D(_ context.Context, _ ...any) (any, error) {
	const tile = 8
	image := make([][]float64, sampleSize)
	labels := make([][]int, sampleSize)
	for y := range image {
		imageRow := make([]float64, sampleSize)
		labelRow := make([]int, sampleSize)
		for x := range imageRow {
			if (x/tile+y/tile)%2 == 0 {
				imageRow[x] = 1.0
			} else {
				labelRow[x] = 1
			}
		}
		image[y] = imageRow
		labels[y] = labelRow
	}
	return []lumenplug.LayerData{
		{Data: image, Meta: map[string]any{"name": "checkerboard"}, Kind: lumenplug.LayerImage},
		{Data: labels, Meta: map[string]any{"name": "dark squares"}, Kind: lumenplug.LayerLabels},
	}, nil
}

// StatusPanel is the built-in widget: a static panel showing host info.
type StatusPanel struct {
	title  string
	serial int64
}

// WidgetTitle implements lumenplug.Widget.
func (p *StatusPanel) WidgetTitle() string {
	return p.title
}

// Serial distinguishes panel instances; each construction increments it.
func (p *StatusPanel) Serial() int64 {
	return p.serial
}

var panelSerial atomic.Int64

func makeStatusPanel(_ context.Context, _ ...any) (any, error) {
	serial := panelSerial.Add(1)
	return &StatusPanel{
		title:  fmt.Sprintf("Lumen Status (#%d)", serial),
		serial: serial,
	}, nil
}
