// Package tray composes WhatsApp tray icons: a 96x96 PNG built from one
// sticker (centered at 80%) or from up to four stickers in a 2x2 grid.
// Every variant runs through the tray compression budget before returning.
package tray

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/mintleafstudio/stickersmith/internal/codec"
	"github.com/mintleafstudio/stickersmith/internal/raster"
)

// Size is the WhatsApp tray icon dimension
const Size = 96

// DefaultCornerRadius is the corner radius for rounded tray icons
const DefaultCornerRadius = 16

const (
	singleFraction = 0.8 // single source fills 80% of the canvas
	gridFraction   = 0.9 // grid sources fill 90% of their cell
	cellSize       = Size / 2
)

// ErrNoSources is returned when Generate is called with no source images
var ErrNoSources = errors.New("tray icon needs at least one source image")

// Options controls tray composition
type Options struct {
	Background color.Color // defaults to white
	Rounded    bool
	Radius     int // defaults to DefaultCornerRadius when Rounded is set
}

// Generate builds a tray icon from the given sources. One source produces
// the centered single layout; two to four sources produce a 2x2 grid in
// slot order top-left, top-right, bottom-left, bottom-right. Extra sources
// beyond four are ignored.
func Generate(sources []image.Image, opts Options) (codec.Result, error) {
	if len(sources) == 0 {
		return codec.Result{}, ErrNoSources
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	var canvas *image.NRGBA
	if len(sources) == 1 {
		canvas = raster.FitCanvas(sources[0], Size, singleFraction, bg)
	} else {
		canvas = composeGrid(sources, bg)
	}

	if opts.Rounded {
		radius := opts.Radius
		if radius <= 0 {
			radius = DefaultCornerRadius
		}
		canvas = roundCorners(canvas, radius)
	}

	return codec.Compress(canvas, codec.TrayProfile)
}

// composeGrid lays out up to four sources in a 2x2 grid
func composeGrid(sources []image.Image, bg color.Color) *image.NRGBA {
	canvas := imaging.New(Size, Size, bg)

	slots := []image.Point{
		{X: 0, Y: 0},
		{X: cellSize, Y: 0},
		{X: 0, Y: cellSize},
		{X: cellSize, Y: cellSize},
	}

	n := len(sources)
	if n > len(slots) {
		n = len(slots)
	}

	for i := 0; i < n; i++ {
		cell := raster.FitCanvas(sources[i], cellSize, gridFraction, color.Transparent)
		canvas = imaging.Overlay(canvas, cell, slots[i], 1.0)
	}

	return canvas
}

// roundCorners clips the canvas to a rounded rectangle, making the pixels
// outside the rounded path fully transparent
func roundCorners(img *image.NRGBA, radius int) *image.NRGBA {
	out := imaging.Clone(img)
	b := out.Bounds()
	w, h := b.Dx(), b.Dy()

	if radius > w/2 {
		radius = w / 2
	}
	if radius > h/2 {
		radius = h / 2
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !insideRounded(x, y, w, h, radius) {
				i := y*out.Stride + x*4
				out.Pix[i] = 0
				out.Pix[i+1] = 0
				out.Pix[i+2] = 0
				out.Pix[i+3] = 0
			}
		}
	}

	return out
}

// insideRounded reports whether a pixel is inside the rounded-rectangle path
func insideRounded(x, y, w, h, r int) bool {
	// corner centers
	var cx, cy int
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= w-r && y < r:
		cx, cy = w-r-1, r
	case x < r && y >= h-r:
		cx, cy = r, h-r-1
	case x >= w-r && y >= h-r:
		cx, cy = w-r-1, h-r-1
	default:
		return true
	}

	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
