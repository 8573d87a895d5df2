package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CoverResize scales the source so its larger dimension fills the target
// square and crops the overflow, keeping the center. The output is always
// exactly size x size.
func CoverResize(img image.Image, size int) *image.NRGBA {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// FitCanvas scales the source to fit inside fraction*size (preserving aspect
// ratio) and centers it on a size x size canvas filled with bg. Pass
// color.Transparent for stickers, a solid color for tray icons.
func FitCanvas(img image.Image, size int, fraction float64, bg color.Color) *image.NRGBA {
	canvas := imaging.New(size, size, bg)

	target := float64(size) * fraction
	b := img.Bounds()
	scale := math.Min(target/float64(b.Dx()), target/float64(b.Dy()))

	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	return imaging.PasteCenter(canvas, scaled)
}

// CenterCropSquare extracts the largest centered square from the source
func CenterCropSquare(img image.Image) *image.NRGBA {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	return imaging.CropCenter(img, side, side)
}

// RotatedSize returns the bounding box dimensions of a rectangle rotated by
// the given angle in degrees.
func RotatedSize(width, height int, degrees float64) (int, int) {
	rad := degrees * math.Pi / 180
	w := math.Abs(math.Cos(rad))*float64(width) + math.Abs(math.Sin(rad))*float64(height)
	h := math.Abs(math.Sin(rad))*float64(width) + math.Abs(math.Cos(rad))*float64(height)
	return int(math.Round(w)), int(math.Round(h))
}

// RotateCrop rotates the source by the given angle and extracts the requested
// sub-rectangle from the rotated result. The rotation is drawn into the full
// rotated bounding box first, so no content is clipped before the crop is
// applied. Crop coordinates are relative to that bounding box.
func RotateCrop(img image.Image, degrees float64, crop image.Rectangle) *image.NRGBA {
	rotated := imaging.Rotate(img, -degrees, color.Transparent)
	return imaging.Crop(rotated, crop)
}

// Watermark draws text in the bottom-right corner of a copy of the source
func Watermark(img image.Image, text string) *image.NRGBA {
	out := imaging.Clone(img)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 160}),
		Face: basicfont.Face7x13,
	}

	bounds := out.Bounds()
	textWidth := d.MeasureString(text).Round()

	d.Dot = fixed.P(
		bounds.Max.X-textWidth-10,
		bounds.Max.Y-10,
	)

	d.DrawString(text)
	return out
}
