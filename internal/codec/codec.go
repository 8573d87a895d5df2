// Package codec implements the size-budget encoding step of the sticker
// pipeline. Each asset class (sticker, tray icon, thumbnail, upload) has a
// profile pairing a byte ceiling with a starting quality; encoding walks the
// quality down in fixed steps until the ceiling is met or the quality floor
// is reached. Going over budget is never fatal: the last attempt is returned
// and the caller decides whether to warn.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format selects the target encoding
type Format int

const (
	FormatWebP Format = iota
	FormatPNG
)

// ErrEncode indicates the codec itself failed, as opposed to merely
// producing an oversized result
var ErrEncode = errors.New("image encoding failed")

// Profile describes the encode contract of one asset class
type Profile struct {
	Name         string
	Size         int     // target square canvas dimension
	CeilingBytes int     // byte budget; 0 disables the quality walk
	StartQuality float64 // first quality attempt, in (0,1]
	QualityStep  float64
	MinQuality   float64
	Format       Format
}

// Encode profiles for the WhatsApp asset classes
var (
	// StickerProfile: 512x512 WebP under 100KB
	StickerProfile = Profile{
		Name:         "sticker",
		Size:         512,
		CeilingBytes: 100 * 1024,
		StartQuality: 0.9,
		QualityStep:  0.1,
		MinQuality:   0.1,
		Format:       FormatWebP,
	}

	// TrayProfile: 96x96 PNG under 50KB
	TrayProfile = Profile{
		Name:         "tray",
		Size:         96,
		CeilingBytes: 50 * 1024,
		StartQuality: 0.8,
		QualityStep:  0.1,
		MinQuality:   0.1,
		Format:       FormatPNG,
	}

	// ThumbnailProfile: 128x128 WebP at fixed quality, no ceiling
	ThumbnailProfile = Profile{
		Name:         "thumbnail",
		Size:         128,
		StartQuality: 0.7,
		Format:       FormatWebP,
	}
)

// Upload compression constants (bulk admin uploads)
const (
	uploadMaxDimension = 512
	uploadCeilingBytes = 300 * 1024
)

// uploadLadder is the discrete quality ladder for bulk uploads
var uploadLadder = []float64{0.6, 0.4}

// Result is the outcome of one budgeted encode
type Result struct {
	Data    []byte
	Quality float64
}

// Oversize reports whether the result missed the profile's byte ceiling
func (r Result) Oversize(p Profile) bool {
	return p.CeilingBytes > 0 && len(r.Data) > p.CeilingBytes
}

// Compress encodes the image under the profile's byte budget. The quality
// sequence is strictly decreasing; the walk stops at the first attempt under
// the ceiling, or at the quality floor, whichever comes first. The last
// attempt is always returned, even when over budget.
func Compress(img image.Image, p Profile) (Result, error) {
	quality := p.StartQuality
	var last Result

	for {
		data, err := encode(img, p.Format, quality)
		if err != nil {
			return Result{}, fmt.Errorf("%s encode at quality %.1f: %w", p.Name, quality, err)
		}
		last = Result{Data: data, Quality: quality}

		if p.CeilingBytes <= 0 || len(data) <= p.CeilingBytes {
			return last, nil
		}

		quality -= p.QualityStep
		if quality <= p.MinQuality {
			return last, nil
		}
	}
}

// CompressUpload prepares a bulk-upload image: scaled down to at most 512px
// on its longer side, WebP under 300KB via a coarse three-step quality ladder
// instead of the fine-grained walk.
func CompressUpload(img image.Image, startQuality float64) (Result, error) {
	b := img.Bounds()
	if b.Dx() > uploadMaxDimension || b.Dy() > uploadMaxDimension {
		img = imaging.Fit(img, uploadMaxDimension, uploadMaxDimension, imaging.Lanczos)
	}

	qualities := append([]float64{startQuality}, uploadLadder...)
	var last Result
	for _, q := range qualities {
		data, err := encode(img, FormatWebP, q)
		if err != nil {
			return Result{}, fmt.Errorf("upload encode at quality %.2f: %w", q, err)
		}
		last = Result{Data: data, Quality: q}
		if len(data) <= uploadCeilingBytes {
			return last, nil
		}
	}
	return last, nil
}

// encode performs a single encode attempt at the given quality
func encode(img image.Image, format Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatWebP:
		opts := &webp.Options{Quality: float32(quality * 100)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
	case FormatPNG:
		// PNG has no quality parameter. The first attempt is full color; any
		// lower quality re-encodes through a dithered 256-color palette, which
		// is the remaining size lever for PNG output.
		out := img
		if quality < 0.8 {
			out = quantize(img)
		}
		if err := png.Encode(&buf, out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrEncode, format)
	}

	return buf.Bytes(), nil
}

// quantize reduces an image to a dithered 256-color palette
func quantize(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(out, b, img, b.Min)
	return out
}
