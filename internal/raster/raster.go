// Package raster provides the pixel-level building blocks of the sticker
// pipeline: decoding, format sniffing, and pure image-to-image transforms.
// Every transform takes an immutable input and returns a newly allocated
// output, so stages can be composed without one step mutating another's data.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Import for image format support
	_ "image/jpeg" // Import for image format support
	_ "image/png"  // Import for image format support

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Import for WebP decode support
)

// ErrImageDecode indicates the source bytes could not be decoded as an image
var ErrImageDecode = errors.New("image could not be decoded")

// MaxAnimatedBytes is the size ceiling for animated WebP passthrough.
// Animated stickers cannot be re-encoded here, so oversized ones are passed
// along unchanged and left for the receiving side to reject.
const MaxAnimatedBytes = 500 * 1024

// Decode decodes image bytes into a raster image
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// Bounds returns the pixel dimensions of encoded image data without a full decode
func Bounds(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}

// DetectMIME attempts to detect the MIME type from image data
func DetectMIME(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}

	// Check PNG signature
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}

	// Check JPEG signature
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}

	// Check GIF signature
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}

	// Check WebP signature
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}

	return "application/octet-stream"
}

// IsAnimatedWebP reports whether the data is an animated WebP. It reads the
// VP8X chunk header: extended-format files carry an animation flag in bit 1
// of the feature byte.
func IsAnimatedWebP(data []byte) bool {
	if len(data) < 21 {
		return false
	}
	if DetectMIME(data) != "image/webp" {
		return false
	}

	// VP8X chunk directly after the WEBP signature
	if data[12] == 0x56 && data[13] == 0x50 && data[14] == 0x38 && data[15] == 0x58 {
		return data[20]&0x02 != 0
	}

	return false
}
