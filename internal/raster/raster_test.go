package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

// testImage creates a solid-color test image of the given size
func testImage(w, h int, c color.Color) image.Image {
	return imaging.New(w, h, c)
}

// pngBytes encodes an image as PNG for decode tests
func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// webpHeader builds a minimal WebP VP8X header with the given feature flags
func webpHeader(flags byte) []byte {
	data := make([]byte, 30)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WEBP")
	copy(data[12:16], "VP8X")
	data[20] = flags
	return data
}

// TestDecode_PNG verifies PNG bytes round-trip through Decode
func TestDecode_PNG(t *testing.T) {
	src := testImage(10, 20, color.NRGBA{R: 200, A: 255})
	img, err := Decode(pngBytes(t, src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 10 || b.Dy() != 20 {
		t.Errorf("Decoded size = %dx%d, want 10x20", b.Dx(), b.Dy())
	}
}

// TestDecode_Garbage verifies undecodable bytes map to ErrImageDecode
func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not an image at all"))
	if !errors.Is(err, ErrImageDecode) {
		t.Errorf("Expected ErrImageDecode, got %v", err)
	}
}

// TestBounds reads dimensions without a full decode
func TestBounds(t *testing.T) {
	data := pngBytes(t, testImage(33, 44, color.White))
	w, h, err := Bounds(data)
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if w != 33 || h != 44 {
		t.Errorf("Bounds = %dx%d, want 33x44", w, h)
	}
}

// TestDetectMIME verifies magic byte sniffing for all supported formats
func TestDetectMIME(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", webpHeader(0), "image/webp"},
		{"short", []byte{0x01}, "application/octet-stream"},
		{"unknown", []byte("plaintext"), "application/octet-stream"},
	}

	for _, tc := range cases {
		if got := DetectMIME(tc.data); got != tc.want {
			t.Errorf("DetectMIME(%s) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// TestIsAnimatedWebP verifies the VP8X animation flag check
func TestIsAnimatedWebP(t *testing.T) {
	if !IsAnimatedWebP(webpHeader(0x02)) {
		t.Error("Expected animation flag 0x02 to be detected")
	}
	if IsAnimatedWebP(webpHeader(0x00)) {
		t.Error("Static VP8X header reported as animated")
	}
	if IsAnimatedWebP([]byte("RIFF")) {
		t.Error("Truncated data reported as animated")
	}
	// Simple lossy WebP has no VP8X chunk at all
	simple := webpHeader(0x02)
	copy(simple[12:16], "VP8 ")
	if IsAnimatedWebP(simple) {
		t.Error("Non-VP8X WebP reported as animated")
	}
}
