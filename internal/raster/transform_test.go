package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// TestCoverResize_Dimensions verifies output is always exactly the target square
func TestCoverResize_Dimensions(t *testing.T) {
	cases := []struct{ w, h, size int }{
		{100, 100, 512},
		{1000, 500, 512},
		{300, 900, 96},
		{50, 51, 128},
	}

	for _, tc := range cases {
		out := CoverResize(testImage(tc.w, tc.h, color.White), tc.size)
		b := out.Bounds()
		if b.Dx() != tc.size || b.Dy() != tc.size {
			t.Errorf("CoverResize(%dx%d, %d) = %dx%d", tc.w, tc.h, tc.size, b.Dx(), b.Dy())
		}
	}
}

// TestCoverResize_CropsEdges verifies cover semantics: a wide source loses its
// left and right edges, and the center survives
func TestCoverResize_CropsEdges(t *testing.T) {
	// 300x100 image: left third red, middle third green, right third blue
	src := imaging.New(300, 100, color.NRGBA{R: 255, A: 255})
	green := imaging.New(100, 100, color.NRGBA{G: 255, A: 255})
	blue := imaging.New(100, 100, color.NRGBA{B: 255, A: 255})
	src = imaging.Paste(src, green, image.Pt(100, 0))
	src = imaging.Paste(src, blue, image.Pt(200, 0))

	out := CoverResize(src, 100)

	// Center pixel should come from the green middle third
	r, g, b, _ := out.At(50, 50).RGBA()
	if g == 0 || r > g || b > g {
		t.Errorf("Center pixel not green: r=%d g=%d b=%d", r, g, b)
	}
}

// TestFitCanvas_Dimensions verifies the canvas is the target square with
// the scaled source centered inside it
func TestFitCanvas_Dimensions(t *testing.T) {
	out := FitCanvas(testImage(200, 100, color.NRGBA{R: 255, A: 255}), 512, 1.0, color.Transparent)
	b := out.Bounds()
	if b.Dx() != 512 || b.Dy() != 512 {
		t.Fatalf("FitCanvas size = %dx%d, want 512x512", b.Dx(), b.Dy())
	}

	// Wide source scaled to 512x256: rows above y=128 stay transparent
	if _, _, _, a := out.At(256, 64).RGBA(); a != 0 {
		t.Error("Expected transparent letterbox above the content")
	}
	// Center carries the content
	if _, _, _, a := out.At(256, 256).RGBA(); a == 0 {
		t.Error("Expected opaque content in canvas center")
	}
}

// TestFitCanvas_Fraction verifies the 80% tray scaling leaves a margin
func TestFitCanvas_Fraction(t *testing.T) {
	out := FitCanvas(testImage(100, 100, color.NRGBA{R: 255, A: 255}), 96, 0.8, color.White)

	// 80% of 96 is ~76px content centered, so a ~10px border remains white
	r, g, b, _ := out.At(2, 2).RGBA()
	if r != g || g != b {
		t.Errorf("Expected white border pixel, got r=%d g=%d b=%d", r, g, b)
	}
	// Center is the red source
	r, g, _, _ = out.At(48, 48).RGBA()
	if r == 0 || g == r {
		t.Error("Expected red content in tray center")
	}
}

// TestCenterCropSquare verifies the largest centered square is extracted
func TestCenterCropSquare(t *testing.T) {
	out := CenterCropSquare(testImage(300, 120, color.White))
	b := out.Bounds()
	if b.Dx() != 120 || b.Dy() != 120 {
		t.Errorf("CenterCropSquare = %dx%d, want 120x120", b.Dx(), b.Dy())
	}

	out = CenterCropSquare(testImage(80, 200, color.White))
	b = out.Bounds()
	if b.Dx() != 80 || b.Dy() != 80 {
		t.Errorf("CenterCropSquare = %dx%d, want 80x80", b.Dx(), b.Dy())
	}
}

// TestRotatedSize verifies bounding box math at the right angles
func TestRotatedSize(t *testing.T) {
	w, h := RotatedSize(200, 100, 90)
	if w != 100 || h != 200 {
		t.Errorf("RotatedSize(200,100,90) = %dx%d, want 100x200", w, h)
	}

	w, h = RotatedSize(200, 100, 180)
	if w != 200 || h != 100 {
		t.Errorf("RotatedSize(200,100,180) = %dx%d, want 200x100", w, h)
	}
}

// TestRotateCrop verifies rotation into a bounding box followed by extraction
func TestRotateCrop(t *testing.T) {
	src := testImage(200, 100, color.NRGBA{R: 255, A: 255})

	out := RotateCrop(src, 90, image.Rect(0, 0, 100, 200))
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 200 {
		t.Fatalf("RotateCrop output = %dx%d, want 100x200", b.Dx(), b.Dy())
	}

	// Rotated content fills the full crop, so the center must be opaque red
	r, _, _, a := out.At(50, 100).RGBA()
	if a == 0 || r == 0 {
		t.Error("Expected rotated content at crop center")
	}
}

// TestWatermark verifies the source is not mutated and output differs
func TestWatermark(t *testing.T) {
	src := imaging.New(512, 512, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	before := src.At(480, 505)

	out := Watermark(src, "sample")

	if src.At(480, 505) != before {
		t.Error("Watermark mutated the source image")
	}

	// Some pixel in the bottom-right region must have changed
	changed := false
	for x := 400; x < 512 && !changed; x++ {
		for y := 480; y < 512; y++ {
			if out.At(x, y) != src.At(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("Watermark drew nothing in the bottom-right corner")
	}
}
