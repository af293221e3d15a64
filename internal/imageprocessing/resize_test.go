package imageprocessing

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestGetScaledDimensions(t *testing.T) {
	tests := []struct {
		sw, sh, tw, th int
		ww, wh         int
	}{
		{100, 50, 40, 40, 40, 20},
		{50, 100, 40, 40, 20, 40},
		{10, 10, 30, 20, 20, 20},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := GetScaledDimensions(tt.sw, tt.sh, tt.tw, tt.th)
		if w != tt.ww || h != tt.wh {
			t.Errorf("GetScaledDimensions(%d,%d,%d,%d) = %d,%d, want %d,%d",
				tt.sw, tt.sh, tt.tw, tt.th, w, h, tt.ww, tt.wh)
		}
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func TestResizeToFitLetterboxesOnWhite(t *testing.T) {
	out := ResizeToFit(solid(100, 50, color.RGBA{R: 255, A: 255}), 40, 40)
	if out.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Fatalf("bounds = %v", out.Bounds())
	}

	r, g, b, _ := out.At(20, 2).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("margin = %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}
	r, g, _, _ = out.At(20, 20).RGBA()
	if r>>8 < 250 || g>>8 > 5 {
		t.Errorf("centre = %d,%d, want red", r>>8, g>>8)
	}
}

func TestResizeToFillCovers(t *testing.T) {
	out := ResizeToFill(solid(100, 50, color.RGBA{B: 255, A: 255}), 30, 30)
	if out.Bounds() != image.Rect(0, 0, 30, 30) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	for _, p := range []image.Point{{0, 0}, {29, 29}, {15, 15}} {
		_, _, b, _ := out.At(p.X, p.Y).RGBA()
		if b>>8 < 250 {
			t.Errorf("pixel %v blue = %d, want full coverage", p, b>>8)
		}
	}
}

func TestParseSizeAndFit(t *testing.T) {
	if w, h, err := ParseSize("800x480"); err != nil || w != 800 || h != 480 {
		t.Errorf("ParseSize = %d,%d,%v", w, h, err)
	}
	if w, h, err := ParseSize(""); err != nil || w != 0 || h != 0 {
		t.Errorf("ParseSize(empty) = %d,%d,%v", w, h, err)
	}
	for _, bad := range []string{"800", "0x10", "axb", "-5x5"} {
		if _, _, err := ParseSize(bad); err == nil {
			t.Errorf("ParseSize(%q) expected error", bad)
		}
	}

	if m, err := ParseFitMode("cover"); err != nil || m != FitFill {
		t.Errorf("ParseFitMode(cover) = %q, %v", m, err)
	}
	if m, err := ParseFitMode(""); err != nil || m != FitContain {
		t.Errorf("ParseFitMode(empty) = %q, %v", m, err)
	}
	if _, err := ParseFitMode("stretch"); err == nil {
		t.Error("expected error for unknown fit mode")
	}
}
