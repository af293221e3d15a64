package imageprocessing

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// FitMode selects how an image is scaled onto a target box.
type FitMode string

const (
	// FitContain letterboxes the scaled image on a white canvas.
	FitContain FitMode = "fit"
	// FitFill scales to cover the box and crops the overflow.
	FitFill FitMode = "fill"
)

// ParseFitMode accepts "fit" (or "contain") and "fill" (or "cover").
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fit", "contain":
		return FitContain, nil
	case "fill", "cover":
		return FitFill, nil
	}
	return "", fmt.Errorf("unknown fit mode %q", s)
}

// ParseSize parses "WIDTHxHEIGHT". An empty string means no resize.
func ParseSize(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}
	return w, h, nil
}

// Resize scales img onto a targetWidth x targetHeight canvas using mode.
func Resize(img image.Image, targetWidth, targetHeight int, mode FitMode) image.Image {
	if mode == FitFill {
		return ResizeToFill(img, targetWidth, targetHeight)
	}
	return ResizeToFit(img, targetWidth, targetHeight)
}

// ResizeToFit scales img to fit within the target while preserving aspect
// ratio, centred on white so the margins print as paper.
func ResizeToFit(img image.Image, targetWidth, targetHeight int) image.Image {
	if img == nil {
		return nil
	}

	newWidth, newHeight := GetScaledDimensions(img.Bounds().Dx(), img.Bounds().Dy(), targetWidth, targetHeight)

	canvas := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	offsetX := (targetWidth - newWidth) / 2
	offsetY := (targetHeight - newHeight) / 2
	targetRect := image.Rect(offsetX, offsetY, offsetX+newWidth, offsetY+newHeight)

	// BiLinear is a good quality/speed balance for halftone input
	xdraw.BiLinear.Scale(canvas, targetRect, img, img.Bounds(), xdraw.Src, nil)
	return canvas
}

// GetScaledDimensions returns the largest size with the source aspect ratio
// that fits inside the target.
func GetScaledDimensions(srcWidth, srcHeight, targetWidth, targetHeight int) (int, int) {
	scale := min(float64(targetWidth)/float64(srcWidth), float64(targetHeight)/float64(srcHeight))
	return max(1, int(float64(srcWidth)*scale)), max(1, int(float64(srcHeight)*scale))
}

// ResizeToFill scales img to cover the target and crops the centre.
func ResizeToFill(img image.Image, targetWidth, targetHeight int) image.Image {
	if img == nil {
		return nil
	}

	srcWidth, srcHeight := img.Bounds().Dx(), img.Bounds().Dy()
	scale := max(float64(targetWidth)/float64(srcWidth), float64(targetHeight)/float64(srcHeight))
	newWidth := max(targetWidth, int(float64(srcWidth)*scale))
	newHeight := max(targetHeight, int(float64(srcHeight)*scale))

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	offset := image.Pt((newWidth-targetWidth)/2, (newHeight-targetHeight)/2)
	draw.Draw(canvas, canvas.Bounds(), resized, offset, draw.Src)
	return canvas
}
