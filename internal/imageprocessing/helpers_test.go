package imageprocessing

import (
	"image"
	"image/color"

	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / max(1, w-1)),
				G: uint8(y * 255 / max(1, h-1)),
				B: uint8((x + y) * 255 / max(1, w+h-2)),
				A: 255,
			})
		}
	}
	return img
}

func mustBuffer(w, h, c int, fill func(y, x, ch int) uint8) *pixbuf.Image {
	m, err := pixbuf.New(w, h, c)
	if err != nil {
		panic(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				m.Set(y, x, ch, fill(y, x, ch))
			}
		}
	}
	return m
}

// checker produces 0/255 samples in a pattern that differs per channel.
func checker(y, x, ch int) uint8 {
	if (x+y+ch)%2 == 0 {
		return 255
	}
	return 0
}
