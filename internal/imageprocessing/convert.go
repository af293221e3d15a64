package imageprocessing

import (
	"image"
	"image/color"

	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

// BlackWhitePalette is the two-level palette of binary halftones.
var BlackWhitePalette = color.Palette{
	color.Gray{Y: 0},
	color.Gray{Y: 255},
}

// VertexPalette holds the eight corners of the RGB cube in Vertex order.
var VertexPalette = func() color.Palette {
	vertices := halftone.Vertices()
	palette := make(color.Palette, len(vertices))
	for i, v := range vertices {
		c := v.RGB()
		palette[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
	}
	return palette
}()

// vertexIndex maps each cube corner to its VertexPalette index.
var vertexIndex = func() map[[3]uint8]uint8 {
	index := make(map[[3]uint8]uint8, len(VertexPalette))
	for i, v := range halftone.Vertices() {
		index[v.RGB()] = uint8(i)
	}
	return index
}()

// IsBinary reports whether every sample in m is 0 or 255.
func IsBinary(m *pixbuf.Image) bool {
	for _, v := range m.Pix() {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}

// ToPaletted converts a halftoned buffer to a paletted image. Single-channel
// buffers map onto BlackWhitePalette and RGB buffers onto VertexPalette. It
// returns false when some pixel is not a palette entry.
func ToPaletted(m *pixbuf.Image) (*image.Paletted, bool) {
	if !IsBinary(m) {
		return nil, false
	}

	rect := image.Rect(0, 0, m.Width(), m.Height())
	if m.Channels() == 1 {
		paletted := image.NewPaletted(rect, BlackWhitePalette)
		for y := 0; y < m.Height(); y++ {
			for x := 0; x < m.Width(); x++ {
				if m.Get(y, x, 0) == 255 {
					paletted.SetColorIndex(x, y, 1)
				}
			}
		}
		return paletted, true
	}

	paletted := image.NewPaletted(rect, VertexPalette)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			idx, ok := vertexIndex[[3]uint8{m.Get(y, x, 0), m.Get(y, x, 1), m.Get(y, x, 2)}]
			if !ok {
				return nil, false
			}
			paletted.SetColorIndex(x, y, idx)
		}
	}
	return paletted, true
}

// FirstChannel keeps channel 0 of m. Palette renders come back as RGB even
// when every pixel is gray.
func FirstChannel(m *pixbuf.Image) *pixbuf.Image {
	if m.Channels() == 1 {
		return m
	}
	gray := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			gray.Pix[y*gray.Stride+x] = m.Get(y, x, 0)
		}
	}
	return pixbuf.FromImage(gray)
}
