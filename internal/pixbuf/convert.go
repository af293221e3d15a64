package pixbuf

import (
	"image"
	"image/color"
)

// FromImage copies img into a buffer. Gray sources become single-channel
// buffers, everything else RGB. Alpha is discarded.
func FromImage(img image.Image) *Image {
	b := img.Bounds()

	switch src := img.(type) {
	case *image.Gray:
		m := newImage(b.Dx(), b.Dy(), 1)
		for y := 0; y < m.height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(m.pix[y*m.width:(y+1)*m.width], src.Pix[off:off+m.width])
		}
		return m
	case *image.Gray16:
		m := newImage(b.Dx(), b.Dy(), 1)
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				m.Set(y, x, 0, uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y>>8))
			}
		}
		return m
	}

	m := newImage(b.Dx(), b.Dy(), 3)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			m.Set(y, x, 0, c.R)
			m.Set(y, x, 1, c.G)
			m.Set(y, x, 2, c.B)
		}
	}
	return m
}

// ToImage converts the buffer back into a standard library image: *image.Gray
// for one channel, opaque *image.RGBA for three.
func (m *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, m.width, m.height)
	if m.channels == 1 {
		gray := image.NewGray(rect)
		for y := 0; y < m.height; y++ {
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+m.width], m.pix[y*m.width:(y+1)*m.width])
		}
		return gray
	}

	rgba := image.NewRGBA(rect)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			off := rgba.PixOffset(x, y)
			rgba.Pix[off+0] = m.Get(y, x, 0)
			rgba.Pix[off+1] = m.Get(y, x, 1)
			rgba.Pix[off+2] = m.Get(y, x, 2)
			rgba.Pix[off+3] = 0xff
		}
	}
	return rgba
}

// ToGray converts an RGB buffer to one channel with
// Y = 0.257R + 0.504G + 0.098B + 16. Single-channel input is cloned.
func (m *Image) ToGray() *Image {
	if m.channels == 1 {
		return m.Clone()
	}

	gray := newImage(m.width, m.height, 1)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			v := 0.257*float64(m.Get(y, x, 0)) +
				0.504*float64(m.Get(y, x, 1)) +
				0.098*float64(m.Get(y, x, 2)) + 16
			if v > 255 {
				v = 255
			}
			gray.Set(y, x, 0, uint8(v))
		}
	}
	return gray
}
