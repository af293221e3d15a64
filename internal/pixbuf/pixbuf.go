// Package pixbuf holds decoded images as fixed-shape byte grids addressed by
// row, column and channel.
package pixbuf

import (
	"fmt"

	"github.com/rmitchellscott/halftone/internal/halftone"
)

var _ halftone.Buffer = (*Image)(nil)

// Image is a row-major [row][col][channel] byte grid.
type Image struct {
	width, height, channels int
	pix                     []uint8
}

// New allocates a zeroed image. Both dimensions must be positive and only
// gray (1) and RGB (3) layouts are supported.
func New(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d is not positive", halftone.ErrInvalidParameter, width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", halftone.ErrInvalidParameter, channels)
	}
	return newImage(width, height, channels), nil
}

func newImage(width, height, channels int) *Image {
	return &Image{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}
}

func (m *Image) Width() int    { return m.width }
func (m *Image) Height() int   { return m.height }
func (m *Image) Channels() int { return m.channels }

// Pix exposes the backing slice.
func (m *Image) Pix() []uint8 { return m.pix }

func (m *Image) offset(row, col, ch int) int {
	return (row*m.width+col)*m.channels + ch
}

func (m *Image) Get(row, col, ch int) uint8 {
	return m.pix[m.offset(row, col, ch)]
}

func (m *Image) Set(row, col, ch int, v uint8) {
	m.pix[m.offset(row, col, ch)] = v
}

// Like returns a zeroed image with the same shape.
func (m *Image) Like() halftone.Buffer {
	return newImage(m.width, m.height, m.channels)
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	c := newImage(m.width, m.height, m.channels)
	copy(c.pix, m.pix)
	return c
}

// Min returns the smallest stored value, or 255 for an empty image.
func (m *Image) Min() uint8 {
	res := uint8(255)
	for _, v := range m.pix {
		if v < res {
			res = v
		}
	}
	return res
}

// Max returns the largest stored value, or 0 for an empty image.
func (m *Image) Max() uint8 {
	var res uint8
	for _, v := range m.pix {
		if v > res {
			res = v
		}
	}
	return res
}

// FromBuffer returns b as an *Image, copying it when it is some other
// Buffer implementation.
func FromBuffer(b halftone.Buffer) *Image {
	if m, ok := b.(*Image); ok {
		return m
	}
	m := newImage(b.Width(), b.Height(), b.Channels())
	for i := 0; i < m.height; i++ {
		for j := 0; j < m.width; j++ {
			for k := 0; k < m.channels; k++ {
				m.Set(i, j, k, b.Get(i, j, k))
			}
		}
	}
	return m
}
