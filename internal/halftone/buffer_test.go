package halftone

// memBuffer is a minimal Buffer used by the engine tests.
type memBuffer struct {
	w, h, c int
	pix     []uint8
}

func newMemBuffer(w, h, c int) *memBuffer {
	return &memBuffer{w: w, h: h, c: c, pix: make([]uint8, w*h*c)}
}

func filledBuffer(w, h, c int, v uint8) *memBuffer {
	b := newMemBuffer(w, h, c)
	for i := range b.pix {
		b.pix[i] = v
	}
	return b
}

// gradientBuffer fills each channel with a different diagonal ramp.
func gradientBuffer(w, h, c int) *memBuffer {
	b := newMemBuffer(w, h, c)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			for k := 0; k < c; k++ {
				b.Set(i, j, k, uint8((i*7+j*13+k*61)%256))
			}
		}
	}
	return b
}

func (b *memBuffer) Width() int    { return b.w }
func (b *memBuffer) Height() int   { return b.h }
func (b *memBuffer) Channels() int { return b.c }
func (b *memBuffer) Like() Buffer  { return newMemBuffer(b.w, b.h, b.c) }

func (b *memBuffer) Get(row, col, ch int) uint8 {
	return b.pix[(row*b.w+col)*b.c+ch]
}

func (b *memBuffer) Set(row, col, ch int, v uint8) {
	b.pix[(row*b.w+col)*b.c+ch] = v
}

func (b *memBuffer) plane(ch int) [][]uint8 {
	out := make([][]uint8, b.h)
	for i := range out {
		out[i] = make([]uint8, b.w)
		for j := range out[i] {
			out[i][j] = b.Get(i, j, ch)
		}
	}
	return out
}
