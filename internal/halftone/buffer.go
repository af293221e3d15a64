// Package halftone converts continuous-tone buffers into two-level or
// eight-colour images by ordered dithering and error diffusion.
package halftone

// Buffer is the pixel container the engine reads from and writes to.
// Cells are addressed by row, column and channel; dimensions are fixed at
// creation.
type Buffer interface {
	Width() int
	Height() int
	Channels() int
	Get(row, col, ch int) uint8
	Set(row, col, ch int, v uint8)
	// Like returns a zeroed buffer with the same shape.
	Like() Buffer
}
