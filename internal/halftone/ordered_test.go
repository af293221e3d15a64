package halftone

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTileIndexWrap(t *testing.T) {
	tests := []struct {
		p, n, want int
	}{
		{0, 4, 3},
		{1, 4, 1},
		{3, 4, 3},
		{4, 4, 3},
		{5, 4, 1},
		{0, 2, 1},
		{1, 2, 1},
		{16, 8, 7},
		{17, 8, 1},
	}
	for _, tt := range tests {
		if got := tileIndex(tt.p, tt.n); got != tt.want {
			t.Errorf("tileIndex(%d, %d) = %d, want %d", tt.p, tt.n, got, tt.want)
		}
	}
}

func TestOrderedDitherUniformTwoByTwo(t *testing.T) {
	img := filledBuffer(2, 2, 1, 128)
	out, err := OrderedDither(img, 2)
	if err != nil {
		t.Fatalf("OrderedDither error = %v", err)
	}
	// Every pixel of a 2×2 tile wraps onto cell (1,1), threshold 31.
	want := [][]uint8{{255, 255}, {255, 255}}
	if diff := cmp.Diff(want, out.(*memBuffer).plane(0)); diff != "" {
		t.Errorf("OrderedDither mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedDitherUsesWrappedCell(t *testing.T) {
	const n = 4
	index, _ := DitherMatrix(n)
	thresh, _ := ThresholdMatrix(index)

	// Pixels sitting exactly on their threshold go to 0, one above goes to 255.
	atThreshold := newMemBuffer(2*n, 2*n, 1)
	above := newMemBuffer(2*n, 2*n, 1)
	for i := 0; i < 2*n; i++ {
		for j := 0; j < 2*n; j++ {
			v := thresh[tileIndex(i, n)][tileIndex(j, n)]
			atThreshold.Set(i, j, 0, v)
			above.Set(i, j, 0, v+1)
		}
	}

	low, err := OrderedDither(atThreshold, n)
	if err != nil {
		t.Fatalf("OrderedDither error = %v", err)
	}
	high, err := OrderedDither(above, n)
	if err != nil {
		t.Fatalf("OrderedDither error = %v", err)
	}
	for i := 0; i < 2*n; i++ {
		for j := 0; j < 2*n; j++ {
			if got := low.Get(i, j, 0); got != 0 {
				t.Errorf("pixel (%d,%d) at threshold = %d, want 0", i, j, got)
			}
			if got := high.Get(i, j, 0); got != 255 {
				t.Errorf("pixel (%d,%d) above threshold = %d, want 255", i, j, got)
			}
		}
	}
}

func TestOrderedDitherBinaryOutput(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		for _, channels := range []int{1, 3} {
			img := gradientBuffer(37, 23, channels)
			out, err := OrderedDither(img, n)
			if err != nil {
				t.Fatalf("OrderedDither(n=%d) error = %v", n, err)
			}
			if out.Width() != 37 || out.Height() != 23 || out.Channels() != channels {
				t.Fatalf("OrderedDither(n=%d) shape = %dx%dx%d", n, out.Width(), out.Height(), out.Channels())
			}
			for _, v := range out.(*memBuffer).pix {
				if v != 0 && v != 255 {
					t.Fatalf("OrderedDither(n=%d, c=%d) produced %d", n, channels, v)
				}
			}
		}
	}
}

func TestOrderedDitherLeavesSourceUntouched(t *testing.T) {
	img := gradientBuffer(9, 9, 3)
	before := append([]uint8(nil), img.pix...)
	if _, err := OrderedDither(img, 4); err != nil {
		t.Fatalf("OrderedDither error = %v", err)
	}
	if diff := cmp.Diff(before, img.pix); diff != "" {
		t.Errorf("source buffer modified (-before +after):\n%s", diff)
	}
}

func TestOrderedDitherInvalidDimension(t *testing.T) {
	img := filledBuffer(4, 4, 1, 10)
	out, err := OrderedDither(img, 3)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("OrderedDither(3) error = %v, want ErrInvalidParameter", err)
	}
	if out != nil {
		t.Errorf("OrderedDither(3) returned output alongside the error")
	}
}
