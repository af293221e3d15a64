package halftone

import "fmt"

// DitherMatrix builds the n×n Bayer-style index matrix. n must be a power of
// two and at least 2. Every value in 0..n²-1 appears exactly once.
func DitherMatrix(n int) ([][]int, error) {
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: matrix dimension %d is not a power of two >= 2", ErrInvalidParameter, n)
	}
	return ditherMatrix(n), nil
}

func ditherMatrix(n int) [][]int {
	res := newIntMatrix(n)
	if n == 2 {
		res[0][0], res[0][1] = 1, 2
		res[1][0], res[1][1] = 3, 0
		return res
	}

	half := n / 2
	part := ditherMatrix(half)
	for i := 0; i < half; i++ {
		for j := 0; j < half; j++ {
			v := 4 * part[i][j]
			res[i][j] = v + 1
			res[i][j+half] = v + 2
			res[i+half][j] = v + 3
			res[i+half][j+half] = v
		}
	}
	return res
}

// ThresholdMatrix rescales a square index matrix into per-cell 0..255
// thresholds: floor((idx+0.5)/n² * 255).
func ThresholdMatrix(index [][]int) ([][]uint8, error) {
	n := len(index)
	if n == 0 {
		return nil, fmt.Errorf("%w: index matrix is empty", ErrInvalidParameter)
	}
	for i, row := range index {
		if len(row) != n {
			return nil, fmt.Errorf("%w: index matrix is not square (row %d has %d cells, want %d)", ErrInvalidParameter, i, len(row), n)
		}
	}

	cells := float64(n * n)
	res := make([][]uint8, n)
	for i := range index {
		res[i] = make([]uint8, n)
		for j, idx := range index[i] {
			res[i][j] = uint8((float64(idx) + 0.5) / cells * 255)
		}
	}
	return res, nil
}

func newIntMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}
