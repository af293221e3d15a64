package halftone

// OrderedDither binarizes every channel of img against the n×n threshold
// matrix tiled over the image. The source buffer is left untouched.
func OrderedDither(img Buffer, n int) (Buffer, error) {
	index, err := DitherMatrix(n)
	if err != nil {
		return nil, err
	}
	threshold, err := ThresholdMatrix(index)
	if err != nil {
		return nil, err
	}

	out := img.Like()
	for i := 0; i < img.Height(); i++ {
		tx := tileIndex(i, n)
		for j := 0; j < img.Width(); j++ {
			ty := tileIndex(j, n)
			t := threshold[tx][ty]
			for k := 0; k < img.Channels(); k++ {
				if img.Get(i, j, k) <= t {
					out.Set(i, j, k, 0)
				} else {
					out.Set(i, j, k, 255)
				}
			}
		}
	}
	return out, nil
}

// tileIndex maps a pixel coordinate onto the threshold matrix. A zero
// remainder wraps to the last row/column, not the first.
func tileIndex(p, n int) int {
	if r := p % n; r > 0 {
		return r
	}
	return n - 1
}
