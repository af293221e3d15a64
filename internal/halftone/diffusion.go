package halftone

import "fmt"

// ErrorDiffuse quantizes img with serpentine error diffusion using the
// catalogued kernel. In threshold mode every channel becomes 0 or 255
// (value >= threshold → 255). In MBVQ mode the image must have exactly three
// channels and every pixel becomes one of the eight RGB cube vertices.
func ErrorDiffuse(img Buffer, id KernelID, useMBVQ bool, threshold int) (Buffer, error) {
	if useMBVQ && img.Channels() != 3 {
		return nil, fmt.Errorf("%w: MBVQ needs a 3-channel image, got %d channels", ErrInvalidParameter, img.Channels())
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("%w: threshold %d outside [0,255]", ErrInvalidParameter, threshold)
	}
	kernel, err := LookupKernel(id)
	if err != nil {
		return nil, err
	}
	mirrored, err := kernel.FlipLR()
	if err != nil {
		return nil, err
	}

	d := &diffuser{
		width:    img.Width(),
		height:   img.Height(),
		channels: img.Channels(),
		radius:   kernel.Radius(),
	}
	d.load(img)

	out := img.Like()
	quant := make([]uint8, d.channels)
	qerr := make([]float64, d.channels)
	limit := float64(threshold)

	for x := 0; x < d.height; x++ {
		line := serpentine(x, d.width)
		k := kernel
		if line.mirrored {
			k = mirrored
		}

		for y := line.start; y != line.stop; y += line.step {
			cell := d.cell(x, y)

			if useMBVQ {
				rgb := Quantize(cell[0], cell[1], cell[2]).RGB()
				copy(quant, rgb[:])
			} else {
				for ch, v := range cell {
					if v >= limit {
						quant[ch] = 255
					} else {
						quant[ch] = 0
					}
				}
			}

			for ch, v := range cell {
				out.Set(x, y, ch, quant[ch])
				qerr[ch] = v - float64(quant[ch])
			}
			d.spread(x, y, k, qerr)
		}
	}
	return out, nil
}

// scanLine describes the column traversal of one row.
type scanLine struct {
	start, stop, step int
	mirrored          bool
}

// serpentine returns the traversal for row: even rows run right to left with
// the mirrored kernel, odd rows left to right with the kernel as catalogued.
func serpentine(row, width int) scanLine {
	if row%2 == 0 {
		return scanLine{start: width - 1, stop: -1, step: -1, mirrored: true}
	}
	return scanLine{start: 0, stop: width, step: 1}
}

// diffuser owns the float accumulation buffer. It is allocated separately
// from both the source and the output.
type diffuser struct {
	width, height, channels int
	radius                  int
	accum                   []float64
}

func (d *diffuser) load(img Buffer) {
	d.accum = make([]float64, d.width*d.height*d.channels)
	i := 0
	for x := 0; x < d.height; x++ {
		for y := 0; y < d.width; y++ {
			for ch := 0; ch < d.channels; ch++ {
				d.accum[i] = float64(img.Get(x, y, ch))
				i++
			}
		}
	}
}

func (d *diffuser) cell(x, y int) []float64 {
	base := (x*d.width + y) * d.channels
	return d.accum[base : base+d.channels]
}

// spread adds qerr weighted by k to every in-bounds neighbour of (x,y).
func (d *diffuser) spread(x, y int, k Kernel, qerr []float64) {
	s := d.radius
	for di := -s; di <= s; di++ {
		nx := x + di
		if nx < 0 || nx >= d.height {
			continue
		}
		for dj := -s; dj <= s; dj++ {
			w := k[di+s][dj+s]
			if w == 0 {
				continue
			}
			ny := y + dj
			if ny < 0 || ny >= d.width {
				continue
			}
			cell := d.cell(nx, ny)
			for ch, e := range qerr {
				cell[ch] += e * w
			}
		}
	}
}
