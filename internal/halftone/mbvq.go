package halftone

import "fmt"

// Region is one of the six minimum-brightness-variation quadruples that
// partition the RGB cube.
type Region int

const (
	CMYW Region = iota
	MYGC
	RGMY
	KRGB
	RGBM
	CMGB
)

var regionNames = [...]string{"CMYW", "MYGC", "RGMY", "KRGB", "RGBM", "CMGB"}

func (r Region) String() string {
	if r >= 0 && int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

// Vertex is a corner of the RGB cube.
type Vertex int

const (
	Red Vertex = iota
	Green
	Blue
	White
	Magenta
	Cyan
	Yellow
	Black
)

var vertexNames = [...]string{"RED", "GREEN", "BLUE", "WHITE", "MAGENTA", "CYAN", "YELLOW", "BLACK"}

var vertexRGB = [...][3]uint8{
	Red:     {255, 0, 0},
	Green:   {0, 255, 0},
	Blue:    {0, 0, 255},
	White:   {255, 255, 255},
	Magenta: {255, 0, 255},
	Cyan:    {0, 255, 255},
	Yellow:  {255, 255, 0},
	Black:   {0, 0, 0},
}

func (v Vertex) String() string {
	if v >= 0 && int(v) < len(vertexNames) {
		return vertexNames[v]
	}
	return fmt.Sprintf("Vertex(%d)", int(v))
}

// RGB returns the vertex as an 8-bit triple.
func (v Vertex) RGB() [3]uint8 {
	if v < 0 || int(v) >= len(vertexRGB) {
		return [3]uint8{}
	}
	return vertexRGB[v]
}

// Vertices returns all eight cube corners.
func Vertices() []Vertex {
	return []Vertex{Red, Green, Blue, White, Magenta, Cyan, Yellow, Black}
}

// ClassifyRegion selects the region from the R+G, G+B and R+G+B sums.
func ClassifyRegion(r, g, b uint8) Region {
	rg := int(r) + int(g)
	gb := int(g) + int(b)
	rgb := rg + int(b)

	if rg > 255 {
		if gb > 255 {
			if rgb > 510 {
				return CMYW
			}
			return MYGC
		}
		return RGMY
	}
	if !(gb > 255) {
		if !(rgb > 255) {
			return KRGB
		}
		return RGBM
	}
	return CMGB
}

// NearestVertex resolves the closest vertex of region to the normalized
// colour (r,g,b in 0..1). Comparisons run in a fixed order and later matches
// override earlier ones, so ties go to whichever test applies last.
func NearestVertex(region Region, r, g, b float64) Vertex {
	switch region {
	case CMYW:
		return nearestCMYW(r, g, b)
	case MYGC:
		return nearestMYGC(r, g, b)
	case RGMY:
		return nearestRGMY(r, g, b)
	case KRGB:
		return nearestKRGB(r, g, b)
	case RGBM:
		return nearestRGBM(r, g, b)
	case CMGB:
		return nearestCMGB(r, g, b)
	}
	return Black
}

func nearestCMYW(r, g, b float64) Vertex {
	v := White
	if b < 0.5 && b <= r && b <= g {
		v = Yellow
	}
	if g < 0.5 && g <= b && g <= r {
		v = Magenta
	}
	if r < 0.5 && r <= b && r <= g {
		v = Cyan
	}
	return v
}

func nearestMYGC(r, g, b float64) Vertex {
	v := Magenta
	if g >= b && r >= b {
		if r >= 0.5 {
			v = Yellow
		} else {
			v = Green
		}
	}
	if g >= r && b >= r {
		if b >= 0.5 {
			v = Cyan
		} else {
			v = Green
		}
	}
	return v
}

func nearestRGMY(r, g, b float64) Vertex {
	if b > 0.5 {
		if r > 0.5 {
			if b >= g {
				return Magenta
			}
			return Yellow
		}
		if g > b+r {
			return Green
		}
		return Magenta
	}
	if r >= 0.5 {
		if g >= 0.5 {
			return Yellow
		}
		return Red
	}
	if r >= g {
		return Red
	}
	return Green
}

func nearestKRGB(r, g, b float64) Vertex {
	v := Black
	if b > 0.5 && b >= r && b >= g {
		v = Blue
	}
	if g > 0.5 && g >= b && g >= r {
		v = Green
	}
	if r > 0.5 && r >= b && r >= g {
		v = Red
	}
	return v
}

func nearestRGBM(r, g, b float64) Vertex {
	v := Green
	if r > g && r >= b {
		if b < 0.5 {
			v = Red
		} else {
			v = Magenta
		}
	}
	if b > g && b >= r {
		if r < 0.5 {
			v = Blue
		} else {
			v = Magenta
		}
	}
	return v
}

func nearestCMGB(r, g, b float64) Vertex {
	if b > 0.5 {
		if r > 0.5 {
			if g >= r {
				return Cyan
			}
			return Magenta
		}
		if g > 0.5 {
			return Cyan
		}
		return Blue
	}
	if r > 0.5 {
		if r-g+b >= 0.5 {
			return Magenta
		}
		return Green
	}
	if g >= b {
		return Green
	}
	return Blue
}

// Quantize maps a colour on the 0..255 scale to its MBVQ vertex. Values
// outside the byte range (accumulated diffusion error) are clamped for the
// region decision only; the vertex decision sees the unclamped values.
func Quantize(r, g, b float64) Vertex {
	region := ClassifyRegion(clampByte(r), clampByte(g), clampByte(b))
	return NearestVertex(region, r/255, g/255, b/255)
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
