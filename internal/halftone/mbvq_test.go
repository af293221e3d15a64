package halftone

import "testing"

func TestClassifyRegion(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    Region
	}{
		{255, 255, 255, CMYW},
		{200, 200, 200, CMYW},
		{200, 100, 200, MYGC},
		{200, 200, 50, RGMY},
		{128, 128, 0, RGMY},
		{0, 0, 0, KRGB},
		{128, 127, 0, KRGB},
		{85, 85, 85, KRGB},
		{100, 100, 100, RGBM},
		{255, 0, 255, RGBM},
		{0, 200, 200, CMGB},
		{0, 255, 255, CMGB},
		{50, 100, 200, CMGB},
	}
	for _, tt := range tests {
		if got := ClassifyRegion(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("ClassifyRegion(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

// The low-sum branch negates the comparisons logically, so colours with
// G+B > 255 and R+G <= 255 land in CMGB instead of being swallowed by
// KRGB/RGBM.
func TestClassifyRegionReachesCMGB(t *testing.T) {
	reached := false
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				region := ClassifyRegion(uint8(r), uint8(g), uint8(b))
				inCMGB := r+g <= 255 && g+b > 255
				if inCMGB != (region == CMGB) {
					t.Fatalf("ClassifyRegion(%d,%d,%d) = %v", r, g, b, region)
				}
				reached = reached || inCMGB
			}
		}
	}
	if !reached {
		t.Fatal("CMGB never reached")
	}
}

func TestNearestVertex(t *testing.T) {
	tests := []struct {
		region  Region
		r, g, b float64
		want    Vertex
	}{
		{CMYW, 1, 1, 1, White},
		{CMYW, 1, 1, 0.25, Yellow},
		{CMYW, 1, 0.25, 1, Magenta},
		{CMYW, 0.25, 1, 1, Cyan},
		{CMYW, 0.375, 0.375, 0.375, Cyan}, // later tests win ties

		{MYGC, 0.875, 0.625, 0.125, Yellow},
		{MYGC, 0.125, 0.625, 0.875, Cyan},
		{MYGC, 0.25, 0.75, 0.25, Green},
		{MYGC, 0.75, 0.25, 0.75, Magenta},

		{RGMY, 0.875, 0.125, 0.875, Magenta},
		{RGMY, 0.875, 0.75, 0.625, Yellow},
		{RGMY, 0.25, 0.9375, 0.625, Green},
		{RGMY, 0.25, 0.5, 0.625, Magenta},
		{RGMY, 0.875, 0.75, 0.125, Yellow},
		{RGMY, 0.875, 0.25, 0.125, Red},
		{RGMY, 0.375, 0.25, 0.125, Red},
		{RGMY, 0.25, 0.375, 0.125, Green},

		{KRGB, 0, 0, 0, Black},
		{KRGB, 0.25, 0.25, 0.25, Black},
		{KRGB, 0.75, 0.125, 0.125, Red},
		{KRGB, 0.125, 0.75, 0.125, Green},
		{KRGB, 0.125, 0.125, 0.75, Blue},
		{KRGB, 0.625, 0.625, 0.625, Red},

		{RGBM, 0.5, 0.5, 0.5, Green},
		{RGBM, 0.625, 0.25, 0.375, Red},
		{RGBM, 0.625, 0.25, 0.625, Magenta},
		{RGBM, 0.25, 0.375, 0.75, Blue},

		{CMGB, 0.25, 0.75, 0.875, Cyan},
		{CMGB, 0.25, 0.25, 0.875, Blue},
		{CMGB, 0.75, 0.875, 0.875, Cyan},
		{CMGB, 0.875, 0.625, 0.875, Magenta},
		{CMGB, 0.75, 0.5, 0.25, Magenta},
		{CMGB, 0.625, 0.875, 0.25, Green},
		{CMGB, 0.25, 0.625, 0.375, Green},
		{CMGB, 0.25, 0.25, 0.375, Blue},
	}
	for _, tt := range tests {
		if got := NearestVertex(tt.region, tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("NearestVertex(%v, %v,%v,%v) = %v, want %v", tt.region, tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestQuantizeVerticesAreFixedPoints(t *testing.T) {
	for _, v := range Vertices() {
		rgb := v.RGB()
		got := Quantize(float64(rgb[0]), float64(rgb[1]), float64(rgb[2]))
		if got != v {
			t.Errorf("Quantize(%v) = %v, want %v", rgb, got, v)
		}
	}
}

func TestQuantizeClampsRegionInput(t *testing.T) {
	// Accumulated error can push values outside 0..255.
	if got := Quantize(-40, -10, 300); got != Blue {
		t.Errorf("Quantize(-40,-10,300) = %v, want BLUE", got)
	}
	if got := Quantize(400, 400, 400); got != White {
		t.Errorf("Quantize(400,400,400) = %v, want WHITE", got)
	}
}

func TestVertexRGB(t *testing.T) {
	tests := []struct {
		v    Vertex
		want [3]uint8
	}{
		{Yellow, [3]uint8{255, 255, 0}},
		{White, [3]uint8{255, 255, 255}},
		{Black, [3]uint8{0, 0, 0}},
		{Cyan, [3]uint8{0, 255, 255}},
	}
	for _, tt := range tests {
		if got := tt.v.RGB(); got != tt.want {
			t.Errorf("%v.RGB() = %v, want %v", tt.v, got, tt.want)
		}
	}
	for _, v := range Vertices() {
		for _, c := range v.RGB() {
			if c != 0 && c != 255 {
				t.Errorf("%v.RGB() has channel value %d", v, c)
			}
		}
	}
}

func TestEnumStrings(t *testing.T) {
	if got := CMGB.String(); got != "CMGB" {
		t.Errorf("CMGB.String() = %q", got)
	}
	if got := Magenta.String(); got != "MAGENTA" {
		t.Errorf("Magenta.String() = %q", got)
	}
	if got := Region(42).String(); got != "Region(42)" {
		t.Errorf("Region(42).String() = %q", got)
	}
}
