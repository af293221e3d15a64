package halftone

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKernelCatalogWeights(t *testing.T) {
	for _, id := range Kernels() {
		t.Run(id.String(), func(t *testing.T) {
			k, err := LookupKernel(id)
			if err != nil {
				t.Fatalf("LookupKernel error = %v", err)
			}
			if err := k.validate(); err != nil {
				t.Fatalf("kernel shape invalid: %v", err)
			}

			s := k.Radius()
			sum := 0.0
			for i, row := range k {
				for j, w := range row {
					if w < 0 {
						t.Errorf("weight (%d,%d) = %v is negative", i, j, w)
					}
					// Nothing above the centre row or at/behind the centre.
					if (i < s || (i == s && j <= s)) && w != 0 {
						t.Errorf("weight (%d,%d) = %v outside the forward half-plane", i, j, w)
					}
					sum += w
				}
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("weights sum to %v, want 1", sum)
			}
		})
	}
}

func TestFloydSteinbergLayout(t *testing.T) {
	k, _ := LookupKernel(FloydSteinberg)
	want := Kernel{
		{0, 0, 0},
		{0, 0, 7. / 16},
		{3. / 16, 5. / 16, 1. / 16},
	}
	if diff := cmp.Diff(want, k); diff != "" {
		t.Errorf("Floyd-Steinberg mismatch (-want +got):\n%s", diff)
	}

	flipped, err := k.FlipLR()
	if err != nil {
		t.Fatalf("FlipLR error = %v", err)
	}
	wantFlipped := Kernel{
		{0, 0, 0},
		{7. / 16, 0, 0},
		{1. / 16, 5. / 16, 3. / 16},
	}
	if diff := cmp.Diff(wantFlipped, flipped); diff != "" {
		t.Errorf("FlipLR mismatch (-want +got):\n%s", diff)
	}
}

func TestFlipLRTwiceIsIdentity(t *testing.T) {
	kernels := []Kernel{
		{{0.5}},
		{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
	}
	for _, id := range Kernels() {
		k, _ := LookupKernel(id)
		kernels = append(kernels, k)
	}

	for i, k := range kernels {
		once, err := k.FlipLR()
		if err != nil {
			t.Fatalf("kernel %d: FlipLR error = %v", i, err)
		}
		twice, err := once.FlipLR()
		if err != nil {
			t.Fatalf("kernel %d: second FlipLR error = %v", i, err)
		}
		if diff := cmp.Diff(k, twice); diff != "" {
			t.Errorf("kernel %d: fliplr(fliplr(k)) != k (-want +got):\n%s", i, diff)
		}
	}
}

func TestFlipLRRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		k    Kernel
	}{
		{"empty", Kernel{}},
		{"even", Kernel{{1, 0}, {0, 1}}},
		{"not square", Kernel{{1, 2, 3}, {4, 5, 6}, {7, 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.k.FlipLR(); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("FlipLR error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestLookupKernelReturnsCopy(t *testing.T) {
	k, _ := LookupKernel(Stucki)
	k[2][3] = 99

	again, _ := LookupKernel(Stucki)
	if again[2][3] != 8./42 {
		t.Errorf("catalog mutated through a looked-up kernel: got %v", again[2][3])
	}
}

func TestLookupKernelUnknown(t *testing.T) {
	for _, id := range []KernelID{0, 4, -1} {
		if _, err := LookupKernel(id); !errors.Is(err, ErrUnknownKernel) {
			t.Errorf("LookupKernel(%d) error = %v, want ErrUnknownKernel", id, err)
		}
	}
}

func TestParseKernel(t *testing.T) {
	tests := []struct {
		in      string
		want    KernelID
		wantErr bool
	}{
		{"FLOYD_STEINBERG", FloydSteinberg, false},
		{"floyd-steinberg", FloydSteinberg, false},
		{" Jarvis_Judice_Ninke ", JarvisJudiceNinke, false},
		{"stucki", Stucki, false},
		{"1", FloydSteinberg, false},
		{"2", JarvisJudiceNinke, false},
		{"3", Stucki, false},
		{"0", 0, true},
		{"atkinson", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKernel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownKernel) {
				t.Errorf("ParseKernel(%q) error = %v, want ErrUnknownKernel", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKernel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKernel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
