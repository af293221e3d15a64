package imageprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/rmitchellscott/halftone/internal/halftone"
)

// squareKernel pads a library matrix (current pixel on the first row) with
// empty rows so the current pixel sits at the centre.
func squareKernel(m dither.ErrorDiffusionMatrix) halftone.Kernel {
	size := len(m[0])
	pad := size - len(m)
	k := make(halftone.Kernel, size)
	for i := range k {
		k[i] = make([]float64, size)
		if i >= pad {
			for j, w := range m[i-pad] {
				k[i][j] = float64(w)
			}
		}
	}
	return k
}

func TestReferenceMatricesMatchCatalog(t *testing.T) {
	for _, id := range halftone.Kernels() {
		t.Run(id.String(), func(t *testing.T) {
			m, err := ReferenceMatrix(id)
			if err != nil {
				t.Fatalf("ReferenceMatrix error = %v", err)
			}
			want, err := halftone.LookupKernel(id)
			if err != nil {
				t.Fatalf("LookupKernel error = %v", err)
			}
			got := squareKernel(m)
			if len(got) != len(want) {
				t.Fatalf("size = %d, want %d", len(got), len(want))
			}
			for i := range want {
				for j := range want[i] {
					if math.Abs(got[i][j]-want[i][j]) > 1e-6 {
						t.Errorf("weight[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
					}
				}
			}
		})
	}

	if _, err := ReferenceMatrix(halftone.KernelID(42)); !errors.Is(err, halftone.ErrUnknownKernel) {
		t.Errorf("unknown kernel error = %v", err)
	}
}

func TestReferenceDitherRejectsUnknownOperation(t *testing.T) {
	opts := DefaultOptions(testSettings())
	opts.Operation = "BLUR"
	if _, err := ReferenceDither(gradientImage(2, 2), opts); !errors.Is(err, halftone.ErrInvalidParameter) {
		t.Errorf("error = %v", err)
	}
	if _, err := ReferenceDither(nil, opts); err == nil {
		t.Error("expected error for nil image")
	}
}
