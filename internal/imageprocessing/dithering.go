package imageprocessing

import (
	"fmt"
	"image"
	"image/color"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/rmitchellscott/halftone/internal/halftone"
)

// referenceMatrices maps catalog kernels onto the dither library's own
// copies of the same matrices.
var referenceMatrices = map[halftone.KernelID]dither.ErrorDiffusionMatrix{
	halftone.FloydSteinberg:    dither.FloydSteinberg,
	halftone.JarvisJudiceNinke: dither.JarvisJudiceNinke,
	halftone.Stucki:            dither.Stucki,
}

// ReferenceMatrix returns the dither library matrix for a catalog kernel.
func ReferenceMatrix(id halftone.KernelID) (dither.ErrorDiffusionMatrix, error) {
	m, ok := referenceMatrices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", halftone.ErrUnknownKernel, int(id))
	}
	return m, nil
}

// ReferenceDither renders a paletted copy of img with the dither library
// instead of the built-in engine. Grayscale renders map onto black and white, colour
// renders onto the eight cube vertices by nearest colour. The library
// works in linear RGB, so tones differ slightly from the native engine.
func ReferenceDither(img image.Image, opts Options) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", halftone.ErrInvalidParameter)
	}

	var palette color.Palette = VertexPalette
	if opts.Grayscale || isGrayModel(img.ColorModel()) {
		palette = BlackWhitePalette
	}

	ditherer := dither.NewDitherer(palette)
	switch opts.Operation {
	case OpDithering:
		ditherer.Mapper = dither.Bayer(uint(opts.MatrixSize), uint(opts.MatrixSize), 1.0)
	case OpErrorDiffusion:
		matrix, err := ReferenceMatrix(opts.Kernel)
		if err != nil {
			return nil, err
		}
		ditherer.Matrix = matrix
		ditherer.Serpentine = true
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", halftone.ErrInvalidParameter, opts.Operation)
	}

	return ditherer.DitherPaletted(img), nil
}

func isGrayModel(m color.Model) bool {
	return m == color.GrayModel || m == color.Gray16Model
}
