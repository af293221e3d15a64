package imageprocessing

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

// Operation selects the halftoning method.
type Operation string

const (
	OpDithering      Operation = "DITHERING"
	OpErrorDiffusion Operation = "ERROR_DIFFUSION"
)

// ParseOperation accepts the operation names, their lower-case forms and
// the numeric aliases 1 (dithering) and 2 (error diffusion).
func ParseOperation(s string) (Operation, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "1", "DITHERING", "ORDERED":
		return OpDithering, nil
	case "2", "ERROR_DIFFUSION", "DIFFUSION":
		return OpErrorDiffusion, nil
	}
	return "", fmt.Errorf("%w: unknown operation %q", halftone.ErrInvalidParameter, s)
}

// Engine selects which implementation renders the halftone.
type Engine string

const (
	EngineNative    Engine = "native"
	EngineReference Engine = "reference"
)

// ParseEngine accepts "native" and "reference". Empty means native.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineNative:
		return EngineNative, nil
	case EngineReference:
		return EngineReference, nil
	}
	return "", fmt.Errorf("%w: unknown engine %q", halftone.ErrInvalidParameter, s)
}

// Options is one fully resolved halftoning request. MBVQ is only
// available on the native engine.
type Options struct {
	Operation  Operation
	MatrixSize int
	Kernel     halftone.KernelID
	MBVQ       bool
	Threshold  int
	Grayscale  bool
	Engine     Engine

	// MaxPixels caps the resize target and decoded inputs; zero means no limit.
	MaxPixels int

	// Width and Height resize the input before halftoning when both are set.
	Width  int
	Height int
	Fit    FitMode
}

// DefaultOptions returns options seeded from the environment settings.
func DefaultOptions(s config.Settings) Options {
	opts := Options{
		Operation:  OpErrorDiffusion,
		MatrixSize: s.MatrixSize,
		Kernel:     halftone.FloydSteinberg,
		Threshold:  s.Threshold,
		Engine:     EngineNative,
		Fit:        FitContain,
		MaxPixels:  s.MaxPixels,
	}
	if id, err := halftone.ParseKernel(s.Kernel); err == nil {
		opts.Kernel = id
	} else {
		logging.WarnWithComponent(logging.ComponentConfig, "Ignoring default kernel", "kernel", s.Kernel, "error", err)
	}
	return opts
}

// ApplyPreset overrides the fields the preset sets.
func (o *Options) ApplyPreset(p config.Preset) error {
	op, err := ParseOperation(p.Operation)
	if err != nil {
		return err
	}
	o.Operation = op
	if p.Size != 0 {
		o.MatrixSize = p.Size
	}
	if p.Kernel != "" {
		id, err := halftone.ParseKernel(p.Kernel)
		if err != nil {
			return err
		}
		o.Kernel = id
	}
	if p.Threshold != nil {
		o.Threshold = *p.Threshold
	}
	o.MBVQ = p.MBVQ
	o.Grayscale = p.Grayscale
	return nil
}

// Validate checks the options without touching any pixels.
func (o Options) Validate() error {
	switch o.Operation {
	case OpDithering:
		if o.MatrixSize < 2 || o.MatrixSize&(o.MatrixSize-1) != 0 {
			return fmt.Errorf("%w: matrix size %d is not a power of two >= 2", halftone.ErrInvalidParameter, o.MatrixSize)
		}
	case OpErrorDiffusion:
		if _, err := halftone.LookupKernel(o.Kernel); err != nil {
			return err
		}
		if o.Threshold < 0 || o.Threshold > 255 {
			return fmt.Errorf("%w: threshold %d out of range 0..255", halftone.ErrInvalidParameter, o.Threshold)
		}
		if o.MBVQ && o.Grayscale {
			return fmt.Errorf("%w: MBVQ needs a colour image", halftone.ErrInvalidParameter)
		}
		if o.MBVQ && o.Engine == EngineReference {
			return fmt.Errorf("%w: MBVQ is not supported by the reference engine", halftone.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", halftone.ErrInvalidParameter, o.Operation)
	}
	if o.Engine != EngineNative && o.Engine != EngineReference {
		return fmt.Errorf("%w: unknown engine %q", halftone.ErrInvalidParameter, o.Engine)
	}
	if (o.Width > 0) != (o.Height > 0) || o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("%w: resize needs both width and height", halftone.ErrInvalidParameter)
	}
	if exceedsPixels(o.Width, o.Height, o.MaxPixels) {
		return fmt.Errorf("%w: %w: resize %dx%d exceeds %d pixels", halftone.ErrInvalidParameter, ErrImageTooLarge, o.Width, o.Height, o.MaxPixels)
	}
	return nil
}

// Params flattens the options into a string map for job records and logs.
func (o Options) Params() map[string]string {
	p := map[string]string{
		"operation": string(o.Operation),
		"engine":    string(o.Engine),
		"bw":        strconv.FormatBool(o.Grayscale),
	}
	if o.Operation == OpDithering {
		p["size"] = strconv.Itoa(o.MatrixSize)
	} else {
		p["kernel"] = o.Kernel.String()
		p["threshold"] = strconv.Itoa(o.Threshold)
		p["mbvq"] = strconv.FormatBool(o.MBVQ)
	}
	if o.Width > 0 {
		p["resize"] = fmt.Sprintf("%dx%d", o.Width, o.Height)
		p["fit"] = string(o.Fit)
	}
	return p
}

// Result is a halftoned image plus timing.
type Result struct {
	Image    *pixbuf.Image
	Duration time.Duration
}

// Process halftones img according to opts. The input is left untouched.
func Process(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", halftone.ErrInvalidParameter)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	if opts.Width > 0 && opts.Height > 0 {
		img = Resize(img, opts.Width, opts.Height, opts.Fit)
	}

	buf := pixbuf.FromImage(img)
	if opts.Grayscale {
		buf = buf.ToGray()
	}

	out, err := render(buf, opts)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logging.DebugWithComponent(logging.ComponentEngine, "Halftone rendered",
		"operation", opts.Operation,
		"engine", opts.Engine,
		"width", out.Width(),
		"height", out.Height(),
		"channels", out.Channels(),
		"duration", elapsed)

	return &Result{Image: out, Duration: elapsed}, nil
}

func render(buf *pixbuf.Image, opts Options) (*pixbuf.Image, error) {
	if opts.Engine == EngineReference {
		rendered, err := ReferenceDither(buf.ToImage(), opts)
		if err != nil {
			return nil, err
		}
		out := pixbuf.FromImage(rendered)
		if buf.Channels() == 1 {
			out = FirstChannel(out)
		}
		return out, nil
	}

	var (
		result halftone.Buffer
		err    error
	)
	switch opts.Operation {
	case OpDithering:
		result, err = halftone.OrderedDither(buf, opts.MatrixSize)
	case OpErrorDiffusion:
		result, err = halftone.ErrorDiffuse(buf, opts.Kernel, opts.MBVQ, opts.Threshold)
	}
	if err != nil {
		return nil, err
	}
	return pixbuf.FromBuffer(result), nil
}
