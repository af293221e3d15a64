package main

import (
	// standard library
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// third-party
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/rmitchellscott/halftone/internal/batch"
	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/handlers"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/middleware"
	"github.com/rmitchellscott/halftone/internal/storage"
	"github.com/rmitchellscott/halftone/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage error")

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	settings := config.Load()
	presets, err := config.LoadPresets(settings.PresetsFile)
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentConfig, "Failed to load presets", "error", err)
		return exitError
	}

	if len(args) > 0 && args[0] == "serve" {
		if err := serve(settings, presets); err != nil {
			logging.ErrorWithComponent(logging.ComponentStartup, "Server failed", "error", err)
			return exitError
		}
		return exitOK
	}

	err = convert(args, settings, presets, stderr)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	default:
		logging.ErrorWithComponent(logging.ComponentEngine, "Conversion failed", "error", err)
		return exitError
	}
}

type cliFlags struct {
	operation string
	size      int
	kernel    string
	threshold int
	mbvq      bool
	gray      bool
	input     string
	output    string
	preset    string
	engine    string
	resize    string
	fit       string
	format    string
	quality   int
	workers   int
}

func newFlagSet(f *cliFlags, s config.Settings, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("halftone", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.operation, "option", "", "halftoning method: DITHERING or ERROR_DIFFUSION")
	fs.StringVar(&f.operation, "op", "", "alias of --option; also accepts 1 (dithering) or 2 (error diffusion)")
	fs.IntVar(&f.size, "size", s.MatrixSize, "ordered dither matrix size, a power of two >= 2")
	fs.StringVar(&f.kernel, "kernel", s.Kernel, "diffusion kernel: FLOYD_STEINBERG, JARVIS_JUDICE_NINKE, STUCKI or 1..3")
	fs.IntVar(&f.threshold, "threshold", s.Threshold, "diffusion threshold 0..255")
	fs.BoolVar(&f.mbvq, "mbvq", false, "quantize colour diffusion to the minimum brightness variation quadruple")
	fs.BoolVar(&f.gray, "bw", false, "convert to grayscale before halftoning")
	fs.StringVar(&f.input, "input", "", "input image file or directory")
	fs.StringVar(&f.input, "i", "", "shorthand for --input")
	fs.StringVar(&f.output, "output", "", "output image file or directory")
	fs.StringVar(&f.output, "o", "", "shorthand for --output")
	fs.StringVar(&f.preset, "preset", "", "named parameter preset")
	fs.StringVar(&f.engine, "engine", string(imageprocessing.EngineNative), "renderer: native or reference")
	fs.StringVar(&f.resize, "resize", "", "scale input to WIDTHxHEIGHT first")
	fs.StringVar(&f.fit, "fit", string(imageprocessing.FitContain), "resize mode: fit or fill")
	fs.StringVar(&f.format, "format", "", "output format: jpeg, png, bmp or tiff (default from output extension)")
	fs.IntVar(&f.quality, "quality", s.Quality, "JPEG quality 1..100")
	fs.IntVar(&f.workers, "workers", s.Workers, "parallel images when the input is a directory")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  halftone --option DITHERING|ERROR_DIFFUSION --input IN --output OUT [flags]\n")
		fmt.Fprintf(stderr, "  halftone serve\n  halftone --version\n\nFlags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// resolveOptions layers preset, then explicitly set flags, over the
// environment defaults.
func resolveOptions(fs *flag.FlagSet, f *cliFlags, s config.Settings, presets map[string]config.Preset) (imageprocessing.Options, error) {
	opts := imageprocessing.DefaultOptions(s)

	if f.preset != "" {
		p, ok := presets[f.preset]
		if !ok {
			return opts, fmt.Errorf("%w: unknown preset %q (allowed: %s)", errUsage, f.preset, strings.Join(config.PresetNames(presets), ", "))
		}
		if err := opts.ApplyPreset(p); err != nil {
			return opts, fmt.Errorf("%w: preset %q: %v", errUsage, f.preset, err)
		}
	} else if f.operation == "" {
		return opts, fmt.Errorf("%w: --option is required (allowed: %s, %s)", errUsage, imageprocessing.OpDithering, imageprocessing.OpErrorDiffusion)
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	var err error
	if f.operation != "" {
		if opts.Operation, err = imageprocessing.ParseOperation(f.operation); err != nil {
			return opts, fmt.Errorf("%w: %v (allowed: %s, %s)", errUsage, err, imageprocessing.OpDithering, imageprocessing.OpErrorDiffusion)
		}
	}
	if set["size"] || f.preset == "" {
		opts.MatrixSize = f.size
	}
	if set["kernel"] || f.preset == "" {
		if opts.Kernel, err = halftone.ParseKernel(f.kernel); err != nil {
			return opts, fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	if set["threshold"] || f.preset == "" {
		opts.Threshold = f.threshold
	}
	if set["mbvq"] {
		opts.MBVQ = f.mbvq
	}
	if set["bw"] {
		opts.Grayscale = f.gray
	}
	if opts.Engine, err = imageprocessing.ParseEngine(f.engine); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.Width, opts.Height, err = imageprocessing.ParseSize(f.resize); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.Fit, err = imageprocessing.ParseFitMode(f.fit); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	return opts, nil
}

func convert(args []string, s config.Settings, presets map[string]config.Preset, stderr io.Writer) error {
	var f cliFlags
	fs := newFlagSet(&f, s, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	if f.input == "" || f.output == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input and --output are required", errUsage)
	}

	opts, err := resolveOptions(fs, &f, s, presets)
	if err != nil {
		return err
	}

	var format imageprocessing.Format
	if f.format != "" {
		if format, err = imageprocessing.ParseFormat(f.format); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(f.input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if format == "" {
			format = imageprocessing.FormatPNG
		}
		return convertDirectory(ctx, f, format, opts)
	}

	if format == "" {
		if format, err = imageprocessing.FormatFromPath(f.output); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	res, err := batch.ProcessJob(batch.Job{
		Input:   f.input,
		Output:  f.output,
		Options: opts,
		Format:  format,
		Quality: f.quality,
	})
	if err != nil {
		return err
	}

	logging.InfoWithComponent(logging.ComponentEngine, "Wrote halftone",
		"output", f.output,
		"operation", opts.Operation,
		"width", res.Image.Width(),
		"height", res.Image.Height(),
		"duration", res.Duration)
	return nil
}

func convertDirectory(ctx context.Context, f cliFlags, format imageprocessing.Format, opts imageprocessing.Options) error {
	jobs, err := batch.PlanDirectory(f.input, f.output, format, f.quality, opts)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no images found in %s", f.input)
	}

	failed := 0
	for _, res := range batch.Run(ctx, jobs, f.workers) {
		if !res.Success() {
			failed++
			logging.ErrorWithComponent(logging.ComponentBatch, "Image failed", "input", res.Input, "error", res.Error)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(jobs))
	}
	return nil
}

func serve(settings config.Settings, presets map[string]config.Preset) error {
	logging.InfoWithComponent(logging.ComponentStartup, "Starting halftone service", "version", version.String())

	db, err := database.Initialize(database.GetDatabaseConfig())
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pool outlives the signal context so requests still draining
	// during Shutdown are rendered; each request's own context bounds its job.
	pool := batch.NewPool(settings.Workers, settings.Workers*4)
	pool.Start(context.Background())
	defer pool.Close()

	images := storage.NewImageStore(storage.NewFilesystemBackend(settings.DataDir))
	h := handlers.New(database.NewJobService(db), images, pool, presets, settings)
	h.StartRetention(ctx, time.Hour, settings.JobRetention)

	limiter := middleware.NewIPRateLimiter(settings.RateLimitPerMinute, settings.RateLimitBurst)
	limiter.StartCleanup(ctx, 5*time.Minute)

	if settings.GinMode != "" {
		gin.SetMode(settings.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"X-Job-ID", "X-Output-SHA256", "Retry-After"}
	router.Use(cors.New(corsConfig))

	h.Register(router,
		limiter.RateLimit(),
		middleware.RequestSizeLimit(int64(settings.MaxUploadMB)<<20),
	)

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "Listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.InfoWithComponent(logging.ComponentStartup, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.InfoWithComponent(logging.ComponentStartup, "Server stopped")
	return nil
}
