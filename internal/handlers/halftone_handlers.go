package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/halftone/internal/batch"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
)

// HalftoneRequest carries the form fields of POST /api/halftone. Unset
// fields fall back to the preset, then to the environment defaults.
type HalftoneRequest struct {
	Operation string `form:"operation" binding:"omitempty,oneof=DITHERING ERROR_DIFFUSION dithering error_diffusion 1 2"`
	Size      *int   `form:"size" binding:"omitempty,min=2,max=256"`
	Kernel    string `form:"kernel" binding:"omitempty,max=32"`
	MBVQ      bool   `form:"mbvq"`
	Threshold *int   `form:"threshold" binding:"omitempty,min=0,max=255"`
	Grayscale bool   `form:"bw"`
	Format    string `form:"format" binding:"omitempty,oneof=png jpeg jpg bmp tiff tif"`
	Quality   int    `form:"quality" binding:"omitempty,min=1,max=100"`
	Preset    string `form:"preset" binding:"omitempty,max=64"`
	Engine    string `form:"engine" binding:"omitempty,oneof=native reference"`
	Resize    string `form:"resize" binding:"omitempty,max=16"`
	Fit       string `form:"fit" binding:"omitempty,oneof=fit fill contain cover"`
}

// options resolves the request against presets and defaults.
func (h *Handler) options(req HalftoneRequest) (imageprocessing.Options, error) {
	opts := imageprocessing.DefaultOptions(h.settings)

	if req.Preset != "" {
		p, ok := h.presets[req.Preset]
		if !ok {
			return opts, fmt.Errorf("%w: unknown preset %q", halftone.ErrInvalidParameter, req.Preset)
		}
		if err := opts.ApplyPreset(p); err != nil {
			return opts, err
		}
	}

	if req.Operation != "" {
		op, err := imageprocessing.ParseOperation(req.Operation)
		if err != nil {
			return opts, err
		}
		opts.Operation = op
	}
	if req.Size != nil {
		opts.MatrixSize = *req.Size
	}
	if req.Kernel != "" {
		id, err := halftone.ParseKernel(req.Kernel)
		if err != nil {
			return opts, err
		}
		opts.Kernel = id
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.MBVQ {
		opts.MBVQ = true
	}
	if req.Grayscale {
		opts.Grayscale = true
	}

	engine, err := imageprocessing.ParseEngine(req.Engine)
	if err != nil {
		return opts, err
	}
	opts.Engine = engine

	if opts.Width, opts.Height, err = imageprocessing.ParseSize(req.Resize); err != nil {
		return opts, fmt.Errorf("%w: %v", halftone.ErrInvalidParameter, err)
	}
	if opts.Fit, err = imageprocessing.ParseFitMode(req.Fit); err != nil {
		return opts, fmt.Errorf("%w: %v", halftone.ErrInvalidParameter, err)
	}

	return opts, opts.Validate()
}

// HalftoneHandler halftones the uploaded "image" file and returns the
// encoded result. The job ID is sent in the X-Job-ID header.
func (h *Handler) HalftoneHandler(c *gin.Context) {
	var req HalftoneRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErrorMessage(err)})
		return
	}

	opts, err := h.options(req)
	if err != nil {
		respondError(c, err, "Invalid parameters")
		return
	}

	format := imageprocessing.FormatPNG
	if req.Format != "" {
		if format, err = imageprocessing.ParseFormat(req.Format); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	quality := req.Quality
	if quality == 0 {
		quality = h.settings.Quality
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err, "Failed to read upload")
		return
	}
	defer file.Close()

	img, sourceFormat, err := imageprocessing.Decode(file, opts.MaxPixels)
	if errors.Is(err, imageprocessing.ErrImageTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	ctx := c.Request.Context()
	job := &database.HalftoneJob{
		Operation:    string(opts.Operation),
		SourceName:   fileHeader.Filename,
		SourceFormat: sourceFormat,
		SourceWidth:  img.Bounds().Dx(),
		SourceHeight: img.Bounds().Dy(),
		OutputFormat: string(format),
		ClientIP:     c.ClientIP(),
	}
	if err := job.SetParams(opts.Params()); err != nil {
		respondError(c, err, "Failed to record job")
		return
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		respondError(c, err, "Failed to record job")
		return
	}
	c.Header("X-Job-ID", job.ID.String())

	res := h.pool.TryDo(ctx, batch.Job{ID: job.ID, Image: img, Options: opts})
	if !res.Success() {
		if errors.Is(res.Error, batch.ErrQueueFull) {
			c.Header("Retry-After", "1")
		}
		if err := h.jobs.Fail(ctx, job, res.Error); err != nil {
			logging.ErrorWithComponent(logging.ComponentAPI, "Failed to record job failure", "job_id", job.ID, "error", err)
		}
		respondError(c, res.Error, "Halftoning failed")
		return
	}

	out := res.Result.Image
	stored, err := h.images.Save(ctx, job.ID, out, format, quality)
	if err != nil {
		if ferr := h.jobs.Fail(ctx, job, err); ferr != nil {
			logging.ErrorWithComponent(logging.ComponentAPI, "Failed to record job failure", "job_id", job.ID, "error", ferr)
		}
		respondError(c, err, "Failed to store output")
		return
	}

	job.Width, job.Height, job.Channels = out.Width(), out.Height(), out.Channels()
	job.OutputKey = stored.Key
	job.OutputSize = stored.Size
	job.OutputSHA256 = stored.SHA256
	job.DurationMs = res.Result.Duration.Milliseconds()
	if err := h.jobs.Complete(ctx, job); err != nil {
		respondError(c, err, "Failed to record job")
		return
	}

	logging.InfoWithComponent(logging.ComponentAPI, "Halftone job completed",
		"job_id", job.ID,
		"operation", opts.Operation,
		"width", job.Width,
		"height", job.Height,
		"duration_ms", job.DurationMs)

	h.serveOutput(c, job)
}

// serveOutput streams a completed job's stored image.
func (h *Handler) serveOutput(c *gin.Context, job *database.HalftoneJob) {
	reader, err := h.images.Open(c.Request.Context(), job.OutputKey)
	if err != nil {
		respondError(c, err, "Failed to open output")
		return
	}
	defer reader.Close()

	format := imageprocessing.Format(job.OutputFormat)
	c.DataFromReader(http.StatusOK, job.OutputSize, format.ContentType(), reader, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s%s"`, job.ID, format.Extension()),
		"X-Output-SHA256":     job.OutputSHA256,
	})
}
