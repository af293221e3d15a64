package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/halftone/internal/batch"
	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/storage"
	"github.com/rmitchellscott/halftone/internal/version"
)

// Handler serves the halftoning HTTP API.
type Handler struct {
	jobs     *database.JobService
	images   *storage.ImageStore
	pool     *batch.Pool
	presets  map[string]config.Preset
	settings config.Settings
}

// New creates a Handler. pool must already be started.
func New(jobs *database.JobService, images *storage.ImageStore, pool *batch.Pool, presets map[string]config.Preset, settings config.Settings) *Handler {
	return &Handler{
		jobs:     jobs,
		images:   images,
		pool:     pool,
		presets:  presets,
		settings: settings,
	}
}

// Register mounts every route on r. Middleware that applies to uploads only
// is passed in upload.
func (h *Handler) Register(r gin.IRouter, upload ...gin.HandlerFunc) {
	r.GET("/health", h.HealthHandler)

	api := r.Group("/api")
	api.POST("/halftone", append(upload, h.HalftoneHandler)...)
	api.GET("/jobs", h.ListJobsHandler)
	api.GET("/jobs/:id", h.GetJobHandler)
	api.GET("/jobs/:id/image", h.JobImageHandler)
	api.DELETE("/jobs/:id", h.DeleteJobHandler)
	api.GET("/kernels", h.KernelsHandler)
	api.GET("/presets", h.PresetsHandler)
	api.GET("/version", VersionHandler)
}

// HealthHandler reports worker pool and job counters.
func (h *Handler) HealthHandler(c *gin.Context) {
	counts, err := h.jobs.CountByStatus(c.Request.Context())
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentAPI, "Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unavailable"})
		return
	}

	metrics := h.pool.GetMetrics()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
		"workers": gin.H{
			"active":    metrics.ActiveWorkers,
			"queued":    metrics.QueueLength,
			"total":     metrics.TotalJobs,
			"succeeded": metrics.SuccessJobs,
			"failed":    metrics.FailedJobs,
		},
		"jobs": counts,
	})
}

// KernelsHandler lists the error diffusion kernels.
func (h *Handler) KernelsHandler(c *gin.Context) {
	type kernelInfo struct {
		ID      int         `json:"id"`
		Name    string      `json:"name"`
		Size    int         `json:"size"`
		Weights [][]float64 `json:"weights"`
	}

	var kernels []kernelInfo
	for _, id := range halftone.Kernels() {
		k, err := halftone.LookupKernel(id)
		if err != nil {
			continue
		}
		kernels = append(kernels, kernelInfo{ID: int(id), Name: id.String(), Size: len(k), Weights: k})
	}
	c.JSON(http.StatusOK, gin.H{"kernels": kernels})
}

// PresetsHandler lists the named parameter presets.
func (h *Handler) PresetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"presets": h.presets,
		"names":   config.PresetNames(h.presets),
	})
}

// VersionHandler returns build information.
func VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Info())
}
