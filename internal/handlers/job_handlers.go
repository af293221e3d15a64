package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/logging"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + key})
		return 0, false
	}
	return n, true
}

// ListJobsHandler lists recorded jobs newest first.
func (h *Handler) ListJobsHandler(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultPageSize)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	status := database.JobStatus(c.Query("status"))
	switch status {
	case "", database.JobPending, database.JobCompleted, database.JobFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	jobs, total, err := h.jobs.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetJobHandler returns a single job record.
func (h *Handler) GetJobHandler(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// JobImageHandler streams the stored output of a completed job.
func (h *Handler) JobImageHandler(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load job")
		return
	}
	if job.Status != database.JobCompleted || job.OutputKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job has no output", "status": job.Status})
		return
	}
	c.Header("X-Job-ID", job.ID.String())
	h.serveOutput(c, job)
}

// DeleteJobHandler removes a job and its stored output.
func (h *Handler) DeleteJobHandler(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	job, err := h.jobs.Delete(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to delete job")
		return
	}
	if job.OutputKey != "" {
		if err := h.images.Delete(ctx, job.OutputKey); err != nil {
			logging.WarnWithComponent(logging.ComponentStorage, "Failed to delete job output", "job_id", id, "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// CleanupExpired removes jobs created more than maxAge ago together with
// their outputs, then sweeps outputs left without a job.
func (h *Handler) CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	jobs, err := h.jobs.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		if job.OutputKey == "" {
			continue
		}
		if err := h.images.Delete(ctx, job.OutputKey); err != nil {
			logging.WarnWithComponent(logging.ComponentStorage, "Failed to delete job output", "job_id", job.ID, "error", err)
		}
	}
	if _, err := h.images.CleanupOlderThan(ctx, maxAge); err != nil {
		return len(jobs), err
	}
	if len(jobs) > 0 {
		logging.InfoWithComponent(logging.ComponentDatabase, "Removed expired jobs", "count", len(jobs))
	}
	return len(jobs), nil
}

// StartRetention runs CleanupExpired every interval until ctx is cancelled.
func (h *Handler) StartRetention(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := h.CleanupExpired(ctx, maxAge); err != nil {
					logging.ErrorWithComponent(logging.ComponentDatabase, "Retention cleanup failed", "error", err)
				}
			}
		}
	}()
}
