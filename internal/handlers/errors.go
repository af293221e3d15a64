package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/rmitchellscott/halftone/internal/batch"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/halftone"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/storage"
)

// validationErrorMessage returns a user-friendly validation error message.
func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			switch ve.Field() {
			case "Operation":
				return "operation must be DITHERING or ERROR_DIFFUSION"
			case "Size":
				return "size must be a power of two between 2 and 256"
			case "Threshold":
				return "threshold must be between 0 and 255"
			case "Format":
				return "format must be one of png, jpeg, bmp, tiff"
			case "Quality":
				return "quality must be between 1 and 100"
			case "Engine":
				return "engine must be native or reference"
			case "Fit":
				return "fit must be fit or fill"
			case "Kernel", "Preset", "Resize":
				if ve.Tag() == "max" {
					return ve.Field() + " is too long"
				}
			}
		}
	}
	return "Invalid request"
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, halftone.ErrInvalidParameter), errors.Is(err, halftone.ErrUnknownKernel):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrJobNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, batch.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, imageprocessing.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, batch.ErrPoolClosed), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Server errors are logged and their
// detail hidden from the client.
func respondError(c *gin.Context, err error, msg string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithComponent(logging.ComponentAPI, msg, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
