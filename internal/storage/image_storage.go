package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

const outputPrefix = "outputs/"

// StoredImage describes an encoded halftone written to a backend.
type StoredImage struct {
	Key         string
	Size        int64
	SHA256      string
	ContentType string
}

// ImageStore keeps encoded halftone outputs keyed by job.
type ImageStore struct {
	backend Backend
}

// NewImageStore creates an image store on backend.
func NewImageStore(backend Backend) *ImageStore {
	return &ImageStore{backend: backend}
}

// OutputKey returns the storage key of a job's output.
func OutputKey(jobID uuid.UUID, format imageprocessing.Format) string {
	return outputPrefix + jobID.String() + format.Extension()
}

// Save encodes m and stores it under the job's output key.
func (s *ImageStore) Save(ctx context.Context, jobID uuid.UUID, m *pixbuf.Image, format imageprocessing.Format, quality int) (*StoredImage, error) {
	var buf bytes.Buffer
	if err := imageprocessing.Encode(&buf, m, format, quality); err != nil {
		return nil, err
	}

	hash := sha256.Sum256(buf.Bytes())
	key := OutputKey(jobID, format)
	n, err := s.backend.Put(ctx, key, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store output: %w", err)
	}

	return &StoredImage{
		Key:         key,
		Size:        n,
		SHA256:      hex.EncodeToString(hash[:]),
		ContentType: format.ContentType(),
	}, nil
}

// Open returns a reader for a stored output.
func (s *ImageStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored output.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// CleanupOlderThan removes outputs last modified before now minus maxAge
// and returns how many were removed.
func (s *ImageStore) CleanupOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	files, err := s.backend.ListWithInfo(ctx, outputPrefix)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, f := range files {
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, f.Key); err != nil {
			logging.WarnWithComponent(logging.ComponentStorage, "Failed to remove old output", "key", f.Key, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logging.InfoWithComponent(logging.ComponentStorage, "Removed expired outputs", "count", removed)
	}
	return removed, nil
}
