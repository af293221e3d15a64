package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrJobNotFound is returned when no job has the requested ID.
var ErrJobNotFound = errors.New("job not found")

// JobService persists halftone jobs.
type JobService struct {
	db *gorm.DB
}

// NewJobService creates a new job service
func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

// Create inserts a new job.
func (s *JobService) Create(ctx context.Context, job *HalftoneJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get loads a job by ID.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*HalftoneJob, error) {
	var job HalftoneJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return &job, nil
}

// List returns jobs newest first, optionally filtered by status, plus the
// total number of matching jobs.
func (s *JobService) List(ctx context.Context, status JobStatus, limit, offset int) ([]HalftoneJob, int64, error) {
	query := s.db.WithContext(ctx).Model(&HalftoneJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []HalftoneJob
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// Complete stores the job's output fields and marks it completed.
func (s *JobService) Complete(ctx context.Context, job *HalftoneJob) error {
	job.Status = JobCompleted
	job.Error = ""
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// Fail marks the job failed with cause.
func (s *JobService) Fail(ctx context.Context, job *HalftoneJob, cause error) error {
	job.Status = JobFailed
	job.Error = cause.Error()
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}
	return nil
}

// Delete removes a job and returns the removed record.
func (s *JobService) Delete(ctx context.Context, id uuid.UUID) (*HalftoneJob, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&HalftoneJob{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete job: %w", err)
	}
	return job, nil
}

// DeleteOlderThan removes jobs created before cutoff and returns them so
// their outputs can be removed too.
func (s *JobService) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]HalftoneJob, error) {
	var jobs []HalftoneJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_at < ?", cutoff).Find(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(jobs))
		for i, job := range jobs {
			ids[i] = job.ID
		}
		return tx.Where("id IN ?", ids).Delete(&HalftoneJob{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	return jobs, nil
}

// CountByStatus returns the number of jobs in each status.
func (s *JobService) CountByStatus(ctx context.Context) (map[JobStatus]int64, error) {
	var rows []struct {
		Status JobStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&HalftoneJob{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	counts := make(map[JobStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
