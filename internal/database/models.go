package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobStatus is the lifecycle state of a halftone job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// HalftoneJob records one request handled by the service.
type HalftoneJob struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Status    JobStatus      `gorm:"size:16;not null;default:'pending';index:idx_halftone_jobs_status_created,priority:1" json:"status"`
	Operation string         `gorm:"size:32;not null" json:"operation"`
	Params    datatypes.JSON `json:"params"`

	SourceName   string `gorm:"size:255" json:"source_name,omitempty"`
	SourceFormat string `gorm:"size:16" json:"source_format,omitempty"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`

	Width    int `json:"width"`
	Height   int `json:"height"`
	Channels int `json:"channels"`

	OutputKey    string `gorm:"size:255" json:"-"`
	OutputFormat string `gorm:"size:16" json:"output_format,omitempty"`
	OutputSize   int64  `json:"output_size"`
	OutputSHA256 string `gorm:"column:output_sha256;size:64" json:"output_sha256,omitempty"`

	DurationMs int64  `json:"duration_ms"`
	Error      string `gorm:"type:text" json:"error,omitempty"`
	ClientIP   string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `gorm:"index;index:idx_halftone_jobs_status_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID if not already set
func (j *HalftoneJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobPending
	}
	return nil
}

// SetParams stores params as the job's JSON parameter column.
func (j *HalftoneJob) SetParams(params map[string]string) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	j.Params = datatypes.JSON(data)
	return nil
}

// ParamMap decodes the JSON parameter column.
func (j *HalftoneJob) ParamMap() (map[string]string, error) {
	params := map[string]string{}
	if len(j.Params) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return nil, err
	}
	return params, nil
}
