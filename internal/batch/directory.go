package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
)

var inputExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// PlanDirectory builds one job per image file directly inside inputDir.
// Outputs keep the input base name with the extension of format.
func PlanDirectory(inputDir, outputDir string, format imageprocessing.Format, quality int, opts imageprocessing.Options) ([]Job, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var jobs []Job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !inputExtensions[ext] {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		jobs = append(jobs, Job{
			ID:      uuid.New(),
			Input:   filepath.Join(inputDir, entry.Name()),
			Output:  filepath.Join(outputDir, base+format.Extension()),
			Options: opts,
			Format:  format,
			Quality: quality,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}

// Run executes jobs on a fresh pool of workerCount workers and returns the
// results in job order.
func Run(ctx context.Context, jobs []Job, workerCount int) []JobResult {
	index := make(map[uuid.UUID]int, len(jobs))
	for i := range jobs {
		if jobs[i].ID == uuid.Nil {
			jobs[i].ID = uuid.New()
		}
		index[jobs[i].ID] = i
	}

	pool := NewPool(workerCount, len(jobs))
	pool.Start(ctx)

	results := make([]JobResult, len(jobs))
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range pool.Results() {
			results[index[res.JobID]] = res
		}
	}()

	for i, job := range jobs {
		if err := pool.Submit(ctx, job); err != nil {
			results[i] = JobResult{JobID: job.ID, Input: job.Input, Output: job.Output, Error: err}
		}
	}

	pool.Close()
	<-collected

	logging.InfoWithComponent(logging.ComponentBatch, "Batch finished", "jobs", len(jobs))
	return results
}
