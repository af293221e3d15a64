// Package batch runs halftone jobs on a fixed pool of workers. The CLI uses
// it for directory conversions and the HTTP service to bound concurrent
// renders.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
)

var (
	// ErrPoolClosed is returned when submitting to a pool that is not running.
	ErrPoolClosed = errors.New("worker pool is not running")

	// ErrQueueFull is returned by TrySubmit and TryDo when no queue slot is free.
	ErrQueueFull = errors.New("job queue is full")
)

// Job is one halftone conversion. The source is read from Input when set,
// otherwise Image is used. The output is written to Output when set.
type Job struct {
	ID      uuid.UUID
	Input   string
	Image   image.Image
	Output  string
	Options imageprocessing.Options
	Format  imageprocessing.Format
	Quality int

	ctx  context.Context
	done chan JobResult
}

// JobResult reports the outcome of a job.
type JobResult struct {
	JobID    uuid.UUID
	Input    string
	Output   string
	Result   *imageprocessing.Result
	Error    error
	Duration time.Duration
}

// Success reports whether the job completed without error.
func (r JobResult) Success() bool { return r.Error == nil }

// Metrics tracks worker pool activity.
type Metrics struct {
	TotalJobs     int64
	SuccessJobs   int64
	FailedJobs    int64
	ActiveWorkers int32
	QueueLength   int32
}

// Pool manages workers pulling jobs from a shared channel.
type Pool struct {
	workerCount int
	jobChan     chan Job
	resultChan  chan JobResult
	wg          sync.WaitGroup

	totalJobs     atomic.Int64
	successJobs   atomic.Int64
	failedJobs    atomic.Int64
	activeWorkers atomic.Int32

	mu      sync.RWMutex
	running bool
	closed  bool
}

// NewPool creates a pool. Non-positive arguments select one worker and a
// queue as deep as the worker count.
func NewPool(workerCount, bufferSize int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if bufferSize <= 0 {
		bufferSize = workerCount
	}
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan Job, bufferSize),
		resultChan:  make(chan JobResult, bufferSize),
	}
}

// Start launches the workers. Cancelling ctx makes workers fail the
// Submit-queued jobs they pick up afterwards; jobs run through Do and TryDo
// follow their caller's context instead. Close still has to be called.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running || p.closed {
		return
	}
	p.running = true

	logging.InfoWithComponent(logging.ComponentBatch, "Starting worker pool", "workers", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Close stops accepting jobs, waits for queued jobs to finish and closes the
// Results channel.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	wasRunning := p.running
	p.running = false
	close(p.jobChan)
	p.mu.Unlock()

	if wasRunning {
		p.wg.Wait()
	}
	close(p.resultChan)
	logging.InfoWithComponent(logging.ComponentBatch, "Worker pool stopped",
		"total", p.totalJobs.Load(),
		"succeeded", p.successJobs.Load(),
		"failed", p.failedJobs.Load())
}

// Submit queues job, blocking while the queue is full. Results of jobs
// queued with Submit are delivered on Results.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return ErrPoolClosed
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	select {
	case p.jobChan <- job:
		p.totalJobs.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues job without blocking. It returns ErrQueueFull when the
// queue has no free slot.
func (p *Pool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return ErrPoolClosed
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	select {
	case p.jobChan <- job:
		p.totalJobs.Add(1)
		return nil
	default:
		logging.WarnWithComponent(logging.ComponentBatch, "Job queue full, rejecting job", "job_id", job.ID)
		return ErrQueueFull
	}
}

// Do runs job on the pool and waits for its result. The job is skipped if
// ctx is done before a worker picks it up. The result is not delivered on
// Results.
func (p *Pool) Do(ctx context.Context, job Job) JobResult {
	return p.do(ctx, job, func(job Job) error { return p.Submit(ctx, job) })
}

// TryDo is Do without waiting for queue space: a full queue fails
// immediately with ErrQueueFull.
func (p *Pool) TryDo(ctx context.Context, job Job) JobResult {
	return p.do(ctx, job, p.TrySubmit)
}

func (p *Pool) do(ctx context.Context, job Job, submit func(Job) error) JobResult {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.ctx = ctx
	job.done = make(chan JobResult, 1)

	if err := submit(job); err != nil {
		return JobResult{JobID: job.ID, Input: job.Input, Output: job.Output, Error: err}
	}

	select {
	case res := <-job.done:
		return res
	case <-ctx.Done():
		return JobResult{JobID: job.ID, Input: job.Input, Output: job.Output, Error: ctx.Err()}
	}
}

// Results delivers the results of jobs queued with Submit or TrySubmit.
// It is closed by Close.
func (p *Pool) Results() <-chan JobResult {
	return p.resultChan
}

// GetMetrics returns a snapshot of the pool counters.
func (p *Pool) GetMetrics() Metrics {
	return Metrics{
		TotalJobs:     p.totalJobs.Load(),
		SuccessJobs:   p.successJobs.Load(),
		FailedJobs:    p.failedJobs.Load(),
		ActiveWorkers: p.activeWorkers.Load(),
		QueueLength:   int32(len(p.jobChan)),
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobChan {
		p.activeWorkers.Add(1)
		res := p.run(ctx, job)
		p.activeWorkers.Add(-1)

		if !res.Success() {
			p.failedJobs.Add(1)
			logging.ErrorWithComponent(logging.ComponentBatch, "Job failed",
				"worker", id, "job_id", job.ID, "input", job.Input, "error", res.Error)
		} else {
			p.successJobs.Add(1)
			logging.DebugWithComponent(logging.ComponentBatch, "Job completed",
				"worker", id, "job_id", job.ID, "input", job.Input, "duration", res.Duration)
		}

		if job.done != nil {
			job.done <- res
		} else {
			p.resultChan <- res
		}
	}
}

func (p *Pool) run(ctx context.Context, job Job) JobResult {
	start := time.Now()
	res := JobResult{JobID: job.ID, Input: job.Input, Output: job.Output}

	if job.ctx != nil {
		ctx = job.ctx
	}
	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}

	result, err := ProcessJob(job)
	res.Result = result
	res.Error = err
	res.Duration = time.Since(start)
	return res
}

// ProcessJob loads, halftones and saves a single job synchronously.
func ProcessJob(job Job) (*imageprocessing.Result, error) {
	img := job.Image
	if job.Input != "" {
		loaded, _, err := imageprocessing.LoadFile(job.Input, job.Options.MaxPixels)
		if err != nil {
			return nil, err
		}
		img = loaded
	}
	if img == nil {
		return nil, fmt.Errorf("job %s has no input image", job.ID)
	}

	result, err := imageprocessing.Process(img, job.Options)
	if err != nil {
		return nil, err
	}

	if job.Output != "" {
		format := job.Format
		if format == "" {
			if format, err = imageprocessing.FormatFromPath(job.Output); err != nil {
				return nil, err
			}
		}
		if err := imageprocessing.SaveFile(job.Output, result.Image, format, job.Quality); err != nil {
			return nil, err
		}
	}
	return result, nil
}
