// Package job runs export requests received over HTTP. A single worker
// executes queued jobs one after another, so exports never overlap.
package job

import (
	"context"
	"dataset-exporter/internal/logging"
	"dataset-exporter/pkg/models"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultQueueSize = 64
	jobRetention     = 24 * time.Hour
	cleanupInterval  = time.Hour
)

// Manager stores jobs and feeds them to the export worker.
// Every job gets its own directory {storageDir}/{jobID}.
type Manager struct {
	runner     Runner
	storageDir string
	logger     zerolog.Logger
	queue  chan string
	now    func() time.Time

	mu      sync.RWMutex
	jobs    map[string]*Job
	running bool
}

func NewManager(runner Runner, storageDir string, logger zerolog.Logger) *Manager {
	return &Manager{
		runner:     runner,
		storageDir: storageDir,
		logger:     logging.Component(logger, "job"),
		queue:      make(chan string, defaultQueueSize),
		now:        time.Now,
		jobs:       make(map[string]*Job),
	}
}

// Start runs the worker and the cleanup loop until ctx is done
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()

	go m.worker(ctx)
	go m.cleanupLoop(ctx)
}

// Submit queues an export and returns the new job
func (m *Manager) Submit(req models.ExportRequest) (Job, error) {
	if req.ProjectID <= 0 {
		return Job{}, ErrInvalidProjectID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return Job{}, ErrManagerNotRunning
	}

	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    StatusQueued,
		CreatedAt: m.now(),
	}

	select {
	case m.queue <- job.ID:
	default:
		return Job{}, ErrQueueFull
	}

	m.jobs[job.ID] = job
	m.logger.Info().Str("job_id", job.ID).Int("project_id", req.ProjectID).Msg("export queued")
	return *job, nil
}

// Get returns a snapshot of a job
func (m *Manager) Get(jobID string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// ArchivePath returns the archive of a completed job
func (m *Manager) ArchivePath(jobID string) (string, error) {
	job, err := m.Get(jobID)
	if err != nil {
		return "", err
	}
	if job.Status != StatusCompleted || job.Result == nil {
		return "", ErrJobNotFinished
	}
	return job.Result.ArchivePath, nil
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-m.queue:
			m.run(ctx, jobID)
		}
	}
}

// run executes one job; the export itself runs without holding the lock
func (m *Manager) run(ctx context.Context, jobID string) {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return
	}
	job.Status = StatusProcessing
	req := job.Request
	m.mu.Unlock()

	logger := m.logger.With().Str("job_id", jobID).Logger()
	logger.Info().Int("project_id", req.ProjectID).Msg("export started")

	result, err := m.runner.RunInDir(ctx, m.jobDir(jobID), req, func(images int) {
		m.mu.Lock()
		job.Images = images
		m.mu.Unlock()
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	job.FinishedAt = m.now()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		logger.Error().Err(err).Msg("export failed")
		return
	}

	job.Status = StatusCompleted
	job.Result = result
	job.Images = result.Images
	logger.Info().Str("archive", result.ArchivePath).Msg("export completed")
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanupExpired()
		}
	}
}

// cleanupExpired forgets finished jobs older than the retention period and
// removes their directories
func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for jobID, job := range m.jobs {
		if !job.Status.IsFinished() || now.Sub(job.FinishedAt) <= jobRetention {
			continue
		}
		delete(m.jobs, jobID)
		if err := os.RemoveAll(m.jobDir(jobID)); err != nil {
			m.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to remove job directory")
		}
	}
}

func (m *Manager) jobDir(jobID string) string {
	return filepath.Join(m.storageDir, jobID)
}
