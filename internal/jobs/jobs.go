// Package jobs tracks filing runs. Each run gets a job record with a
// status lifecycle so callers can poll long conversions; the store is
// in-memory and safe for concurrent use.
package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "gst-filing-service/pkg/errors"
)

// Status is the job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one filing run.
type Job struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path,omitempty"`
	Status     Status    `json:"status"`
	Progress   int       `json:"progress"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	seq int
}

// Store holds job records in memory.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	nextSeq int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Create registers a new pending job for an input file.
func (s *Store) Create(inputPath string) *Job {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		InputPath: inputPath,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.nextSeq++
	job.seq = s.nextSeq
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

// Get returns a copy of a job record.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, apperrors.InternalError(apperrors.CodeUnexpectedError, "job lookup", nil).
			WithContext("job_id", id)
	}
	return *job, nil
}

// List returns copies of all job records, oldest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, *job)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].seq < list[j].seq
	})
	return list
}

// MarkProcessing moves a job into the processing state.
func (s *Store) MarkProcessing(id string) {
	s.update(id, func(job *Job) {
		job.Status = StatusProcessing
	})
}

// UpdateProgress records pipeline progress on a job.
func (s *Store) UpdateProgress(id string, percent int, stage string) {
	s.update(id, func(job *Job) {
		job.Progress = percent
		job.Stage = stage
	})
}

// MarkCompleted finishes a job successfully.
func (s *Store) MarkCompleted(id, outputPath string) {
	s.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.OutputPath = outputPath
		job.Progress = 100
	})
}

// MarkFailed finishes a job with an error.
func (s *Store) MarkFailed(id string, err error) {
	s.update(id, func(job *Job) {
		job.Status = StatusFailed
		if err != nil {
			job.Error = err.Error()
		}
	})
}

func (s *Store) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
}
