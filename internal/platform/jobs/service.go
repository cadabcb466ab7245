package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gdp/internal/platform/store"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is the audit record of one job execution.
type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Key         string          `json:"key"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Service struct {
	runs  *store.Collection[Run]
	queue chan job
	now   func() time.Time
}

type job struct {
	Type string
	Key  string
	Run  func(context.Context) (any, error)
}

func New(repo store.Repository, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Service{
		runs:  store.NewCollection(repo, store.JobRuns, func(r *Run) *string { return &r.ID }),
		queue: make(chan job, queueSize),
		now:   time.Now,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue reports false when the queue is full; the caller decides whether to run inline.
func (s *Service) Enqueue(jobType, key string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Key: key, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "key", key)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, key string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Key: key, Run: run})
}

// Runs lists recorded executions, newest first.
func (s *Service) Runs(ctx context.Context) ([]Run, error) {
	runs, err := s.runs.All(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "key", j.Key, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	record, err := s.runs.Create(ctx, Run{
		JobType:   j.Type,
		Key:       j.Key,
		Status:    StatusRunning,
		StartedAt: s.now().UTC(),
	})
	recorded := err == nil
	if !recorded {
		slog.Warn("job run insert failed", "err", err)
	}

	details, runErr := j.Run(ctx)
	if !recorded {
		return details, runErr
	}

	record.Status = StatusCompleted
	if runErr != nil {
		record.Status = StatusFailed
		record.Error = runErr.Error()
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	record.Details = detailsJSON
	completed := s.now().UTC()
	record.CompletedAt = &completed
	if _, updErr := s.runs.Update(ctx, record); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
	return details, runErr
}
