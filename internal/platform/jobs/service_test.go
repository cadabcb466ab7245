package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdp/internal/platform/store"
)

func TestRunNowRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory(), 4)

	out, err := svc.RunNow(ctx, "payroll.process", "run-1", func(context.Context) (any, error) {
		return map[string]string{"status": "Completed"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "Completed"}, out)

	_, err = svc.RunNow(ctx, "payroll.process", "run-2", func(context.Context) (any, error) {
		return nil, errors.New("employee missing")
	})
	require.Error(t, err)

	runs, err := svc.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].Key)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "employee missing", runs[0].Error)
	assert.Equal(t, StatusCompleted, runs[1].Status)
	assert.NotNil(t, runs[1].CompletedAt)
}

func TestEnqueueRunsOnWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := New(store.NewMemory(), 1)
	svc.Start(ctx)

	done := make(chan struct{})
	ok := svc.Enqueue("payroll.process", "run-3", func(context.Context) (any, error) {
		close(done)
		return nil, nil
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := New(store.NewMemory(), 1)
	noop := func(context.Context) (any, error) { return nil, nil }
	require.True(t, svc.Enqueue("a", "1", noop))
	assert.False(t, svc.Enqueue("a", "2", noop))
}

type rejectingInserts struct {
	store.Repository
	updates int
}

func (r *rejectingInserts) SaveNew(context.Context, string, string, json.RawMessage) error {
	return errors.New("insert rejected")
}

func (r *rejectingInserts) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	r.updates++
	return r.Repository.Update(ctx, collection, id, body)
}

func TestRunNowSkipsUpdateWhenInsertFails(t *testing.T) {
	repo := &rejectingInserts{Repository: store.NewMemory()}
	svc := New(repo, 4)

	out, err := svc.RunNow(context.Background(), "payroll.process", "run-1", func(context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Zero(t, repo.updates)
}
