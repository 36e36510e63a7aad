package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

// memRunRepo is an in-memory queue with the claim semantics of the real
// store: a run is handed to exactly one claimer and terminal states are
// immutable.
type memRunRepo struct {
	mu     sync.Mutex
	order  []string
	runs   map[string]*domain.JobRun
	claims map[string]int // run_id -> times returned by ClaimNextQueued
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{
		runs:   make(map[string]*domain.JobRun),
		claims: make(map[string]int),
	}
}

func (r *memRunRepo) Create(_ context.Context, jobID string, status domain.RunStatus, triggeredBy domain.TriggerSource) (*domain.JobRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("run-%d", len(r.order)+1)
	run := &domain.JobRun{
		ID: id, JobID: jobID, Status: status, TriggeredBy: triggeredBy,
		CreatedAt: time.Now(),
	}
	r.order = append(r.order, id)
	r.runs[id] = run
	return run, nil
}

func (r *memRunRepo) ClaimNextQueued(_ context.Context) (*domain.JobRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		run := r.runs[id]
		if run.Status == domain.RunQueued {
			now := time.Now()
			run.Status = domain.RunRunning
			run.StartedAt = &now
			r.claims[id]++
			copied := *run
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memRunRepo) MarkSuccess(_ context.Context, runID string) error {
	return r.finish(runID, domain.RunSuccess, nil)
}

func (r *memRunRepo) MarkFailed(_ context.Context, runID string, errMsg string) error {
	return r.finish(runID, domain.RunFailed, &errMsg)
}

func (r *memRunRepo) finish(runID string, status domain.RunStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return domain.ErrRunNotFound
	}
	if run.Status != domain.RunRunning {
		return nil // terminal rows are never rewritten
	}
	now := time.Now()
	run.Status = status
	run.FinishedAt = &now
	run.ErrorMessage = errMsg
	return nil
}

func (r *memRunRepo) LastForJob(_ context.Context, _ string) (*domain.JobRun, error) {
	return nil, errors.New("not implemented")
}

func (r *memRunRepo) List(_ context.Context) ([]*domain.JobRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.JobRun, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.runs[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memRunRepo) GetByID(_ context.Context, runID string) (*domain.JobRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

func (r *memRunRepo) FailStale(_ context.Context, cutoff time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	failed := 0
	msg := "stale run: worker lost"
	for _, id := range r.order {
		if failed >= limit {
			break
		}
		run := r.runs[id]
		if run.Status == domain.RunRunning && run.StartedAt != nil && run.StartedAt.Before(cutoff) {
			now := time.Now()
			run.Status = domain.RunFailed
			run.ErrorMessage = &msg
			run.FinishedAt = &now
			failed++
		}
	}
	return failed, nil
}

// ---- helpers ----

func newPoolExecutor(repo *fakeJobRepo, taskErr error) *Executor {
	e := NewExecutor(repo, slog.New(slog.DiscardHandler))
	e.delay = 0
	e.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	e.newExtractor = func(_ domain.DriverConfig) (pipeline.Extractor, error) {
		return &fakeExtractor{rec: &recorder{}, taskOrder: 1, err: taskErr}, nil
	}
	e.newLoader = func(_ domain.DriverConfig) (pipeline.Loader, error) {
		return &fakeLoader{rec: &recorder{}, taskOrder: 1}, nil
	}
	return e
}

func waitForTerminal(t *testing.T, runs *memRunRepo, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		all, _ := runs.List(context.Background())
		terminal := 0
		for _, run := range all {
			if run.Status.Terminal() {
				terminal++
			}
		}
		if terminal == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d terminal runs", want)
}

// ---- tests ----

func TestPool_EveryRunClaimedExactlyOnce(t *testing.T) {
	runs := newMemRunRepo()
	for i := 0; i < 20; i++ {
		_, _ = runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)
	}

	jobRepo := &fakeJobRepo{tasks: []*domain.TaskDefinition{task(1)}}
	logger := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Several pool instances against the same queue, like multiple
	// deployed workers sharing one database.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		p := NewPool(runs, newPoolExecutor(jobRepo, nil), nil, logger, 2*time.Millisecond, 8)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Start(ctx)
		}()
	}

	waitForTerminal(t, runs, 20)
	cancel()
	wg.Wait()

	runs.mu.Lock()
	defer runs.mu.Unlock()
	if len(runs.claims) != 20 {
		t.Fatalf("claimed %d distinct runs, want 20", len(runs.claims))
	}
	for id, n := range runs.claims {
		if n != 1 {
			t.Errorf("run %s claimed %d times, want 1", id, n)
		}
	}
}

func TestPool_SuccessfulRunMarkedSuccess(t *testing.T) {
	runs := newMemRunRepo()
	created, _ := runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)

	jobRepo := &fakeJobRepo{tasks: []*domain.TaskDefinition{task(1)}}
	p := NewPool(runs, newPoolExecutor(jobRepo, nil), nil, slog.New(slog.DiscardHandler), 2*time.Millisecond, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Start(ctx)

	waitForTerminal(t, runs, 1)
	cancel()

	run, err := runs.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != domain.RunSuccess {
		t.Errorf("status = %s, want success", run.Status)
	}
	if run.StartedAt == nil || run.FinishedAt == nil {
		t.Error("started_at and finished_at must be set on a terminal run")
	}
	if run.ErrorMessage != nil {
		t.Errorf("error_message = %q on success", *run.ErrorMessage)
	}
}

func TestPool_FailedRunCarriesErrorMessage(t *testing.T) {
	runs := newMemRunRepo()
	created, _ := runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)

	jobRepo := &fakeJobRepo{tasks: []*domain.TaskDefinition{task(1)}}
	p := NewPool(runs, newPoolExecutor(jobRepo, errors.New("no such file")), nil,
		slog.New(slog.DiscardHandler), 2*time.Millisecond, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Start(ctx)

	waitForTerminal(t, runs, 1)
	cancel()

	run, _ := runs.GetByID(context.Background(), created.ID)
	if run.Status != domain.RunFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if run.ErrorMessage == nil || *run.ErrorMessage == "" {
		t.Error("failed run must carry a non-empty error_message")
	}
}

func TestReaper_FailsOnlyStaleRunningRuns(t *testing.T) {
	runs := newMemRunRepo()

	stale, _ := runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)
	fresh, _ := runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)
	queued, _ := runs.Create(context.Background(), "job-1", domain.RunQueued, domain.TriggerManual)

	old := time.Now().Add(-time.Hour)
	now := time.Now()
	runs.runs[stale.ID].Status = domain.RunRunning
	runs.runs[stale.ID].StartedAt = &old
	runs.runs[fresh.ID].Status = domain.RunRunning
	runs.runs[fresh.ID].StartedAt = &now

	r := NewReaper(runs, slog.New(slog.DiscardHandler), time.Minute, 10*time.Minute)
	r.reap(context.Background())

	if got, _ := runs.GetByID(context.Background(), stale.ID); got.Status != domain.RunFailed {
		t.Errorf("stale run status = %s, want failed", got.Status)
	}
	if got, _ := runs.GetByID(context.Background(), fresh.ID); got.Status != domain.RunRunning {
		t.Errorf("fresh run status = %s, want running", got.Status)
	}
	if got, _ := runs.GetByID(context.Background(), queued.ID); got.Status != domain.RunQueued {
		t.Errorf("queued run status = %s, want queued", got.Status)
	}
}
