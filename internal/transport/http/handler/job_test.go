package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/transport/http/handler"
	"github.com/orclabs/elt-orchestrator/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeJobUsecase implements the unexported jobUsecaser interface via
// method matching.
type fakeJobUsecase struct {
	createJob  func(ctx context.Context, input usecase.CreateJobInput) (*domain.JobDefinition, error)
	getJob     func(ctx context.Context, jobID string) (*usecase.JobWithTasks, error)
	listJobs   func(ctx context.Context) ([]*domain.JobDefinition, error)
	triggerRun func(ctx context.Context, jobID string) (*domain.JobRun, error)
}

func (f *fakeJobUsecase) CreateJob(ctx context.Context, input usecase.CreateJobInput) (*domain.JobDefinition, error) {
	return f.createJob(ctx, input)
}

func (f *fakeJobUsecase) GetJob(ctx context.Context, jobID string) (*usecase.JobWithTasks, error) {
	return f.getJob(ctx, jobID)
}

func (f *fakeJobUsecase) ListJobs(ctx context.Context) ([]*domain.JobDefinition, error) {
	return f.listJobs(ctx)
}

func (f *fakeJobUsecase) TriggerRun(ctx context.Context, jobID string) (*domain.JobRun, error) {
	return f.triggerRun(ctx, jobID)
}

func newJobEngine(uc *fakeJobUsecase) *gin.Engine {
	h := handler.NewJobHandler(uc, slog.New(slog.DiscardHandler))
	r := gin.New()
	r.GET("/health", handler.Health)
	r.POST("/jobs", h.Create)
	r.GET("/jobs", h.List)
	r.GET("/jobs/:id", h.GetByID)
	r.POST("/jobs/:id/run", h.TriggerRun)
	return r
}

const validJobPayload = `{
	"job_name": "daily-etl",
	"schedule": "@manual",
	"is_active": true,
	"tasks": [{
		"extractor_config": {"type": "csv", "path": "test_data.csv"},
		"loader_config": {"type": "duckdb", "db_path": ":memory:", "table_name": "out"}
	}]
}`

func TestHealth_Returns200(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	newJobEngine(&fakeJobUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCreateJob_Returns201(t *testing.T) {
	uc := &fakeJobUsecase{
		createJob: func(_ context.Context, input usecase.CreateJobInput) (*domain.JobDefinition, error) {
			if input.Name != "daily-etl" || len(input.Tasks) != 1 {
				t.Errorf("input = %+v", input)
			}
			if input.Tasks[0].ExtractorConfig.Type() != "csv" {
				t.Errorf("extractor type = %q", input.Tasks[0].ExtractorConfig.Type())
			}
			return &domain.JobDefinition{ID: "job-1", Name: input.Name}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(validJobPayload))
	req.Header.Set("Content-Type", "application/json")
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var created domain.JobDefinition
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID != "job-1" {
		t.Errorf("id = %q", created.ID)
	}
}

func TestCreateJob_MissingTasks_Returns400(t *testing.T) {
	uc := &fakeJobUsecase{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs",
		strings.NewReader(`{"job_name": "x", "schedule": "@manual", "is_active": true}`))
	req.Header.Set("Content-Type", "application/json")
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateJob_InvalidSchedule_Returns400(t *testing.T) {
	uc := &fakeJobUsecase{
		createJob: func(_ context.Context, _ usecase.CreateJobInput) (*domain.JobDefinition, error) {
			return nil, domain.ErrInvalidSchedule
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs",
		strings.NewReader(strings.Replace(validJobPayload, "@manual", "not a cron", 1)))
	req.Header.Set("Content-Type", "application/json")
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetJob_NotFound_Returns404(t *testing.T) {
	uc := &fakeJobUsecase{
		getJob: func(_ context.Context, _ string) (*usecase.JobWithTasks, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs/nope", nil)
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestTriggerRun_Returns201WithQueuedRun(t *testing.T) {
	uc := &fakeJobUsecase{
		triggerRun: func(_ context.Context, jobID string) (*domain.JobRun, error) {
			return &domain.JobRun{
				ID: "run-1", JobID: jobID,
				Status: domain.RunQueued, TriggeredBy: domain.TriggerManual,
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/job-1/run", nil)
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	var run domain.JobRun
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if run.Status != domain.RunQueued || run.TriggeredBy != domain.TriggerManual {
		t.Errorf("run = %+v", run)
	}
}

func TestTriggerRun_UnknownJob_Returns404(t *testing.T) {
	uc := &fakeJobUsecase{
		triggerRun: func(_ context.Context, _ string) (*domain.JobRun, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/missing/run", nil)
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListJobs_Returns200(t *testing.T) {
	uc := &fakeJobUsecase{
		listJobs: func(_ context.Context) ([]*domain.JobDefinition, error) {
			return []*domain.JobDefinition{{ID: "job-1"}, {ID: "job-2"}}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var jobs []*domain.JobDefinition
	if err := json.Unmarshal(w.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("jobs = %d, want 2", len(jobs))
	}
}

func TestListJobs_RepoError_Returns500(t *testing.T) {
	uc := &fakeJobUsecase{
		listJobs: func(_ context.Context) ([]*domain.JobDefinition, error) {
			return nil, errors.New("db down")
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	newJobEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
