package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/usecase"
)

// jobUsecaser is the subset of JobUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type jobUsecaser interface {
	CreateJob(ctx context.Context, input usecase.CreateJobInput) (*domain.JobDefinition, error)
	GetJob(ctx context.Context, jobID string) (*usecase.JobWithTasks, error)
	ListJobs(ctx context.Context) ([]*domain.JobDefinition, error)
	TriggerRun(ctx context.Context, jobID string) (*domain.JobRun, error)
}

type JobHandler struct {
	jobUsecase jobUsecaser
	logger     *slog.Logger
}

func NewJobHandler(jobUsecase jobUsecaser, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase, logger: logger.With("component", "job_handler")}
}

type newTaskRequest struct {
	ExtractorConfig domain.DriverConfig `json:"extractor_config" binding:"required"`
	LoaderConfig    domain.DriverConfig `json:"loader_config"    binding:"required"`
}

type createJobRequest struct {
	JobName     string           `json:"job_name"    binding:"required"`
	Description *string          `json:"description"`
	Schedule    string           `json:"schedule"    binding:"required"`
	IsActive    bool             `json:"is_active"`
	Tasks       []newTaskRequest `json:"tasks"       binding:"required,min=1,dive"`
}

func (h *JobHandler) Create(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks := make([]domain.NewTask, len(req.Tasks))
	for i, t := range req.Tasks {
		tasks[i] = domain.NewTask{
			ExtractorConfig: t.ExtractorConfig,
			LoaderConfig:    t.LoaderConfig,
		}
	}

	job, err := h.jobUsecase.CreateJob(c.Request.Context(), usecase.CreateJobInput{
		Name:        req.JobName,
		Description: req.Description,
		Schedule:    req.Schedule,
		IsActive:    req.IsActive,
		Tasks:       tasks,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSchedule})
		case errors.Is(err, domain.ErrTaskOrderConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("create job", "job_name", req.JobName, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobUsecase.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("list jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetByID(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.jobUsecase.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errJobNotFound})
			return
		}
		h.logger.Error("get job", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, job)
}

// TriggerRun enqueues a manual run for the job.
func (h *JobHandler) TriggerRun(c *gin.Context) {
	jobID := c.Param("id")

	run, err := h.jobUsecase.TriggerRun(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errJobNotFound})
			return
		}
		h.logger.Error("trigger run", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, run)
}
