package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orclabs/elt-orchestrator/internal/domain"
)

type runUsecaser interface {
	ListRuns(ctx context.Context) ([]*domain.JobRun, error)
	GetRun(ctx context.Context, runID string) (*domain.JobRun, error)
}

type RunHandler struct {
	runUsecase runUsecaser
	logger     *slog.Logger
}

func NewRunHandler(runUsecase runUsecaser, logger *slog.Logger) *RunHandler {
	return &RunHandler{runUsecase: runUsecase, logger: logger.With("component", "run_handler")}
}

func (h *RunHandler) List(c *gin.Context) {
	runs, err := h.runUsecase.ListRuns(c.Request.Context())
	if err != nil {
		h.logger.Error("list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *RunHandler) GetByID(c *gin.Context) {
	runID := c.Param("id")

	run, err := h.runUsecase.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errRunNotFound})
			return
		}
		h.logger.Error("get run", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, run)
}
