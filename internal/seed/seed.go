// Package seed loads job definitions from a YAML file into the database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/repository"
	"github.com/orclabs/elt-orchestrator/internal/usecase"
	"gopkg.in/yaml.v3"
)

// SeedJob mirrors one entry of the seed file. The YAML job_id becomes the
// job's display name.
type SeedJob struct {
	JobID       string     `yaml:"job_id"`
	Description *string    `yaml:"description"`
	Schedule    string     `yaml:"schedule"`
	IsActive    bool       `yaml:"is_active"`
	Tasks       []SeedTask `yaml:"tasks"`
}

type SeedTask struct {
	ExtractorConfig map[string]any `yaml:"extractor_config"`
	LoaderConfig    map[string]any `yaml:"loader_config"`
}

// Result reports what a seeding pass did.
type Result struct {
	Created int
	Skipped int
}

// Jobs creates every job in the file that does not already exist by name.
// Re-running the seeder is idempotent.
func Jobs(ctx context.Context, jobs repository.JobRepository, jobUsecase *usecase.JobUsecase, filePath string, logger *slog.Logger) (Result, error) {
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("read seed file %s: %w", filePath, err)
	}

	var entries []SeedJob
	if err := yaml.Unmarshal(contents, &entries); err != nil {
		return Result{}, fmt.Errorf("parse seed file %s: %w", filePath, err)
	}

	var res Result
	for _, entry := range entries {
		_, err := jobs.FindByName(ctx, entry.JobID)
		if err == nil {
			logger.Warn("job already exists, skipping", "job_name", entry.JobID)
			res.Skipped++
			continue
		}
		if !errors.Is(err, domain.ErrJobNotFound) {
			return res, fmt.Errorf("look up job %q: %w", entry.JobID, err)
		}

		tasks := make([]domain.NewTask, len(entry.Tasks))
		for i, t := range entry.Tasks {
			tasks[i] = domain.NewTask{
				ExtractorConfig: domain.DriverConfig(t.ExtractorConfig),
				LoaderConfig:    domain.DriverConfig(t.LoaderConfig),
			}
		}

		_, err = jobUsecase.CreateJob(ctx, usecase.CreateJobInput{
			Name:        entry.JobID,
			Description: entry.Description,
			Schedule:    entry.Schedule,
			IsActive:    entry.IsActive,
			Tasks:       tasks,
		})
		if err != nil {
			return res, fmt.Errorf("create job %q: %w", entry.JobID, err)
		}
		logger.Info("job created", "job_name", entry.JobID, "tasks", len(tasks))
		res.Created++
	}
	return res, nil
}
