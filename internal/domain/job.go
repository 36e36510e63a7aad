package domain

import (
	"errors"
	"time"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrTaskOrderConflict = errors.New("task with this order already exists for the job")
	ErrInvalidSchedule   = errors.New("schedule must be a cron expression or @manual")
)

// ScheduleManual retires a job from the scheduler; such jobs only run
// through manual triggers.
const ScheduleManual = "@manual"

type JobDefinition struct {
	ID          string    `json:"job_id"`
	Name        string    `json:"job_name"`
	Description *string   `json:"description,omitempty"`
	Schedule    string    `json:"schedule"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskDefinition struct {
	ID              string       `json:"task_id"`
	JobID           string       `json:"job_id"`
	TaskOrder       int          `json:"task_order"`
	ExtractorConfig DriverConfig `json:"extractor_config"`
	LoaderConfig    DriverConfig `json:"loader_config"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewTask is a task definition before persistence. Order is assigned by the
// job manager from the slice position.
type NewTask struct {
	ExtractorConfig DriverConfig
	LoaderConfig    DriverConfig
}
