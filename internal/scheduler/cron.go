package scheduler

import (
	"fmt"
	"strings"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/robfig/cron/v3"
)

// parser accepts 6-field expressions with seconds precision.
var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseSchedule parses a 6- or 7-field cron expression. The optional 7th
// field (year) is accepted for compatibility and ignored. @manual is not a
// cron expression; callers filter it before parsing.
func ParseSchedule(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) == 7 {
		fields = fields[:6]
	}
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 6 or 7 fields, got %d", domain.ErrInvalidSchedule, len(fields))
	}

	sched, err := parser.Parse(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchedule, err)
	}
	return sched, nil
}

// ValidateSchedule accepts @manual or a parseable cron expression.
func ValidateSchedule(expr string) error {
	if expr == domain.ScheduleManual {
		return nil
	}
	_, err := ParseSchedule(expr)
	return err
}
