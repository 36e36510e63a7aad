// Package log carries request and run identity through context so every
// record emitted below an HTTP request or an executing run is attributable
// without threading IDs through each call site.
package log

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	runKey
)

// NewRequestID generates a random UUID v4 request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom extracts the request ID from ctx. Returns "" if absent.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RunInfo identifies the run a context is executing under.
type RunInfo struct {
	RunID string
	JobID string
}

// WithRun tags ctx with the run being executed. Set once when a worker
// picks up a run; everything below it (drivers included) inherits the tag.
func WithRun(ctx context.Context, runID, jobID string) context.Context {
	return context.WithValue(ctx, runKey, RunInfo{RunID: runID, JobID: jobID})
}

// RunFrom extracts the run tag from ctx.
func RunFrom(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runKey).(RunInfo)
	return info, ok
}
