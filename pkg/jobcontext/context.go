// Package jobcontext runs background and per-callback jobs with panic
// recovery and carries job identity through the context for logging.
package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type keyContext string

const keyJob keyContext = "job"

// Kind names a class of job
type Kind string

const (
	KindAnalytics Kind = "analytics"
	KindSweep     Kind = "retention_sweep"
	KindReprocess Kind = "reprocess"
)

// ErrPanic wraps a panic recovered while running a job
var ErrPanic = errors.New("panic recovered")

// Job identifies one execution
type Job struct {
	ID      uuid.UUID
	Kind    Kind
	Subject string // e.g. a transcription sid; empty for sweeps
	Attempt int
	Started time.Time
}

// Elapsed returns the time since the job began
func (j Job) Elapsed() time.Duration {
	return time.Since(j.Started)
}

// Begin derives a job context with a fresh job id and a timeout.
// attempt starts at 1.
func Begin(parent context.Context, kind Kind, subject string, attempt int, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	if attempt < 1 {
		attempt = 1
	}
	job := Job{
		ID:      uuid.New(),
		Kind:    kind,
		Subject: subject,
		Attempt: attempt,
		Started: time.Now(),
	}
	return context.WithValue(ctx, keyJob, job), cancel
}

// Run runs fn once. A panic inside fn is returned as an error wrapping
// ErrPanic instead of unwinding the caller.
func Run(ctx context.Context, fn func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	return fn(ctx)
}

// FromContext returns the job carried by ctx
func FromContext(ctx context.Context) (Job, bool) {
	job, ok := ctx.Value(keyJob).(Job)
	return job, ok
}

// ID returns the job id as a string, empty outside a job
func ID(ctx context.Context) string {
	if job, ok := FromContext(ctx); ok {
		return job.ID.String()
	}
	return ""
}
