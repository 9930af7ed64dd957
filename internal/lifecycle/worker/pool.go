// Package worker runs queued erasure cascades in the background. Requests are
// accepted on the HTTP path and executed here; a cascade can take seconds and
// must not hold an HTTP connection open.
package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"scoutpost/internal/lifecycle/models"
	dErrors "scoutpost/pkg/domain-errors"
)

const (
	defaultWorkerCount = 4
	defaultQueueSize   = 64
)

// Executor runs one subject's cascade to a terminal or resumable state.
type Executor interface {
	Execute(ctx context.Context, subjectID string) (*models.ErasureJob, error)
}

// Pool is a fixed-size worker pool over a bounded queue of subject ids.
type Pool struct {
	executor Executor
	logger   *slog.Logger
	queue    chan string
	workers  int
}

type Option func(*Pool)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queue = make(chan string, n)
		}
	}
}

func NewPool(executor Executor, opts ...Option) *Pool {
	p := &Pool{
		executor: executor,
		logger:   slog.Default(),
		queue:    make(chan string, defaultQueueSize),
		workers:  defaultWorkerCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue hands a subject to the pool without blocking. A full queue is a
// transient condition; the caller reports it and the client retries.
func (p *Pool) Enqueue(ctx context.Context, subjectID string) error {
	select {
	case p.queue <- subjectID:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTransientStore, "enqueue erasure job")
	default:
		return dErrors.New(dErrors.CodeTransientStore, "erasure queue is full")
	}
}

// Run blocks until ctx is cancelled, executing queued cascades with the
// configured number of workers. Jobs still in the queue at shutdown are
// dropped; their PENDING or PARTIAL snapshots get re-enqueued on the next
// request.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case subjectID := <-p.queue:
					p.execute(ctx, subjectID)
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) execute(ctx context.Context, subjectID string) {
	job, err := p.executor.Execute(ctx, subjectID)
	if err == nil {
		return
	}

	jobID := ""
	if job != nil {
		jobID = job.ID
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeAuthRevocation):
		// Data erased, login still live. This needs a human at the identity
		// provider, not another retry loop.
		p.logger.ErrorContext(ctx, "erasure cascade needs credential escalation",
			"subject_id", subjectID, "job_id", jobID, "error", err)
	case dErrors.HasCode(err, dErrors.CodeJobAlreadyRunning):
		p.logger.InfoContext(ctx, "erasure cascade already running",
			"subject_id", subjectID, "job_id", jobID)
	default:
		p.logger.ErrorContext(ctx, "erasure cascade did not complete",
			"subject_id", subjectID, "job_id", jobID, "error", err)
	}
}
