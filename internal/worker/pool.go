// Package worker implements the fixed-size job router (spec.md §4.7):
// callers submit jobs here, receive results over a channel, and cancel a
// running job by id. internal/boundary submits imports through the pool;
// its analytics, schema and query calls do not go through it.
package worker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kind tags what a job does, so the boundary can tell an import job from
// an analytics job when reporting status.
type Kind string

const (
	KindImport    Kind = "import"
	KindAnalytics Kind = "analytics"
)

// Job is one unit of work the pool runs on its own goroutine. The pool
// hands Run only a context and opens no Corpus Store connection itself;
// Run uses whatever store its closure captured, whatever the Kind.
type Job struct {
	ID  string
	Kind Kind
	Run func(ctx context.Context) (any, error)
}

// Result is delivered once per submitted job, in the shape spec.md §4.7
// describes: "{ id, ok, data|error }".
type Result struct {
	ID   string
	Kind Kind
	OK   bool
	Data any
	Err  error
}

// Pool is the fixed pool of worker threads; its size never changes after
// construction (spec.md: "size = min(4, hardware-parallelism)").
type Pool struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	results chan Result
	wg      sync.WaitGroup
}

// New builds a pool with the given concurrency limit.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		cancels: make(map[string]context.CancelFunc),
		results: make(chan Result, 16),
	}
}

// Results is the channel every job's outcome is delivered on.
func (p *Pool) Results() <-chan Result { return p.results }

// Submit blocks until a worker slot is free (or ctx is done), then runs the
// job on its own goroutine. The job's own context is derived from ctx but
// cancelable independently via Cancel(job.ID), matching the router's
// "cancel marker the worker polls at job-defined checkpoints" model.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancels[job.ID] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)

		data, err := job.Run(jobCtx)

		p.mu.Lock()
		delete(p.cancels, job.ID)
		p.mu.Unlock()
		cancel()

		select {
		case p.results <- Result{ID: job.ID, Kind: job.Kind, OK: err == nil, Data: data, Err: err}:
		case <-ctx.Done():
		}
	}()
	return nil
}

// Cancel signals the job's context; the job itself decides when to honor
// it at its next checkpoint. Reports whether a matching job was running.
func (p *Pool) Cancel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cancel, ok := p.cancels[id]
	if ok {
		cancel()
	}
	return ok
}

// Wait blocks until every submitted job has finished (used by tests and by
// graceful shutdown).
func (p *Pool) Wait() { p.wg.Wait() }

// Close waits for outstanding jobs then closes the results channel. Submit
// must not be called again afterward.
func (p *Pool) Close() {
	p.wg.Wait()
	close(p.results)
}
