package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryankumar/pkmeans/internal/util"
	"golang.org/x/sync/errgroup"
)

// Task is one independent clustering run queued on a Pool.
type Task struct {
	// Name identifies the run in results and logs, e.g. "threads=4".
	Name string

	// Execute performs the run and returns its summary.
	Execute func(ctx context.Context) (interface{}, error)
}

// Result is the outcome of one Task.
type Result struct {
	Name     string
	Data     interface{}
	Error    error
	Duration time.Duration
}

// Pool runs queued tasks with bounded concurrency.
//
// Tasks are queued with Submit and executed together by Execute. Results
// come back in submission order regardless of completion order.
type Pool struct {
	workers int
	logger  *slog.Logger

	mu    sync.Mutex
	tasks []Task

	shutdown atomic.Bool
	running  atomic.Bool
}

// NewPool creates a pool running at most workers tasks at a time.
// A non-positive worker count is treated as 1.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		workers: workers,
		logger:  logger,
	}
}

// Submit queues a task. It fails once the pool is shut down or while it
// is executing.
func (p *Pool) Submit(task Task) error {
	if p.shutdown.Load() {
		return fmt.Errorf("cannot submit task %q: %w", task.Name, util.ErrShutdown)
	}
	if p.running.Load() {
		return fmt.Errorf("pool is running, cannot submit new tasks")
	}
	if task.Name == "" {
		return fmt.Errorf("task must have a name")
	}
	if task.Execute == nil {
		return fmt.Errorf("task %q must have an execute function", task.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	p.logger.Debug("task submitted", "task", task.Name, "queued", len(p.tasks))
	return nil
}

// Execute runs every queued task and returns one result per task.
func (p *Pool) Execute(ctx context.Context) []Result {
	return p.ExecuteWithProgress(ctx, nil)
}

// ExecuteWithProgress is Execute with a callback invoked after each task
// finishes. The callback may be called from several goroutines at once.
func (p *Pool) ExecuteWithProgress(ctx context.Context, progressFn func(completed, total int)) []Result {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Error("pool is already running")
		return []Result{}
	}
	defer p.running.Store(false)

	p.mu.Lock()
	tasks := make([]Task, len(p.tasks))
	copy(tasks, p.tasks)
	p.mu.Unlock()

	total := len(tasks)
	if total == 0 {
		p.logger.Debug("no tasks to execute")
		return []Result{}
	}

	p.logger.Info("starting task execution", "workers", p.workers, "tasks", total)
	start := time.Now()

	results := make([]Result, total)
	var completed atomic.Int32

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = p.executeTask(ctx, task)

			done := int(completed.Add(1))
			p.logger.Debug("task completed",
				"task", task.Name,
				"success", results[i].Error == nil,
				"duration", results[i].Duration,
				"progress", fmt.Sprintf("%d/%d", done, total))
			if progressFn != nil {
				progressFn(done, total)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("task execution completed",
		"total", total,
		"successful", CountSuccessful(results),
		"failed", CountFailed(results),
		"duration", time.Since(start))

	return results
}

func (p *Pool) executeTask(ctx context.Context, task Task) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{
			Name:  task.Name,
			Error: fmt.Errorf("task not executed: %w", err),
		}
	}
	if p.shutdown.Load() {
		return Result{
			Name:  task.Name,
			Error: fmt.Errorf("task not executed: %w", util.ErrShutdown),
		}
	}

	data, err := task.Execute(ctx)
	res := Result{
		Name:     task.Name,
		Data:     data,
		Error:    err,
		Duration: time.Since(start),
	}

	if err != nil {
		p.logger.Warn("task failed", "task", task.Name, "error", err, "duration", res.Duration)
	}
	return res
}

// Shutdown stops the pool from accepting tasks and from starting queued
// ones, then waits for a running Execute to return, or for ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.shutdown.CompareAndSwap(false, true) {
		return fmt.Errorf("pool already shut down")
	}
	p.logger.Debug("shutting down worker pool")

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for p.running.Load() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown timeout: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}
