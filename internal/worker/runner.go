package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/video-catalog/internal/logger"
	"github.com/jonesrussell/video-catalog/internal/queue"
)

// Executor runs one job of a given task type to a terminal state.
type Executor interface {
	Execute(ctx context.Context, jobID string) error
}

// TaskSource is the queue consumption surface the runner needs.
type TaskSource interface {
	Read(ctx context.Context) ([]*queue.ConsumedTask, error)
	Ack(ctx context.Context, task *queue.ConsumedTask) error
	RefreshMarker(ctx context.Context, task *queue.ConsumedTask) error
	ClearMarker(ctx context.Context, jobID string) error
}

// RunnerConfig holds runner limits.
type RunnerConfig struct {
	Concurrency int           // max tasks in flight (0 = 1)
	JobTimeout  time.Duration // per-task deadline (0 = no deadline)
}

// Runner consumes tasks and dispatches them to executors by task type.
type Runner struct {
	source    TaskSource
	executors map[queue.TaskType]Executor
	cfg       RunnerConfig
	logger    logger.Logger
}

// NewRunner creates a task runner.
func NewRunner(source TaskSource, executors map[queue.TaskType]Executor, cfg RunnerConfig, log logger.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Runner{source: source, executors: executors, cfg: cfg, logger: log}
}

// Run consumes tasks until the context is cancelled, then waits for
// in-flight tasks to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("worker started", logger.Int("concurrency", r.cfg.Concurrency))

	sem := make(chan struct{}, r.cfg.Concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			r.logger.Info("worker stopped")
			return ctx.Err()
		default:
		}

		tasks, err := r.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.logger.Error("failed to read tasks", logger.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, task := range tasks {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			}

			wg.Add(1)
			go func(task *queue.ConsumedTask) {
				defer wg.Done()
				defer func() { <-sem }()
				r.handle(ctx, task)
			}(task)
		}
	}
}

// handle executes one task and always acknowledges it: failures are already
// recorded on the job, so redelivery would only repeat them.
func (r *Runner) handle(ctx context.Context, task *queue.ConsumedTask) {
	// Re-arm the task marker now that the message has been delivered, so it
	// cannot expire while the job executes however long it sat queued.
	if err := r.source.RefreshMarker(ctx, task); err != nil {
		r.logger.Warn("failed to refresh task marker",
			logger.String("job_id", task.Task.JobID),
			logger.Error(err))
	}

	execCtx := ctx
	if r.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.cfg.JobTimeout)
		defer cancel()
	}

	executor, ok := r.executors[task.Task.Type]
	if !ok {
		r.logger.Error("no executor for task type",
			logger.String("type", string(task.Task.Type)),
			logger.String("job_id", task.Task.JobID))
	} else if err := executor.Execute(execCtx, task.Task.JobID); err != nil {
		r.logger.Error("task execution failed",
			logger.String("type", string(task.Task.Type)),
			logger.String("job_id", task.Task.JobID),
			logger.Error(err))
	}

	// Ack and marker cleanup use the parent context so a task timeout
	// doesn't strand the message in the pending list.
	if err := r.source.Ack(ctx, task); err != nil {
		r.logger.Warn("failed to ack task",
			logger.String("message_id", task.MessageID),
			logger.Error(err))
	}
	if err := r.source.ClearMarker(ctx, task.Task.JobID); err != nil {
		r.logger.Warn("failed to clear task marker",
			logger.String("job_id", task.Task.JobID),
			logger.Error(err))
	}
}
