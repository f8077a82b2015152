package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yourorg/transitload/internal/metrics"
)

// Queue runs agency tasks strictly one at a time. Serializing at
// concurrency 1 is what makes the per-collection bulk buffers safe without
// further locking.
type Queue struct {
	runner *Runner
	log    *zap.Logger

	mu        sync.Mutex
	pending   []Task
	current   string
	attempted int
	completed int
	failed    int
}

// Summary is the final run outcome.
type Summary struct {
	Attempted int `json:"attempted"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	Pending int    `json:"pending"`
	Current string `json:"current,omitempty"`
	Summary
}

// NewQueue builds a queue around the runner.
func NewQueue(r *Runner, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{runner: r, log: log}
}

// Push appends a task to the end of the queue.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.mu.Unlock()
}

// Run drains the queue in order and returns the summary. A failed task is
// logged and counted; the next task always runs.
func (q *Queue) Run(ctx context.Context) Summary {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			break
		}
		task := q.pending[0]
		q.pending = q.pending[1:]
		q.current = task.AgencyKey
		q.attempted++
		q.mu.Unlock()

		err := q.runner.Run(ctx, task)

		q.mu.Lock()
		q.current = ""
		if err != nil {
			q.failed++
			metrics.TasksFailed.Inc()
		} else {
			q.completed++
			metrics.TasksCompleted.Inc()
		}
		q.mu.Unlock()

		if ctx.Err() != nil {
			q.log.Warn("run canceled, remaining tasks dropped", zap.Error(ctx.Err()))
			break
		}
	}

	sum := q.summary()
	q.log.Info("all agencies completed",
		zap.Int("attempted", sum.Attempted),
		zap.Int("completed", sum.Completed),
		zap.Int("failed", sum.Failed))
	return sum
}

// Status reports queue progress.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		Pending: len(q.pending),
		Current: q.current,
		Summary: Summary{Attempted: q.attempted, Completed: q.completed, Failed: q.failed},
	}
}

func (q *Queue) summary() Summary {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Summary{Attempted: q.attempted, Completed: q.completed, Failed: q.failed}
}
