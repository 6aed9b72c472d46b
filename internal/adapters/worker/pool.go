// Package worker runs per-identifier tasks over a fixed number of goroutines.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/stockwatch/internal/domain/model"
	"github.com/okian/stockwatch/pkg/logger"
	"github.com/okian/stockwatch/pkg/metrics"
)

// Task processes one identifier. A returned error is recorded for that
// identifier only; it never stops the other workers.
type Task[T any] func(ctx context.Context, id model.Identifier) (T, error)

// TaskError records a failed identifier.
type TaskError struct {
	Index      int
	Identifier model.Identifier
	Err        error
}

// Message returns the error text reported for the identifier.
func (e TaskError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Result collects the outcome of a Run. Results and Errors are ordered by
// the identifier's position in the input list.
type Result[T any] struct {
	Results []T
	Errors  []TaskError
}

// Processed returns how many identifiers were handed to the task.
func (r Result[T]) Processed() int { return len(r.Results) + len(r.Errors) }

// slot is the per-index outcome written by exactly one worker.
type slot[T any] struct {
	done  bool
	value T
	err   error
}

// Run drives task over ids with concurrency workers pulling from a shared
// cursor. It returns once every worker has drained the cursor. If ctx is
// canceled workers stop claiming new identifiers and ctx.Err() is returned
// with whatever finished.
func Run[T any](ctx context.Context, ids []model.Identifier, concurrency int, task Task[T], opts ...Option) (Result[T], error) {
	if concurrency < 1 {
		return Result[T]{}, fmt.Errorf("%w: %d", ErrInvalidConcurrency, concurrency)
	}
	if task == nil {
		return Result[T]{}, ErrNilTask
	}
	if len(ids) == 0 {
		return Result[T]{Results: []T{}, Errors: []TaskError{}}, nil
	}

	cfg := newConfig(opts...)
	slots := make([]slot[T], len(ids))
	var cursor atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		w := &poolWorker[T]{
			name:   cfg.name + "-" + strconv.Itoa(i),
			ids:    ids,
			slots:  slots,
			cursor: &cursor,
			task:   task,
			logger: cfg.logger,
		}
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()

	res := Result[T]{Results: make([]T, 0, len(ids)), Errors: []TaskError{}}
	for i := range slots {
		s := &slots[i]
		switch {
		case !s.done:
			// never claimed: the run was canceled
		case s.err != nil:
			res.Errors = append(res.Errors, TaskError{Index: i, Identifier: ids[i], Err: s.err})
		default:
			res.Results = append(res.Results, s.value)
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// poolWorker is one goroutine draining the shared cursor.
type poolWorker[T any] struct {
	name   string
	ids    []model.Identifier
	slots  []slot[T]
	cursor *atomic.Int64
	task   Task[T]
	logger logger.Logger
}

func (w *poolWorker[T]) run(ctx context.Context) {
	metrics.WorkerStarted()
	defer metrics.WorkerStopped()

	for {
		if ctx.Err() != nil {
			return
		}
		idx := int(w.cursor.Add(1) - 1)
		if idx >= len(w.ids) {
			return
		}
		w.process(ctx, idx)
	}
}

// process runs the task for one index and stores its outcome. A panicking
// task is recorded as an error for that identifier.
func (w *poolWorker[T]) process(ctx context.Context, idx int) {
	id := w.ids[idx]
	start := time.Now()
	s := &w.slots[idx]

	defer func() {
		if r := recover(); r != nil {
			s.err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		s.done = true
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if s.err != nil {
			metrics.RecordWorkerError()
			w.logger.Warn(ctx, "task failed",
				logger.String("worker", w.name),
				logger.String("identifier", string(id)),
				logger.Error(s.err),
			)
		}
	}()

	s.value, s.err = w.task(ctx, id)
}
