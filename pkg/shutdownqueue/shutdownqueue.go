// Package shutdownqueue runs cleanup tasks in reverse order of registration.
//
// Construct one queue in main, register tasks as resources come up, and
// drain it on the way out:
//
//	q := shutdownqueue.New()
//	defer func() { _ = q.Shutdown(ctx) }()
//	q.Add("http server", srv.Shutdown)
//
// Each task runs at most once. Panics are recovered and reported as errors.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type entry struct {
	name string
	task Task
}

type Queue struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

func New() *Queue {
	return &Queue{entries: make([]entry, 0, 8)}
}

// Add registers t under name. Nil tasks and tasks added once Shutdown has
// started are ignored.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.entries = append(q.entries, entry{name: name, task: t})
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Shutdown drains the queue in LIFO order and joins task errors, each
// prefixed with the task name. Later calls are no-ops.
//
// If ctx ends mid-drain the remaining tasks are skipped and ctx.Err() is part
// of the returned error.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	entries := q.entries
	q.entries = nil

	q.mu.Unlock()

	var errs []error

	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := run(ctx, entries[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func run(ctx context.Context, e entry) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("%s: panic in shutdown task: %v", e.name, r)
		}
	}()

	err = e.task(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}

	return nil
}
