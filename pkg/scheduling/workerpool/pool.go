package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
)

// Submit adds a task to the pool for execution.
// The task will be executed with context.Background().
// Use SubmitWithContext to provide a custom context.
func (p *workerPool) Submit(task Task) error {
	return p.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext adds a task to the pool for execution with the given context.
// The context bounds the wait for queue space and is passed to the task's
// Execute method.
func (p *workerPool) SubmitWithContext(ctx context.Context, task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.RLock()
	isShutdown := p.isShutdown
	p.mu.RUnlock()

	if isShutdown {
		return fmt.Errorf("cannot submit task: %w", tferrors.ErrClosed)
	}

	// Pre-canceled contexts fail deterministically instead of racing the queue.
	select {
	case <-ctx.Done():
		return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	default:
	}

	twc := taskWithContext{
		task: task,
		ctx:  ctx,
	}

	select {
	case p.taskQueue <- twc:
		return nil
	case <-p.shutdownCh:
		return fmt.Errorf("cannot submit task: %w", tferrors.ErrClosed)
	case <-ctx.Done():
		return fmt.Errorf("cannot submit task: context canceled: %w", ctx.Err())
	}
}

// Shutdown initiates a graceful shutdown of the pool.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		close(p.shutdownCh)

		go func() {
			p.workerWg.Wait()
			close(p.done)
		}()
	})

	return p.done
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// run is the main loop for a worker.
func (w *worker) run() {
	defer w.pool.workerWg.Done()

	for {
		select {
		case twc := <-w.pool.taskQueue:
			w.executeTask(twc)
		case <-w.pool.shutdownCh:
			w.drain()
			return
		}
	}
}

// drain runs whatever is still queued when shutdown begins.
func (w *worker) drain() {
	for {
		select {
		case twc := <-w.pool.taskQueue:
			w.executeTask(twc)
		default:
			return
		}
	}
}

// executeTask executes a single task with the provided context.
func (w *worker) executeTask(twc taskWithContext) {
	p := w.pool
	start := time.Now()
	result := Result{Task: twc.task, WorkerID: w.id}

	defer func() {
		if r := recover(); r != nil {
			result.Panicked = true
			result.Stack = debug.Stack()
			result.Error = fmt.Errorf("task panicked: %v", r)
		}

		result.Duration = time.Since(start)

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(w.id, result)
		}
	}()

	ctx := twc.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	result.Error = twc.task.Execute(ctx)
}
