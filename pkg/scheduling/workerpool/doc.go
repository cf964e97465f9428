/*
Package workerpool provides the worker pool that runs timer callbacks for the
runtime host.

A pool manages a fixed number of worker goroutines that execute submitted tasks.
The runtime host uses a single worker, which turns the pool into a serial event
loop: callbacks run one at a time, in the order their timers fired, and never in
parallel with each other.

Basic usage:

	pool := workerpool.New(1, 256) // one worker, queue size 256
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

Results:

Results are delivered through the OnTaskComplete hook rather than a channel, so a
pool without a consumer never blocks:

	config := workerpool.Config{
		WorkerCount: 1,
		QueueSize:   256,
		OnTaskComplete: func(workerID int, result workerpool.Result) {
			if result.Panicked {
				log.Printf("callback panicked: %v\n%s", result.Error, result.Stack)
			}
		},
	}
	pool := workerpool.NewWithConfig(config)

Panics:

A panicking task is recovered, reported through OnTaskComplete with its stack,
and the worker moves on to the next task.

Shutdown:

Shutdown stops accepting new tasks, runs whatever is already queued and then
stops the workers. The returned channel closes when every worker has exited.
*/
package workerpool
