// Package worker runs tile downloads on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
	"time"
)

type Task struct {
	Ctx  context.Context
	Work func(ctx context.Context) error
	// Done, if set, receives the result of Work.
	Done func(err error)
}

type Pool struct {
	tasks   chan Task
	quit    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration
	once    sync.Once
}

// NewPool starts maxWorkers goroutines sharing a queue of queueSize tasks.
// Each task gets at most timeout to finish.
func NewPool(maxWorkers, queueSize int, timeout time.Duration) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := &Pool{
		tasks:   make(chan Task, queueSize),
		quit:    make(chan struct{}),
		timeout: timeout,
	}
	for i := 0; i < maxWorkers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			p.execute(task)
		}
	}
}

func (p *Pool) execute(task Task) {
	parent := task.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	err := ctx.Err()
	if err == nil {
		err = task.Work(ctx)
	}
	if task.Done != nil {
		task.Done(err)
	}
}

// Submit queues a task without blocking. It reports false if the queue is
// full or the pool is shut down; the caller may retry later.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops the workers after their current task and waits for them.
// Queued tasks are discarded.
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
