// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The event dispatcher runs asynchronous listeners on a Pool so a burst of
// writes cannot spawn an unbounded number of goroutines. When every worker is
// busy and the queue is full, Submit returns ErrPoolFull immediately and the
// caller decides whether to drop or retry:
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(func() { notify(evt) }); errors.Is(err, workerpool.ErrPoolFull) {
//	    logger.Warn("event dropped", "event", evt.Name())
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/kproduct/pkg/logger"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	name  string
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed and the close of tasks so a Submit racing Shutdown
	// never sends on a closed channel.
	mu       sync.RWMutex
	closed   bool
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Pool with the given number of workers. The queue holds twice
// as many pending tasks as there are workers.
func New(size int) *Pool {
	return NewNamed("default", size)
}

// NewNamed is New with a name used in panic logs.
func NewNamed(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		name:  name,
		tasks: make(chan func(), size*2),
		stop:  make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait is like Submit but blocks until a slot is available or the pool
// starts shutting down.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.stop:
		return ErrPoolClosed
	}
}

// Shutdown stops accepting new tasks, waits for queued and in-flight tasks
// to finish and releases the workers. It is safe to call more than once.
func (p *Pool) Shutdown() {
	// Release any SubmitWait blocked while holding the read lock.
	p.stopOnce.Do(func() { close(p.stop) })

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.safeRun(task)
	}
}

// safeRun executes task, recovering from panics so a bad task doesn't kill
// the worker goroutine.
func (p *Pool) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", fmt.Sprint(r))
		}
	}()
	task()
}
