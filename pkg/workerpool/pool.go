// Package workerpool provides a bounded goroutine pool with backpressure.
//
// Notification delivery runs on a Pool so a slow mail provider never holds
// an HTTP request open. When every worker is busy and the queue is full,
// Submit returns ErrPoolFull and the caller decides what to do:
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    task() // run inline instead of dropping
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex // guards closed and sends on tasks
	closed bool
	size   int
}

// New creates a Pool with size workers and a queue of 2×size.
func New(size int) *Pool {
	return NewWithQueue(size, size*2)
}

// NewWithQueue creates a Pool with an explicit queue length.
func NewWithQueue(size, queue int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queue < 0 {
		queue = 0
	}

	p := &Pool{tasks: make(chan func(), queue), size: size}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

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

// SubmitWait blocks until the task is queued. Returns ErrPoolClosed if the
// pool is shutting down.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, runs everything already queued and waits
// for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}
