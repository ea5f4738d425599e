// Package worker runs background tasks on a bounded pool so renders
// and uploads never block the scheduling tick.
package worker

import (
	"log/slog"
	"sync"
)

// Pool executes submitted tasks on a fixed number of goroutines.
// Story and upload state live in the store, not the queue, so tasks
// lost on shutdown are re-dispatched by the next tick or sweep.
type Pool struct {
	mu      sync.RWMutex
	tasks   chan func()
	wg      sync.WaitGroup
	stopped bool
}

func NewPool(workerCount, queueSize int) *Pool {
	if workerCount <= 0 {
		workerCount = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{
		tasks: make(chan func(), queueSize),
	}
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	slog.Debug("Started worker pool", "workers", workerCount, "queue", queueSize)
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
	slog.Debug("Worker shutting down", "worker", id)
}

// Submit queues a task. It reports false when the pool is stopped or
// the queue is full; the caller's state machine will retry the work
// on a later tick.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		slog.Warn("Worker queue full, dropping task")
		return false
	}
}

// Stop rejects new tasks and waits for in-flight ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
