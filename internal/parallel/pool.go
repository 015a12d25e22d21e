// Package parallel provides the goroutine pool that backs a compositor's
// private task queue.
//
// All workers pull from one shared queue, so an idle worker picks up the
// next task as soon as it is queued even when its peers are blocked inside
// slow tasks. ExecuteAll is the join primitive: it queues a batch and
// returns only after every task in it has finished.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs tasks on a fixed set of goroutines. It is safe for
// concurrent use.
type WorkerPool struct {
	workers int
	tasks   chan func()

	// closeMu makes sends and the close of tasks mutually exclusive.
	closeMu sync.RWMutex
	closed  bool

	done      sync.WaitGroup
	completed atomic.Uint64
}

// NewWorkerPool starts a pool of n goroutines, or GOMAXPROCS when n <= 0.
func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: n,
		tasks:   make(chan func(), max(8, 4*n)),
	}
	p.done.Add(n)
	for range n {
		go p.run()
	}
	return p
}

func (p *WorkerPool) run() {
	defer p.done.Done()
	for task := range p.tasks {
		task()
		p.completed.Add(1)
	}
}

// queue hands task to the workers, blocking while the queue is full. It
// reports false once the pool is closed.
func (p *WorkerPool) queue(task func()) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return false
	}
	p.tasks <- task
	return true
}

// ExecuteAll runs every non-nil task and waits for the ones it managed to
// queue. Tasks offered after Close are dropped.
//
// Calling ExecuteAll from a pool task can deadlock when the batch needs
// the worker that task occupies.
func (p *WorkerPool) ExecuteAll(tasks []func()) {
	var batch sync.WaitGroup
	for _, task := range tasks {
		if task == nil {
			continue
		}
		batch.Add(1)
		if !p.queue(func() {
			defer batch.Done()
			task()
		}) {
			batch.Done()
			break
		}
	}
	batch.Wait()
}

// Submit queues task without waiting for it. It reports false for a nil
// task or a closed pool. A queued task runs even if Close follows.
func (p *WorkerPool) Submit(task func()) bool {
	return task != nil && p.queue(task)
}

// Close stops accepting tasks, runs what is already queued and waits for
// the workers to exit. Repeated calls are no-ops.
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.closeMu.Unlock()

	p.done.Wait()
}

// Workers returns the number of goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

// Completed returns the number of tasks run so far.
func (p *WorkerPool) Completed() uint64 { return p.completed.Load() }
