// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// queueDepth is the number of command buffers that may wait for the device
// before Submit blocks.
const queueDepth = 64

// Queue is the single command submission queue of a Context.
//
// Command buffers are executed by one goroutine, strictly in submission
// order. Completion handlers run on that goroutine and must not block on
// further queue work.
type Queue struct {
	device Device

	mu     sync.Mutex
	closed bool
	work   chan *CommandBuffer
	done   chan struct{}

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// newQueue starts the submission goroutine for device.
func newQueue(device Device) *Queue {
	q := &Queue{
		device: device,
		work:   make(chan *CommandBuffer, queueDepth),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// run executes command buffers until the queue is closed and drained.
func (q *Queue) run() {
	defer close(q.done)
	for cb := range q.work {
		err := q.device.Execute(cb)
		if err != nil {
			q.failed.Add(1)
			slogger().Warn("render: command buffer failed",
				"label", cb.label,
				"err", err)
		}
		q.completed.Add(1)
		cb.complete(err)
	}
}

// Submit enqueues command buffers for execution in order.
func (q *Queue) Submit(cbs ...*CommandBuffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	for _, cb := range cbs {
		if cb == nil {
			continue
		}
		if !cb.enqueue() {
			return fmt.Errorf("%w: %q", ErrAlreadySubmitted, cb.label)
		}
		q.submitted.Add(1)
		q.work <- cb
	}
	return nil
}

// Pending returns the number of submitted buffers not yet completed.
func (q *Queue) Pending() int {
	return int(q.submitted.Load() - q.completed.Load())
}

// Failed returns the number of command buffers the device rejected.
func (q *Queue) Failed() uint64 { return q.failed.Load() }

// Close stops accepting work and waits until every submitted buffer has
// completed. It is safe to call Close more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.work)
	}
	q.mu.Unlock()
	<-q.done
}
