// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package eventloop serializes state transitions onto a single goroutine.
//
// Every piece of screen state is owned by exactly one loop. Timer callbacks
// and network completions never touch that state directly; they post a
// function onto the loop, which runs it to completion before the next one.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when posting to a loop that has shut down.
var ErrClosed = errors.New("event loop closed")

// Poster accepts work for serial execution.
type Poster interface {
	// Post enqueues fn. It returns false if the loop no longer accepts work.
	Post(fn func()) bool
	// Go runs blocking work off the loop. The work reports back through Post.
	Go(fn func())
}

// Loop runs posted functions one at a time on its own goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn for execution on the loop goroutine.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Go runs fn on a new goroutine tracked by the loop.
func (l *Loop) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

// Call posts fn and waits until it has run.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted functions until ctx is canceled or Close is called.
// Work still queued at shutdown is discarded.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if l.closed {
				l.mu.Unlock()
				return
			}
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()
			fn()
		}
	}
}

// Close stops accepting work and wakes Run so it can exit.
func (l *Loop) Close() {
	l.shutdown()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
}

// Wait blocks until Run has returned and all work started with Go has finished.
func (l *Loop) Wait() {
	<-l.done
	l.wg.Wait()
}

// Queue is a manually drained Poster. Go runs work inline, so a test can
// drive a component deterministically with Drain.
type Queue struct {
	mu     sync.Mutex
	items  []func()
	closed bool
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, fn)
	return true
}

func (q *Queue) Go(fn func()) { fn() }

// Drain runs queued functions, including ones they post, until the queue is
// empty. It returns the number of functions run.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return n
		}
		fn := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()
		fn()
		n++
	}
}

// Len reports the number of queued functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close discards pending work and rejects further posts.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
}
