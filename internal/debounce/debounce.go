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

// Package debounce coalesces rapid value changes into a single committed value.
package debounce

import (
	"sync"
	"time"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
)

// Debouncer holds a raw value and the most recent value that stayed
// unchanged for the full delay. All methods must be called on the loop
// that was passed to New.
type Debouncer[T comparable] struct {
	clock    clock.Scheduler
	loop     eventloop.Poster
	delay    time.Duration
	onCommit func(T)

	raw       T
	committed T
	pending   bool

	mu    sync.Mutex // guards timer and gen, touched from timer goroutines
	timer clock.Timer
	gen   uint64

	closed bool
}

// New creates a Debouncer whose raw value starts at initial. The initial
// value is scheduled like any other input: it commits on the first expiry,
// not before. onCommit, if non-nil, runs on the loop whenever the committed
// value changes.
func New[T comparable](clk clock.Scheduler, loop eventloop.Poster, delay time.Duration, initial T, onCommit func(T)) *Debouncer[T] {
	d := &Debouncer[T]{
		clock:    clk,
		loop:     loop,
		delay:    delay,
		onCommit: onCommit,
	}
	d.raw = initial
	d.schedule()
	return d
}

// Set replaces the raw value and restarts the delay. Setting the value that
// is already pending leaves the running timer alone.
func (d *Debouncer[T]) Set(v T) {
	if d.closed {
		return
	}
	if v == d.raw && (d.pending || v == d.committed) {
		return
	}
	d.raw = v
	d.schedule()
}

// Raw returns the latest value passed to Set.
func (d *Debouncer[T]) Raw() T { return d.raw }

// Value returns the committed value.
func (d *Debouncer[T]) Value() T { return d.committed }

// Pending reports whether a commit is scheduled.
func (d *Debouncer[T]) Pending() bool { return d.pending }

// Close cancels the pending timer. No commit happens after Close.
func (d *Debouncer[T]) Close() {
	d.closed = true
	d.pending = false
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}

func (d *Debouncer[T]) schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.loop.Post(func() { d.fire(gen) })
	})
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	stale := gen != d.gen
	if !stale {
		d.timer = nil
	}
	d.mu.Unlock()
	if stale || d.closed {
		return
	}

	d.pending = false
	if d.raw == d.committed {
		return
	}
	d.committed = d.raw
	if d.onCommit != nil {
		d.onCommit(d.committed)
	}
}
