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

// Package chart lays out the weekly contribution bar chart and runs its
// drill-down interaction: activating a bar waits for a short settle delay,
// fetches that week's breakdown and stacks it over the bar.
package chart

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/contributions"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
	"github.com/sirseerhq/sirseer-profile/internal/github"
)

// SettleDelay coalesces rapid re-activation before a breakdown fetch starts.
const SettleDelay = 100 * time.Millisecond

// FetchFunc loads the breakdown of one bucket. A non-nil breakdown may be
// returned together with an *contributions.InconsistencyError.
type FetchFunc func(ctx context.Context, bucket contributions.WeeklyBucket) (contributions.Breakdown, error)

// ClientFetcher builds a FetchFunc that queries client for login over the
// bucket's week window.
func ClientFetcher(client github.Client, login string) FetchFunc {
	return func(ctx context.Context, b contributions.WeeklyBucket) (contributions.Breakdown, error) {
		from, to := contributions.WeekWindow(b)
		counts, err := client.FetchContributionCounts(ctx, login, from, to)
		if err != nil {
			return contributions.Breakdown{}, err
		}
		return contributions.Derive(b, *counts)
	}
}

// Status is the state of the overlay on the active bar.
type Status int

const (
	// StatusNone means every bar is plain.
	StatusNone Status = iota
	// StatusLoading means the breakdown fetch is in flight.
	StatusLoading
	// StatusShown means the stacked overlay is visible.
	StatusShown
	// StatusFailed means the fetch failed; the bar is plain with an indicator.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusShown:
		return "shown"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// Overlay describes what is drawn over the bars. Index is -1 when no bar
// is involved.
type Overlay struct {
	Index     int
	Status    Status
	Breakdown contributions.Breakdown
	Err       error

	// Inconsistent is set when the breakdown was clamped.
	Inconsistent *contributions.InconsistencyError
}

// Option configures a Chart.
type Option func(*Chart)

// WithSettleDelay overrides SettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Chart) { c.settle = d }
}

// WithLogger sets the logger used for failed fetches.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chart) { c.logger = l }
}

// WithOnChange registers a callback run on the loop after each overlay change.
func WithOnChange(fn func()) Option {
	return func(c *Chart) { c.onChange = fn }
}

// Chart owns the drill-down state for one set of buckets. All methods must
// be called on the loop passed to New.
type Chart struct {
	ctx      context.Context
	clock    clock.Scheduler
	loop     eventloop.Poster
	fetch    FetchFunc
	settle   time.Duration
	logger   *slog.Logger
	onChange func()

	buckets []contributions.WeeklyBucket

	// shown is the visible overlay; pending is the activated bar awaiting
	// its settle delay or fetch.
	shown   Overlay
	pending int
	timer   clock.Timer
	gen     uint64
	cancel  context.CancelFunc
	closed  bool
}

// New creates a Chart over buckets.
func New(ctx context.Context, buckets []contributions.WeeklyBucket, clk clock.Scheduler, loop eventloop.Poster, fetch FetchFunc, opts ...Option) *Chart {
	c := &Chart{
		ctx:     ctx,
		clock:   clk,
		loop:    loop,
		fetch:   fetch,
		settle:  SettleDelay,
		logger:  slog.Default(),
		buckets: buckets,
		shown:   Overlay{Index: -1},
		pending: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buckets returns the charted buckets.
func (c *Chart) Buckets() []contributions.WeeklyBucket { return c.buckets }

// Overlay returns the visible overlay.
func (c *Chart) Overlay() Overlay { return c.shown }

// Pending returns the bar awaiting its settle delay, or -1.
func (c *Chart) Pending() int { return c.pending }

// Activate handles a pointer activation on bar i. Any pending settle delay
// or in-flight fetch is abandoned and a new settle delay starts.
func (c *Chart) Activate(i int) {
	if c.closed || i < 0 || i >= len(c.buckets) {
		return
	}
	c.abandon()
	if c.shown.Status == StatusFailed || c.shown.Status == StatusLoading {
		c.shown = Overlay{Index: -1}
	}
	c.pending = i

	gen := c.gen
	c.timer = c.clock.AfterFunc(c.settle, func() {
		c.loop.Post(func() { c.settled(gen, i) })
	})
	c.changed()
}

// Leave handles the pointer leaving bar i. The overlay on that bar is
// removed and any pending work for it is abandoned.
func (c *Chart) Leave(i int) {
	if c.closed {
		return
	}
	touched := false
	if c.pending == i {
		c.abandon()
		touched = true
	}
	if c.shown.Index == i && c.shown.Status != StatusNone {
		if c.shown.Status == StatusLoading {
			c.abandon()
		}
		c.shown = Overlay{Index: -1}
		touched = true
	}
	if touched {
		c.changed()
	}
}

// Close abandons pending work. No callback runs after Close.
func (c *Chart) Close() {
	c.closed = true
	c.abandon()
}

func (c *Chart) abandon() {
	c.gen++
	c.pending = -1
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Chart) settled(gen uint64, i int) {
	if c.closed || gen != c.gen {
		return
	}
	c.timer = nil
	c.pending = -1

	// The previous overlay is cleared before the new fetch starts.
	c.shown = Overlay{Index: i, Status: StatusLoading}
	c.changed()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	bucket := c.buckets[i]
	fetch := c.fetch
	c.loop.Go(func() {
		bd, err := fetch(ctx, bucket)
		c.loop.Post(func() { c.fetched(gen, i, bd, err) })
	})
}

func (c *Chart) fetched(gen uint64, i int, bd contributions.Breakdown, err error) {
	if c.closed || gen != c.gen {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	var incons *contributions.InconsistencyError
	switch {
	case err == nil:
		c.shown = Overlay{Index: i, Status: StatusShown, Breakdown: bd}
	case errors.As(err, &incons):
		c.logger.Warn("inconsistent contribution breakdown",
			"week", contributions.FormatDate(incons.Week),
			"total", incons.Total,
			"deficit", incons.Deficit)
		c.shown = Overlay{Index: i, Status: StatusShown, Breakdown: bd, Inconsistent: incons}
	default:
		c.logger.Warn("contribution breakdown unavailable",
			"week", contributions.FormatDate(c.buckets[i].Start),
			"error", err)
		c.shown = Overlay{Index: i, Status: StatusFailed, Err: err}
	}
	c.changed()
}

func (c *Chart) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
