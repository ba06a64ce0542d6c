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

// Package search couples the search input to the location query parameter
// through a debounce delay.
package search

import (
	"time"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/debounce"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
	"github.com/sirseerhq/sirseer-profile/internal/urlparams"
)

const (
	// ParamUser is the query parameter holding the committed search term.
	ParamUser = "user"

	// DefaultDelay is the debounce delay used when none is configured.
	DefaultDelay = 500 * time.Millisecond
)

// Coordinator exposes the raw search text and commits it after the delay.
// A committed value is written to the store when non-empty and removed when
// empty. Methods must be called on the owning loop.
type Coordinator struct {
	store    urlparams.Store
	deb      *debounce.Debouncer[string]
	onCommit func(string)
}

// New seeds the raw text from the store and starts the debounce.
// onCommit runs after the store has been updated.
func New(store urlparams.Store, clk clock.Scheduler, loop eventloop.Poster, delay time.Duration, onCommit func(string)) *Coordinator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	c := &Coordinator{store: store, onCommit: onCommit}
	initial, _ := store.Get(ParamUser)
	c.deb = debounce.New(clk, loop, delay, initial, c.commit)
	return c
}

func (c *Coordinator) commit(v string) {
	if v != "" {
		c.store.Set(ParamUser, v)
	} else {
		c.store.Delete(ParamUser)
	}
	if c.onCommit != nil {
		c.onCommit(v)
	}
}

// Text returns the raw input text.
func (c *Coordinator) Text() string { return c.deb.Raw() }

// SetText records a keystroke.
func (c *Coordinator) SetText(v string) { c.deb.Set(v) }

// Committed returns the debounced search term.
func (c *Coordinator) Committed() string { return c.deb.Value() }

// Close cancels any pending commit.
func (c *Coordinator) Close() { c.deb.Close() }
