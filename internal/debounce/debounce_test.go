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

package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
)

type harness struct {
	clk     *clock.Fake
	q       *eventloop.Queue
	commits []string
}

func newHarness() *harness {
	return &harness{clk: clock.NewFake(time.Unix(0, 0)), q: eventloop.NewQueue()}
}

func (h *harness) debouncer(initial string) *Debouncer[string] {
	return New(h.clk, h.q, 500*time.Millisecond, initial, func(v string) {
		h.commits = append(h.commits, v)
	})
}

func (h *harness) advance(d time.Duration) {
	h.clk.Advance(d)
	h.q.Drain()
}

func TestOnlyFinalValueCommits(t *testing.T) {
	h := newHarness()
	d := h.debouncer("")

	d.Set("octocat")
	h.advance(200 * time.Millisecond)
	d.Set("octocat2")
	h.advance(499 * time.Millisecond)
	assert.Equal(t, "", d.Value())
	assert.Empty(t, h.commits)

	h.advance(time.Millisecond)
	assert.Equal(t, "octocat2", d.Value())
	assert.Equal(t, []string{"octocat2"}, h.commits)
}

func TestInitialValueCommitsOnExpiryNotBefore(t *testing.T) {
	h := newHarness()
	d := h.debouncer("octocat")

	assert.Equal(t, "", d.Value())
	assert.Equal(t, "octocat", d.Raw())
	assert.True(t, d.Pending())

	h.advance(499 * time.Millisecond)
	assert.Equal(t, "", d.Value())

	h.advance(time.Millisecond)
	assert.Equal(t, "octocat", d.Value())
	assert.False(t, d.Pending())
}

func TestEmptyInitialValueDoesNotNotify(t *testing.T) {
	h := newHarness()
	h.debouncer("")
	h.advance(time.Second)
	assert.Empty(t, h.commits)
}

func TestSameValueDoesNotRestartTimer(t *testing.T) {
	h := newHarness()
	d := h.debouncer("")

	d.Set("a")
	h.advance(300 * time.Millisecond)
	d.Set("a")
	h.advance(200 * time.Millisecond)
	assert.Equal(t, "a", d.Value())

	d.Set("a")
	assert.False(t, d.Pending())
	assert.Equal(t, 0, h.clk.Pending())
}

func TestRevertBeforeExpiryCommitsNothing(t *testing.T) {
	h := newHarness()
	d := h.debouncer("")

	d.Set("a")
	h.advance(100 * time.Millisecond)
	d.Set("")
	h.advance(time.Second)
	assert.Equal(t, "", d.Value())
	assert.Empty(t, h.commits)
}

func TestCloseCancelsPendingCommit(t *testing.T) {
	h := newHarness()
	d := h.debouncer("")

	d.Set("octocat")
	d.Close()
	assert.Equal(t, 0, h.clk.Pending())

	h.advance(time.Second)
	assert.Equal(t, "", d.Value())
	assert.Empty(t, h.commits)

	d.Set("again")
	h.advance(time.Second)
	assert.Empty(t, h.commits)
}

func TestCloseDropsAlreadyPostedCommit(t *testing.T) {
	h := newHarness()
	d := h.debouncer("")

	d.Set("octocat")
	h.clk.Advance(500 * time.Millisecond) // callback posted, not yet run
	d.Close()
	h.q.Drain()
	assert.Empty(t, h.commits)
}
