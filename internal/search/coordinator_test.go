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

package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
	"github.com/sirseerhq/sirseer-profile/internal/urlparams"
)

type fixture struct {
	clk     *clock.Fake
	q       *eventloop.Queue
	loc     *urlparams.Location
	commits []string
	c       *Coordinator
}

func newFixture(t *testing.T, location string) *fixture {
	t.Helper()
	loc, err := urlparams.NewLocation(location)
	require.NoError(t, err)
	f := &fixture{clk: clock.NewFake(time.Unix(0, 0)), q: eventloop.NewQueue(), loc: loc}
	f.c = New(loc, f.clk, f.q, 0, func(v string) { f.commits = append(f.commits, v) })
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clk.Advance(d)
	f.q.Drain()
}

func TestTypingCommitsOnlyFinalValueToURL(t *testing.T) {
	f := newFixture(t, "/")

	f.c.SetText("octocat")
	f.advance(200 * time.Millisecond)
	f.c.SetText("octocat2")
	f.advance(500 * time.Millisecond)

	assert.Equal(t, "octocat2", f.c.Committed())
	assert.Equal(t, []string{"octocat2"}, f.commits)
	assert.Equal(t, []string{"/?user=octocat2"}, f.loc.History())
}

func TestSeedsFromURL(t *testing.T) {
	f := newFixture(t, "/?user=torvalds")

	assert.Equal(t, "torvalds", f.c.Text())
	assert.Equal(t, "", f.c.Committed())

	f.advance(DefaultDelay)
	assert.Equal(t, "torvalds", f.c.Committed())
	assert.Equal(t, []string{"torvalds"}, f.commits)
}

func TestNoParamMeansNoSearch(t *testing.T) {
	f := newFixture(t, "/")
	f.advance(time.Second)

	assert.Equal(t, "", f.c.Text())
	assert.Empty(t, f.commits)
	assert.Empty(t, f.loc.History())
}

func TestClearingDeletesParam(t *testing.T) {
	f := newFixture(t, "/?user=octocat")
	f.advance(DefaultDelay)

	f.c.SetText("")
	f.advance(DefaultDelay)

	_, ok := f.loc.Get(ParamUser)
	assert.False(t, ok)
	assert.Equal(t, []string{"octocat", ""}, f.commits)
	assert.Equal(t, "/", f.loc.String())
}

func TestCloseStopsCommit(t *testing.T) {
	f := newFixture(t, "/")
	f.c.SetText("octocat")
	f.c.Close()
	f.advance(time.Second)
	assert.Empty(t, f.commits)
	assert.Empty(t, f.loc.History())
}
