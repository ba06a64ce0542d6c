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

// Package pagination tracks cursor-based paging through a connection and
// derives the query variables for each page.
package pagination

import (
	"github.com/sirseerhq/sirseer-profile/internal/github"
)

// Direction selects which end of the connection a page is anchored to.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Cursor is the paging position. Both cursors are nil on the first page;
// afterwards exactly one is set.
type Cursor struct {
	After     *string
	Before    *string
	Direction Direction
}

// Coordinator holds the paging position and the page info of the most
// recently completed fetch for that position.
type Coordinator struct {
	pageSize int
	cur      Cursor
	info     *github.PageInfo
}

// New returns a Coordinator on the first page. A non-positive pageSize
// uses github.PageSize.
func New(pageSize int) *Coordinator {
	if pageSize <= 0 {
		pageSize = github.PageSize
	}
	return &Coordinator{pageSize: pageSize}
}

// Cursor returns the current position.
func (c *Coordinator) Cursor() Cursor { return c.cur }

// Variables derives the repositories query variables for the current position.
func (c *Coordinator) Variables() github.PageVariables {
	n := c.pageSize
	if c.cur.Direction == Backward {
		return github.PageVariables{Last: &n, Before: c.cur.Before}
	}
	return github.PageVariables{First: &n, After: c.cur.After}
}

// Observe records the page info of a completed fetch. Info from a fetch
// whose variables no longer match the current position is ignored and
// Observe returns false.
func (c *Coordinator) Observe(vars github.PageVariables, info github.PageInfo) bool {
	if !sameVariables(vars, c.Variables()) {
		return false
	}
	c.info = &info
	return true
}

// CanNext reports whether RequestNext would move.
func (c *Coordinator) CanNext() bool {
	return c.info != nil && c.info.HasNextPage && c.info.EndCursor != nil
}

// CanPrevious reports whether RequestPrevious would move.
func (c *Coordinator) CanPrevious() bool {
	return c.info != nil && c.info.HasPreviousPage && c.info.StartCursor != nil
}

// RequestNext moves past the end of the current page. It is a no-op and
// returns false unless the last observed page reported a next page.
func (c *Coordinator) RequestNext() bool {
	if !c.CanNext() {
		return false
	}
	end := *c.info.EndCursor
	c.cur = Cursor{After: &end, Direction: Forward}
	c.info = nil
	return true
}

// RequestPrevious moves before the start of the current page. It is a
// no-op and returns false unless the last observed page reported a
// previous page.
func (c *Coordinator) RequestPrevious() bool {
	if !c.CanPrevious() {
		return false
	}
	start := *c.info.StartCursor
	c.cur = Cursor{Before: &start, Direction: Backward}
	c.info = nil
	return true
}

// Reset returns to the first page and forgets any observed page info.
func (c *Coordinator) Reset() {
	c.cur = Cursor{}
	c.info = nil
}

// FromCursors builds the variables for a stateless request: after pages
// forward, before pages backward, neither is the first page. Setting both
// is ambiguous and prefers after.
func FromCursors(after, before string, pageSize int) github.PageVariables {
	c := New(pageSize)
	switch {
	case after != "":
		c.cur = Cursor{After: &after, Direction: Forward}
	case before != "":
		c.cur = Cursor{Before: &before, Direction: Backward}
	}
	return c.Variables()
}

func sameVariables(a, b github.PageVariables) bool {
	return sameInt(a.First, b.First) && sameInt(a.Last, b.Last) &&
		sameString(a.After, b.After) && sameString(a.Before, b.Before)
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
