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

// Package remote tracks the loading, error and data state of one query
// whose variables change over time.
package remote

import (
	"context"
	"reflect"

	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
)

// Fetcher performs one request.
type Fetcher[V, T any] func(ctx context.Context, vars V) (T, error)

// State is the observable status of a query. Data and Err may both be set
// when the upstream returned partial data alongside an error.
type State[V, T any] struct {
	Active  bool
	Loading bool
	Vars    V
	Data    T
	HasData bool
	Err     error
}

// Query runs a Fetcher for the latest variables. Starting a new request
// supersedes the one in flight: its context is canceled and its result is
// dropped. Methods must be called on the owning loop.
type Query[V, T any] struct {
	ctx      context.Context
	loop     eventloop.Poster
	fetch    Fetcher[V, T]
	onChange func()

	state  State[V, T]
	gen    uint64
	cancel context.CancelFunc
}

// New creates an idle query. onChange runs on the loop after every state change.
func New[V, T any](ctx context.Context, loop eventloop.Poster, fetch Fetcher[V, T], onChange func()) *Query[V, T] {
	return &Query[V, T]{ctx: ctx, loop: loop, fetch: fetch, onChange: onChange}
}

// State returns the current state.
func (q *Query[V, T]) State() State[V, T] { return q.state }

// Run starts a request for vars.
func (q *Query[V, T]) Run(vars V) {
	q.supersede()
	gen := q.gen

	ctx, cancel := context.WithCancel(q.ctx)
	q.cancel = cancel
	q.state = State[V, T]{Active: true, Loading: true, Vars: vars}
	q.changed()

	fetch := q.fetch
	q.loop.Go(func() {
		data, err := fetch(ctx, vars)
		q.loop.Post(func() { q.complete(gen, data, err) })
	})
}

// Skip abandons any request and returns to idle.
func (q *Query[V, T]) Skip() {
	q.supersede()
	q.state = State[V, T]{}
	q.changed()
}

// Close cancels the in-flight request without notifying.
func (q *Query[V, T]) Close() {
	q.supersede()
}

func (q *Query[V, T]) supersede() {
	q.gen++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

func (q *Query[V, T]) complete(gen uint64, data T, err error) {
	if gen != q.gen {
		return
	}
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.state.Loading = false
	q.state.Data = data
	q.state.HasData = err == nil || !isZero(data)
	q.state.Err = err
	q.changed()
}

func (q *Query[V, T]) changed() {
	if q.onChange != nil {
		q.onChange()
	}
}

func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
