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

package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
)

type result struct{ value string }

func TestRunLoadsThenSettles(t *testing.T) {
	q := eventloop.NewQueue()
	changes := 0
	query := New[string, *result](context.Background(), q, func(_ context.Context, login string) (*result, error) {
		return &result{value: "hello " + login}, nil
	}, func() { changes++ })

	query.Run("octocat")
	st := query.State()
	assert.True(t, st.Active)
	assert.True(t, st.Loading)
	assert.Equal(t, "octocat", st.Vars)

	q.Drain()
	st = query.State()
	assert.False(t, st.Loading)
	require.True(t, st.HasData)
	assert.Equal(t, "hello octocat", st.Data.value)
	assert.NoError(t, st.Err)
	assert.Equal(t, 2, changes)
}

func TestNewRunSupersedesInFlight(t *testing.T) {
	q := eventloop.NewQueue()
	var contexts []context.Context
	query := New[string, string](context.Background(), q, func(ctx context.Context, login string) (string, error) {
		contexts = append(contexts, ctx)
		return login, nil
	}, nil)

	query.Run("first")
	query.Run("second")
	assert.ErrorIs(t, contexts[0].Err(), context.Canceled)

	q.Drain()
	st := query.State()
	assert.Equal(t, "second", st.Data)
	assert.Equal(t, "second", st.Vars)
}

func TestErrorWithPartialData(t *testing.T) {
	q := eventloop.NewQueue()
	boom := errors.New("boom")
	query := New[int, *result](context.Background(), q, func(_ context.Context, _ int) (*result, error) {
		return &result{value: "partial"}, boom
	}, nil)

	query.Run(1)
	q.Drain()
	st := query.State()
	assert.ErrorIs(t, st.Err, boom)
	assert.True(t, st.HasData)
	assert.Equal(t, "partial", st.Data.value)
}

func TestErrorWithoutData(t *testing.T) {
	q := eventloop.NewQueue()
	query := New[int, *result](context.Background(), q, func(_ context.Context, _ int) (*result, error) {
		return nil, errors.New("boom")
	}, nil)

	query.Run(1)
	q.Drain()
	assert.False(t, query.State().HasData)
	assert.Error(t, query.State().Err)
}

func TestSkipDropsResult(t *testing.T) {
	q := eventloop.NewQueue()
	query := New[string, string](context.Background(), q, func(_ context.Context, v string) (string, error) {
		return v, nil
	}, nil)

	query.Run("x")
	query.Skip()
	q.Drain()

	st := query.State()
	assert.False(t, st.Active)
	assert.False(t, st.Loading)
	assert.False(t, st.HasData)
}

func TestCloseCancelsWithoutNotify(t *testing.T) {
	q := eventloop.NewQueue()
	changes := 0
	var ctx context.Context
	query := New[string, string](context.Background(), q, func(c context.Context, v string) (string, error) {
		ctx = c
		return v, nil
	}, func() { changes++ })

	query.Run("x")
	query.Close()
	q.Drain()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, 1, changes)
	assert.True(t, query.State().Loading)
}
