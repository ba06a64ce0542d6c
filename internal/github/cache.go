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

package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Operation names used for cache keys and metrics.
const (
	OpRepositories = "repositories"
	OpCalendar     = "calendar"
	OpBreakdown    = "breakdown"
)

// Recorder receives cache and upstream request measurements.
type Recorder interface {
	RecordRequest(op string, err error, d time.Duration)
	TrackInflight(op string) func()
	CacheHit(op string)
	CacheMiss(op string)
}

// CacheOptions configures a CachingClient.
type CacheOptions struct {
	// Size is the maximum number of cached responses. Defaults to 512.
	Size int
	// TTL is how long a response stays fresh. Defaults to 5 minutes.
	TTL time.Duration
	// Recorder is optional.
	Recorder Recorder
}

// CachingClient decorates a Client with a bounded, expiring response cache.
// Concurrent identical requests share one upstream call. Errors are never
// cached. Returned values are shared between callers and must not be modified.
type CachingClient struct {
	base  Client
	cache *expirable.LRU[string, any]
	group singleflight.Group
	rec   Recorder
}

// NewCachingClient wraps base.
func NewCachingClient(base Client, opts CacheOptions) *CachingClient {
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	return &CachingClient{
		base:  base,
		cache: expirable.NewLRU[string, any](opts.Size, nil, opts.TTL),
		rec:   opts.Recorder,
	}
}

// FetchRepositories implements Client.
func (c *CachingClient) FetchRepositories(ctx context.Context, login string, vars PageVariables) (*RepositoriesResult, error) {
	key := cacheKey(OpRepositories, login, describeVars(vars))
	return cached(ctx, c, OpRepositories, key, func(ctx context.Context) (*RepositoriesResult, error) {
		return c.base.FetchRepositories(ctx, login, vars)
	})
}

// FetchContributionCalendar implements Client.
func (c *CachingClient) FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error) {
	key := cacheKey(OpCalendar, login)
	return cached(ctx, c, OpCalendar, key, func(ctx context.Context) (*ContributionCalendar, error) {
		return c.base.FetchContributionCalendar(ctx, login)
	})
}

// FetchContributionCounts implements Client.
func (c *CachingClient) FetchContributionCounts(ctx context.Context, login string, from, to time.Time) (*ContributionCounts, error) {
	key := cacheKey(OpBreakdown, login, from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano))
	return cached(ctx, c, OpBreakdown, key, func(ctx context.Context) (*ContributionCounts, error) {
		return c.base.FetchContributionCounts(ctx, login, from, to)
	})
}

// Len returns the number of cached responses.
func (c *CachingClient) Len() int { return c.cache.Len() }

// Purge drops every cached response.
func (c *CachingClient) Purge() { c.cache.Purge() }

func cached[T any](ctx context.Context, c *CachingClient, op, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.cache.Get(key); ok {
		if c.rec != nil {
			c.rec.CacheHit(op)
		}
		return v.(T), nil
	}
	if c.rec != nil {
		c.rec.CacheMiss(op)
	}

	// The shared call outlives any single caller's cancellation; the HTTP
	// client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		var done func()
		if c.rec != nil {
			done = c.rec.TrackInflight(op)
			defer done()
		}
		start := time.Now()
		v, err := fetch(shared)
		if c.rec != nil {
			c.rec.RecordRequest(op, err, time.Since(start))
		}
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func cacheKey(op, login string, parts ...string) string {
	return op + "\x00" + strings.ToLower(login) + "\x00" + strings.Join(parts, "\x00")
}

func describeVars(v PageVariables) string {
	return fmt.Sprintf("first=%s after=%s last=%s before=%s",
		describeInt(v.First), describeString(v.After), describeInt(v.Last), describeString(v.Before))
}

func describeInt(p *int) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprint(*p)
}

func describeString(p *string) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *p)
}
