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
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var _ Client = (*CachingClient)(nil)

type countingRecorder struct {
	mu       sync.Mutex
	hits     map[string]int
	misses   map[string]int
	requests map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}, requests: map[string]int{}}
}

func (r *countingRecorder) RecordRequest(op string, _ error, _ time.Duration) {
	r.mu.Lock()
	r.requests[op]++
	r.mu.Unlock()
}

func (r *countingRecorder) TrackInflight(string) func() { return func() {} }

func (r *countingRecorder) CacheHit(op string) {
	r.mu.Lock()
	r.hits[op]++
	r.mu.Unlock()
}

func (r *countingRecorder) CacheMiss(op string) {
	r.mu.Lock()
	r.misses[op]++
	r.mu.Unlock()
}

// blockingClient counts calendar fetches and blocks them until release is closed.
type blockingClient struct {
	*MockClient
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingClient) FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error) {
	b.calls.Add(1)
	<-b.release
	return b.MockClient.FetchContributionCalendar(ctx, login)
}

func TestCachingClient_CachesResponses(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClientWithOptions(WithGeneratedRepositories("big", 25))
	rec := newCountingRecorder()
	client := NewCachingClient(mock, CacheOptions{Recorder: rec})

	first, err := client.FetchRepositories(ctx, "big", FirstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := client.FetchRepositories(ctx, "BIG", FirstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != again {
		t.Error("expected the cached result to be returned")
	}
	if mock.CallCount != 1 {
		t.Errorf("expected 1 upstream call, got %d", mock.CallCount)
	}

	n := PageSize
	if _, err := client.FetchRepositories(ctx, "big", PageVariables{First: &n, After: first.PageInfo.EndCursor}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount != 2 {
		t.Errorf("expected different variables to miss the cache, got %d calls", mock.CallCount)
	}

	if rec.hits[OpRepositories] != 1 || rec.misses[OpRepositories] != 2 || rec.requests[OpRepositories] != 2 {
		t.Errorf("unexpected recorder counts: hits=%v misses=%v requests=%v", rec.hits, rec.misses, rec.requests)
	}
	if client.Len() != 2 {
		t.Errorf("expected 2 cached entries, got %d", client.Len())
	}

	client.Purge()
	if client.Len() != 0 {
		t.Errorf("expected empty cache after purge, got %d", client.Len())
	}
}

func TestCachingClient_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()
	mock.SetError(errors.New("temporary"))
	client := NewCachingClient(mock, CacheOptions{})

	if _, err := client.FetchContributionCalendar(ctx, "octocat"); err == nil {
		t.Fatal("expected error")
	}
	mock.SetError(nil)
	if _, err := client.FetchContributionCalendar(ctx, "octocat"); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if mock.CallCount != 2 {
		t.Errorf("expected 2 upstream calls, got %d", mock.CallCount)
	}
}

func TestCachingClient_CountsKeyedByWindow(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()
	client := NewCachingClient(mock, CacheOptions{})

	w1 := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, 7)
	for _, from := range []time.Time{w1, w2, w1} {
		if _, err := client.FetchContributionCounts(ctx, "octocat", from, from.AddDate(0, 0, 7)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if mock.CallCount != 2 {
		t.Errorf("expected 2 upstream calls, got %d", mock.CallCount)
	}
}

func TestCachingClient_DeduplicatesInFlight(t *testing.T) {
	base := &blockingClient{MockClient: NewMockClient(), release: make(chan struct{})}
	client := NewCachingClient(base, CacheOptions{})

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*ContributionCalendar, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cal, err := client.FetchContributionCalendar(context.Background(), "octocat")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = cal
		}(i)
	}

	// Wait for the shared call to start before releasing it.
	deadline := time.Now().Add(5 * time.Second)
	for base.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(base.release)
	wg.Wait()

	if got := base.calls.Load(); got < 1 || got > callers {
		t.Fatalf("unexpected upstream calls: %d", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] == nil {
			t.Fatalf("caller %d got no result", i)
		}
	}
}

func TestCachingClient_CallerCancellation(t *testing.T) {
	base := &blockingClient{MockClient: NewMockClient(), release: make(chan struct{})}
	client := NewCachingClient(base, CacheOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.FetchContributionCalendar(ctx, "octocat")
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(base.release)
	// The shared fetch still completes and fills the cache.
	deadline := time.Now().Add(5 * time.Second)
	for client.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if client.Len() != 1 {
		t.Errorf("expected the completed fetch to be cached, got %d entries", client.Len())
	}
}
