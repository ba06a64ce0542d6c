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
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/giterror"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps a Client and retries rate-limited and network failures
// with exponential backoff. Other errors are returned immediately.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector giterror.Inspector
	logger    *slog.Logger

	// wait blocks for d or until ctx is done.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRetryClient creates a RetryClient. A nil config uses DefaultRetryConfig
// and a nil logger uses slog.Default.
func NewRetryClient(client Client, config *RetryConfig, logger *slog.Logger) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: giterror.NewErrorChainInspector(giterror.NewInspector()),
		logger:    logger,
		wait:      sleepContext,
	}
}

// FetchRepositories implements the Client interface with retry logic
func (r *RetryClient) FetchRepositories(ctx context.Context, login string, vars PageVariables) (*RepositoriesResult, error) {
	return withRetry(ctx, r, OpRepositories, func(ctx context.Context) (*RepositoriesResult, error) {
		return r.client.FetchRepositories(ctx, login, vars)
	})
}

// FetchContributionCalendar implements the Client interface with retry logic
func (r *RetryClient) FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error) {
	return withRetry(ctx, r, OpCalendar, func(ctx context.Context) (*ContributionCalendar, error) {
		return r.client.FetchContributionCalendar(ctx, login)
	})
}

// FetchContributionCounts implements the Client interface with retry logic
func (r *RetryClient) FetchContributionCounts(ctx context.Context, login string, from, to time.Time) (*ContributionCounts, error) {
	return withRetry(ctx, r, OpBreakdown, func(ctx context.Context) (*ContributionCounts, error) {
		return r.client.FetchContributionCounts(ctx, login, from, to)
	})
}

func withRetry[T any](ctx context.Context, r *RetryClient, op string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !r.shouldRetry(err) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == r.config.MaxRetries {
			break
		}

		backoff := r.calculateBackoff(attempt)
		reason := "network error"
		if r.isRateLimit(err) {
			reason = "rate limit"
		}
		r.logger.Warn("retrying github request",
			"op", op,
			"reason", reason,
			"backoff", backoff,
			"attempt", attempt+1,
			"max_retries", r.config.MaxRetries)

		if err := r.wait(ctx, backoff); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

func (r *RetryClient) isRateLimit(err error) bool {
	return errors.Is(err, profileerrors.ErrRateLimit) || r.inspector.IsRateLimitError(err)
}

// shouldRetry reports whether err is transient. Auth, not-found and
// complexity failures are not.
func (r *RetryClient) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if r.isRateLimit(err) {
		return true
	}
	return errors.Is(err, profileerrors.ErrNetworkFailure) || r.inspector.IsNetworkError(err)
}

// calculateBackoff calculates the backoff duration for the given attempt
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffMultiplier, float64(attempt))
	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	// ±10% jitter
	backoff += backoff * 0.1 * (2*rand.Float64() - 1)
	return time.Duration(backoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
