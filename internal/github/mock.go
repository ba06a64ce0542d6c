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
	"strconv"
	"strings"
	"sync"
	"time"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
)

// MockClient is an in-memory implementation of the Client interface for testing.
// Logins missing from Repositories do not exist.
type MockClient struct {
	mu sync.Mutex

	// Repositories holds every repository per login, in list order.
	Repositories map[string][]Repository

	// Calendars holds the contribution calendar per login.
	Calendars map[string]*ContributionCalendar

	// Counts holds contribution counts keyed by login and window start date (YYYY-MM-DD).
	Counts map[string]ContributionCounts

	// Error to return from every call
	Error error

	// CountsError is returned by FetchContributionCounts only.
	CountsError error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	CallCount int
	Calls     []string
	LastLogin string
	LastVars  PageVariables
}

// NewMockClient creates a new mock client with default test data for "octocat".
func NewMockClient() *MockClient {
	return &MockClient{
		Repositories: map[string][]Repository{"octocat": generateTestRepos(3)},
		Calendars:    map[string]*ContributionCalendar{"octocat": generateTestCalendar(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 4)},
		Counts:       map[string]ContributionCounts{},
	}
}

// CountsKey builds the Counts map key for login and a window starting at from.
func CountsKey(login string, from time.Time) string {
	return strings.ToLower(login) + "@" + from.UTC().Format("2006-01-02")
}

func (m *MockClient) record(call, login string) error {
	m.CallCount++
	m.Calls = append(m.Calls, call+":"+login)
	m.LastLogin = login

	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", profileerrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", profileerrors.ErrNetworkFailure)
	}
	return m.Error
}

// FetchRepositories implements the Client interface with cursor paging over
// the configured slice. Cursors encode the item index.
func (m *MockClient) FetchRepositories(ctx context.Context, login string, vars PageVariables) (*RepositoriesResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastVars = vars
	if err := m.record(OpRepositories, login); err != nil {
		return nil, err
	}

	repos, ok := m.Repositories[login]
	if !ok {
		return &RepositoriesResult{Kind: NoUser}, nil
	}
	if len(repos) == 0 {
		return &RepositoriesResult{Kind: EmptyRepoList}, nil
	}

	start, end := 0, len(repos)
	if vars.After != nil {
		start = cursorIndex(*vars.After) + 1
	}
	if vars.Before != nil {
		end = cursorIndex(*vars.Before)
	}
	if vars.First != nil && end-start > *vars.First {
		end = start + *vars.First
	}
	if vars.Last != nil && end-start > *vars.Last {
		start = end - *vars.Last
	}
	if start < 0 {
		start = 0
	}
	if end > len(repos) {
		end = len(repos)
	}
	if start >= end {
		return &RepositoriesResult{Kind: EmptyRepoList}, nil
	}

	first, last := cursorAt(start), cursorAt(end-1)
	return &RepositoriesResult{
		Kind:         RepoPage,
		Repositories: append([]Repository(nil), repos[start:end]...),
		PageInfo: PageInfo{
			StartCursor:     &first,
			EndCursor:       &last,
			HasNextPage:     end < len(repos),
			HasPreviousPage: start > 0,
		},
	}, nil
}

// FetchContributionCalendar implements the Client interface.
func (m *MockClient) FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(OpCalendar, login); err != nil {
		return nil, err
	}
	cal, ok := m.Calendars[login]
	if !ok {
		if _, exists := m.Repositories[login]; exists {
			return &ContributionCalendar{}, nil
		}
		return nil, fmt.Errorf("user '%s' not found: %w", login, profileerrors.ErrUserNotFound)
	}
	return cal, nil
}

// FetchContributionCounts implements the Client interface.
func (m *MockClient) FetchContributionCounts(ctx context.Context, login string, from, to time.Time) (*ContributionCounts, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(OpBreakdown, login); err != nil {
		return nil, err
	}
	if m.CountsError != nil {
		return nil, m.CountsError
	}
	counts := m.Counts[CountsKey(login, from)]
	return &counts, nil
}

func cursorAt(i int) string { return "cursor:" + strconv.Itoa(i) }

func cursorIndex(c string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(c, "cursor:"))
	if err != nil {
		return 0
	}
	return n
}

// generateTestRepos creates n sample repositories, most recently updated first.
func generateTestRepos(n int) []Repository {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repos := make([]Repository, 0, n)
	for i := 0; i < n; i++ {
		updated := base.Add(-time.Duration(i) * 24 * time.Hour)
		commit := updated.Add(-time.Hour)
		repos = append(repos, Repository{
			ID:           fmt.Sprintf("R_%03d", i),
			Name:         fmt.Sprintf("repo-%02d", i),
			Description:  fmt.Sprintf("Sample repository %d", i),
			URL:          fmt.Sprintf("https://github.com/octocat/repo-%02d", i),
			IsFork:       i%4 == 3,
			UpdatedAt:    updated,
			Stars:        100 - i,
			Issues:       i,
			PullRequests: i * 2,
			LastCommitAt: &commit,
		})
	}
	return repos
}

// generateTestCalendar creates weeks of seven days starting at start, where
// every day of week w has w+1 contributions.
func generateTestCalendar(start time.Time, weeks int) *ContributionCalendar {
	cal := &ContributionCalendar{Weeks: make([]ContributionWeek, 0, weeks)}
	for w := 0; w < weeks; w++ {
		week := ContributionWeek{Days: make([]ContributionDay, 0, 7)}
		for d := 0; d < 7; d++ {
			week.Days = append(week.Days, ContributionDay{
				Date:  start.AddDate(0, 0, w*7+d),
				Count: w + 1,
			})
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithRepositories sets the repositories of login.
func WithRepositories(login string, repos []Repository) MockClientOption {
	return func(m *MockClient) {
		m.Repositories[login] = repos
	}
}

// WithGeneratedRepositories gives login n sample repositories.
func WithGeneratedRepositories(login string, n int) MockClientOption {
	return func(m *MockClient) {
		m.Repositories[login] = generateTestRepos(n)
	}
}

// WithCalendar sets the contribution calendar of login.
func WithCalendar(login string, cal *ContributionCalendar) MockClientOption {
	return func(m *MockClient) {
		m.Calendars[login] = cal
	}
}

// WithCounts sets the counts returned for the window starting at from.
func WithCounts(login string, from time.Time, counts ContributionCounts) MockClientOption {
	return func(m *MockClient) {
		m.Counts[CountsKey(login, from)] = counts
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

// SetError changes the error returned by every call.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	m.Error = err
	m.mu.Unlock()
}

// CallsSnapshot returns a copy of the recorded calls.
func (m *MockClient) CallsSnapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}
