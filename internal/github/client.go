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
	"time"
)

// Client defines the interface for reading a user's profile from GitHub.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchRepositories retrieves one page of repositories owned by login,
	// most recently updated first. A login that does not resolve to a user
	// yields Kind NoUser rather than an error.
	FetchRepositories(ctx context.Context, login string, vars PageVariables) (*RepositoriesResult, error)

	// FetchContributionCalendar retrieves the weekly contribution calendar for
	// the last year.
	FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error)

	// FetchContributionCounts retrieves issue, pull request and review
	// contribution totals between from and to.
	FetchContributionCounts(ctx context.Context, login string, from, to time.Time) (*ContributionCounts, error)
}
