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
	"encoding/json"
	"time"
)

// Repository is one row of a user's repository list.
type Repository struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	URL          string     `json:"url"`
	IsFork       bool       `json:"is_fork"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Stars        int        `json:"stars"`
	Issues       int        `json:"issues"`
	PullRequests int        `json:"pull_requests"`
	LastCommitAt *time.Time `json:"last_commit_at,omitempty"`
}

// PageInfo is the cursor information returned with a repository page.
type PageInfo struct {
	StartCursor     *string `json:"start_cursor"`
	EndCursor       *string `json:"end_cursor"`
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
}

// PageVariables are the nullable paging arguments of the repositories query.
// Forward paging sets First and optionally After; backward paging sets Last
// and Before. Unset fields are sent as null.
type PageVariables struct {
	First  *int    `json:"first"`
	After  *string `json:"after"`
	Last   *int    `json:"last"`
	Before *string `json:"before"`
}

// ResultKind distinguishes the shapes a repositories response can take.
type ResultKind int

const (
	// NoUser means the login does not resolve to a user.
	NoUser ResultKind = iota
	// EmptyRepoList means the user exists but owns no public repositories.
	EmptyRepoList
	// RepoPage means at least one repository was returned.
	RepoPage
)

func (k ResultKind) String() string {
	switch k {
	case NoUser:
		return "no_user"
	case EmptyRepoList:
		return "empty"
	case RepoPage:
		return "page"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind by name.
func (k ResultKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// RepositoriesResult is a repositories response resolved at the API boundary.
// Repositories and PageInfo are only meaningful when Kind is RepoPage.
type RepositoriesResult struct {
	Kind         ResultKind   `json:"kind"`
	Repositories []Repository `json:"repositories,omitempty"`
	PageInfo     PageInfo     `json:"page_info"`
}

// ContributionDay is a single day of the contribution calendar.
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ContributionWeek groups the days of one calendar week, oldest first.
type ContributionWeek struct {
	Days []ContributionDay `json:"days"`
}

// ContributionCalendar is the last year of daily contribution counts.
type ContributionCalendar struct {
	Weeks []ContributionWeek `json:"weeks"`
}

// ContributionCounts are the per-type contribution totals for a time window.
// Commits are not part of the response.
type ContributionCounts struct {
	Issues             int `json:"issues"`
	PullRequests       int `json:"pull_requests"`
	PullRequestReviews int `json:"pull_request_reviews"`
}

// PageSize is the number of repositories requested per page.
const PageSize = 10

// FirstPage returns the variables for the initial page.
func FirstPage() PageVariables {
	n := PageSize
	return PageVariables{First: &n}
}
