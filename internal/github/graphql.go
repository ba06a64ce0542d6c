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
	"net/http"
	"strings"
	"time"

	"github.com/shurcooL/graphql"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/giterror"
)

// DateTime is GitHub's DateTime scalar. The type name is what the GraphQL
// client puts in the variable declaration.
type DateTime struct{ time.Time }

// GraphQLClient implements the GitHub Client interface using GraphQL API.
type GraphQLClient struct {
	client    *graphql.Client
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client with the provided token and endpoint.
// The client is configured with:
//   - Bearer authentication from a static oauth2 token source
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
func NewGraphQLClient(token string, endpoint string) *GraphQLClient {
	return NewGraphQLClientWithHTTP(endpoint, newHTTPClient(token, 0))
}

// NewGraphQLClientWithHTTP creates a client that sends requests through httpClient.
func NewGraphQLClientWithHTTP(endpoint string, httpClient *http.Client) *GraphQLClient {
	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		inspector: giterror.NewErrorChainInspector(giterror.NewInspector()),
	}
}

type repositoryNode struct {
	ID             graphql.ID
	Name           graphql.String
	Description    *graphql.String
	URL            graphql.String
	IsFork         graphql.Boolean
	UpdatedAt      time.Time
	StargazerCount graphql.Int
	Issues         struct {
		TotalCount graphql.Int
	}
	PullRequests struct {
		TotalCount graphql.Int
	}
	DefaultBranchRef *struct {
		Target struct {
			Commit struct {
				History struct {
					Edges []struct {
						Node struct {
							CommittedDate time.Time
						}
					}
				} `graphql:"history(first: 1)"`
			} `graphql:"... on Commit"`
		}
	}
}

type repositoriesQuery struct {
	User *struct {
		Repositories struct {
			Nodes    []repositoryNode
			PageInfo struct {
				StartCursor     *graphql.String
				EndCursor       *graphql.String
				HasNextPage     graphql.Boolean
				HasPreviousPage graphql.Boolean
			}
		} `graphql:"repositories(first: $first, after: $after, last: $last, before: $before, orderBy: {field: UPDATED_AT, direction: DESC}, ownerAffiliations: [OWNER])"`
	} `graphql:"user(login: $login)"`
}

// FetchRepositories fetches one page of the user's repositories.
func (c *GraphQLClient) FetchRepositories(ctx context.Context, login string, vars PageVariables) (*RepositoriesResult, error) {
	var query repositoriesQuery

	variables := map[string]interface{}{
		"login":  graphql.String(login),
		"first":  optionalInt(vars.First),
		"after":  optionalString(vars.After),
		"last":   optionalInt(vars.Last),
		"before": optionalString(vars.Before),
	}

	err := c.client.Query(ctx, &query, variables)
	if query.User == nil {
		if err == nil || unresolvedUser(err) {
			return &RepositoriesResult{Kind: NoUser}, nil
		}
		return nil, c.mapError(err, login, "fetch repositories")
	}
	// Partial data is kept; an error alongside a user is still a failure.
	if err != nil {
		return nil, c.mapError(err, login, "fetch repositories")
	}

	conn := query.User.Repositories
	res := &RepositoriesResult{
		Kind: EmptyRepoList,
		PageInfo: PageInfo{
			StartCursor:     stringPtr(conn.PageInfo.StartCursor),
			EndCursor:       stringPtr(conn.PageInfo.EndCursor),
			HasNextPage:     bool(conn.PageInfo.HasNextPage),
			HasPreviousPage: bool(conn.PageInfo.HasPreviousPage),
		},
	}
	if len(conn.Nodes) == 0 {
		return res, nil
	}

	res.Kind = RepoPage
	res.Repositories = make([]Repository, 0, len(conn.Nodes))
	for i := range conn.Nodes {
		res.Repositories = append(res.Repositories, convertRepository(&conn.Nodes[i]))
	}
	return res, nil
}

func convertRepository(n *repositoryNode) Repository {
	repo := Repository{
		ID:           fmt.Sprint(n.ID),
		Name:         string(n.Name),
		URL:          string(n.URL),
		IsFork:       bool(n.IsFork),
		UpdatedAt:    n.UpdatedAt,
		Stars:        int(n.StargazerCount),
		Issues:       int(n.Issues.TotalCount),
		PullRequests: int(n.PullRequests.TotalCount),
	}
	if n.Description != nil {
		repo.Description = string(*n.Description)
	}
	if n.DefaultBranchRef != nil {
		if edges := n.DefaultBranchRef.Target.Commit.History.Edges; len(edges) > 0 {
			at := edges[0].Node.CommittedDate
			repo.LastCommitAt = &at
		}
	}
	return repo
}

type calendarQuery struct {
	User *struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				Weeks []struct {
					ContributionDays []struct {
						Date              graphql.String
						ContributionCount graphql.Int
					}
				}
			}
		}
	} `graphql:"user(login: $login)"`
}

// FetchContributionCalendar fetches the user's contribution calendar.
func (c *GraphQLClient) FetchContributionCalendar(ctx context.Context, login string) (*ContributionCalendar, error) {
	var query calendarQuery

	variables := map[string]interface{}{
		"login": graphql.String(login),
	}

	err := c.client.Query(ctx, &query, variables)
	if err != nil {
		return nil, c.mapError(err, login, "fetch contribution calendar")
	}
	if query.User == nil {
		return nil, fmt.Errorf("user '%s' not found: %w", login, profileerrors.ErrUserNotFound)
	}

	weeks := query.User.ContributionsCollection.ContributionCalendar.Weeks
	cal := &ContributionCalendar{Weeks: make([]ContributionWeek, 0, len(weeks))}
	for _, w := range weeks {
		week := ContributionWeek{Days: make([]ContributionDay, 0, len(w.ContributionDays))}
		for _, d := range w.ContributionDays {
			date, perr := time.Parse("2006-01-02", string(d.Date))
			if perr != nil {
				return nil, fmt.Errorf("invalid contribution date %q: %w", d.Date, perr)
			}
			week.Days = append(week.Days, ContributionDay{Date: date, Count: int(d.ContributionCount)})
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal, nil
}

type countsQuery struct {
	User *struct {
		ContributionsCollection struct {
			IssueContributions struct {
				TotalCount graphql.Int
			}
			PullRequestContributions struct {
				TotalCount graphql.Int
			}
			PullRequestReviewContributions struct {
				TotalCount graphql.Int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $username)"`
}

// FetchContributionCounts fetches contribution totals between from and to.
func (c *GraphQLClient) FetchContributionCounts(ctx context.Context, login string, from, to time.Time) (*ContributionCounts, error) {
	var query countsQuery

	variables := map[string]interface{}{
		"username": graphql.String(login),
		"from":     DateTime{from.UTC()},
		"to":       DateTime{to.UTC()},
	}

	err := c.client.Query(ctx, &query, variables)
	if err != nil {
		return nil, c.mapError(err, login, "fetch contribution breakdown")
	}
	if query.User == nil {
		return nil, fmt.Errorf("user '%s' not found: %w", login, profileerrors.ErrUserNotFound)
	}

	cc := query.User.ContributionsCollection
	return &ContributionCounts{
		Issues:             int(cc.IssueContributions.TotalCount),
		PullRequests:       int(cc.PullRequestContributions.TotalCount),
		PullRequestReviews: int(cc.PullRequestReviewContributions.TotalCount),
	}, nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, login, op string) error {
	if err == nil {
		return nil
	}

	switch giterror.Classify(c.inspector, err) {
	case giterror.KindRateLimit:
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", profileerrors.ErrRateLimit)
	case giterror.KindAuth:
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", profileerrors.ErrInvalidToken)
	case giterror.KindNotFound:
		if unresolvedUser(err) {
			return fmt.Errorf("user '%s' not found: %w", login, profileerrors.ErrUserNotFound)
		}
	case giterror.KindComplexity:
		return fmt.Errorf("GraphQL query complexity exceeded: %w", profileerrors.ErrQueryComplexity)
	case giterror.KindNetwork:
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w", profileerrors.ErrNetworkFailure)
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// unresolvedUser reports whether err is GitHub's GraphQL error for a login
// that matches no user. HTTP failures, including a 404 from a wrong endpoint,
// never qualify: the response did not reach the GraphQL layer.
func unresolvedUser(err error) bool {
	msg := strings.ToLower(err.Error())
	if strings.HasPrefix(msg, httpStatusErrorPrefix) {
		return false
	}
	return strings.Contains(msg, "could not resolve to a user")
}

// httpStatusErrorPrefix starts the error the GraphQL client returns for a
// non-200 response.
const httpStatusErrorPrefix = "non-200 ok status code"

func optionalInt(v *int) *graphql.Int {
	if v == nil {
		return nil
	}
	return graphql.NewInt(graphql.Int(int32(*v))) // #nosec G115 - page sizes are small
}

func optionalString(v *string) *graphql.String {
	if v == nil {
		return nil
	}
	return graphql.NewString(graphql.String(*v))
}

func stringPtr(v *graphql.String) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
