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

// Package testutil provides a GitHub GraphQL mock server and helpers that
// run the sirseer-profile binary against it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// FirstWeek is the first day of the served contribution calendar.
var FirstWeek = time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

// Profile is the data served for one user. Every day of calendar week w
// has w+1 contributions.
type Profile struct {
	Login        string
	Repositories int
	Weeks        int

	// Breakdown counts returned for every window.
	Issues             int
	PullRequests       int
	PullRequestReviews int
}

// DefaultProfile has 25 repositories and a four week calendar totalling 70.
func DefaultProfile() Profile {
	return Profile{
		Login:              "octocat",
		Repositories:       25,
		Weeks:              4,
		Issues:             2,
		PullRequests:       3,
		PullRequestReviews: 1,
	}
}

// MockServer provides common mock server configurations for testing
type MockServer struct {
	*httptest.Server
	requests atomic.Int32
}

// RequestCount returns the number of requests received.
func (s *MockServer) RequestCount() int {
	return int(s.requests.Load())
}

// Endpoint is the GraphQL URL to configure the client with.
func (s *MockServer) Endpoint() string {
	return s.URL + "/graphql"
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// NewMockServer creates a mock server that counts requests and serves them
// with handler.
func NewMockServer(t *testing.T, handler http.HandlerFunc) *MockServer {
	t.Helper()
	s := &MockServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// NewGitHubServer creates a mock server answering the repositories,
// calendar and breakdown queries for the given profiles, telling them apart
// by their selections. Unknown logins get GitHub's NOT_FOUND error.
func NewGitHubServer(t *testing.T, profiles ...Profile) *MockServer {
	t.Helper()
	return NewMockServer(t, GitHubHandler(t, profiles...))
}

// GitHubHandler answers GraphQL requests like NewGitHubServer.
func GitHubHandler(t *testing.T, profiles ...Profile) http.HandlerFunc {
	byLogin := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byLogin[p.Login] = p
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		login, _ := req.Variables["login"].(string)
		if login == "" {
			login, _ = req.Variables["username"].(string)
		}
		p, ok := byLogin[login]

		var resp map[string]interface{}
		switch {
		case !ok:
			resp = NotFoundResponse(login)
		case strings.Contains(req.Query, "repositories("):
			resp = RepositoriesResponse(p, req.Variables)
		case strings.Contains(req.Query, "contributionsCollection(from:"):
			resp = CountsResponse(p)
		case strings.Contains(req.Query, "contributionCalendar"):
			resp = CalendarResponse(p)
		default:
			t.Errorf("unexpected query: %s", req.Query)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// NewRateLimitServer creates a mock server that answers the first failCount
// requests with 429 and the rest like NewGitHubServer.
func NewRateLimitServer(t *testing.T, failCount int, profiles ...Profile) *MockServer {
	t.Helper()
	return NewTransientErrorServer(t, failCount, http.StatusTooManyRequests, profiles...)
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	})
}

// NewTransientErrorServer creates a mock server that fails N times then succeeds
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, profiles ...Profile) *MockServer {
	t.Helper()
	var failures atomic.Int32
	next := GitHubHandler(t, profiles...)

	return NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if failures.Add(1) <= int32(failCount) {
			if errorCode == http.StatusTooManyRequests {
				w.Header().Set("Retry-After", "1")
			}
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		next(w, r)
	})
}

// NotFoundResponse is GitHub's answer for an unknown login.
func NotFoundResponse(login string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{"user": nil},
		"errors": []interface{}{
			map[string]interface{}{
				"type":    "NOT_FOUND",
				"path":    []interface{}{"user"},
				"message": fmt.Sprintf("Could not resolve to a User with the login of '%s'.", login),
			},
		},
	}
}

// RepositoriesResponse serves one page of p's repositories. Cursors have the
// form "cursor:N" where N is the repository index.
func RepositoriesResponse(p Profile, vars map[string]interface{}) map[string]interface{} {
	start, end := 0, p.Repositories
	if after, ok := vars["after"].(string); ok {
		start = cursorIndex(after) + 1
	}
	if before, ok := vars["before"].(string); ok {
		end = cursorIndex(before)
	}
	if first, ok := vars["first"].(float64); ok && end-start > int(first) {
		end = start + int(first)
	}
	if last, ok := vars["last"].(float64); ok && end-start > int(last) {
		start = end - int(last)
	}
	start = max(start, 0)
	end = min(end, p.Repositories)

	nodes := make([]interface{}, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		nodes = append(nodes, repositoryNode(p.Login, i))
	}

	pageInfo := map[string]interface{}{
		"startCursor":     nil,
		"endCursor":       nil,
		"hasNextPage":     end < p.Repositories,
		"hasPreviousPage": start > 0,
	}
	if len(nodes) > 0 {
		pageInfo["startCursor"] = "cursor:" + strconv.Itoa(start)
		pageInfo["endCursor"] = "cursor:" + strconv.Itoa(end-1)
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"repositories": map[string]interface{}{
					"nodes":    nodes,
					"pageInfo": pageInfo,
				},
			},
		},
	}
}

func repositoryNode(login string, i int) map[string]interface{} {
	updated := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -i)
	return map[string]interface{}{
		"id":             fmt.Sprintf("R_%03d", i),
		"name":           fmt.Sprintf("repo-%02d", i),
		"description":    fmt.Sprintf("Sample repository %d", i),
		"url":            fmt.Sprintf("https://github.com/%s/repo-%02d", login, i),
		"isFork":         i%4 == 3,
		"updatedAt":      updated.Format(time.RFC3339),
		"stargazerCount": 100 - i,
		"issues":         map[string]interface{}{"totalCount": i},
		"pullRequests":   map[string]interface{}{"totalCount": 2 * i},
		"defaultBranchRef": map[string]interface{}{
			"target": map[string]interface{}{
				"history": map[string]interface{}{
					"edges": []interface{}{
						map[string]interface{}{"node": map[string]interface{}{
							"committedDate": updated.Add(-time.Hour).Format(time.RFC3339),
						}},
					},
				},
			},
		},
	}
}

// CalendarResponse serves p's contribution calendar.
func CalendarResponse(p Profile) map[string]interface{} {
	weeks := make([]interface{}, 0, p.Weeks)
	for w := 0; w < p.Weeks; w++ {
		days := make([]interface{}, 0, 7)
		for d := 0; d < 7; d++ {
			date := FirstWeek.AddDate(0, 0, 7*w+d)
			days = append(days, map[string]interface{}{
				"date":              date.Format("2006-01-02"),
				"contributionCount": w + 1,
			})
		}
		weeks = append(weeks, map[string]interface{}{"contributionDays": days})
	}
	return map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"contributionsCollection": map[string]interface{}{
					"contributionCalendar": map[string]interface{}{"weeks": weeks},
				},
			},
		},
	}
}

// CountsResponse serves p's breakdown counts.
func CountsResponse(p Profile) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"contributionsCollection": map[string]interface{}{
					"issueContributions":             map[string]interface{}{"totalCount": p.Issues},
					"pullRequestContributions":       map[string]interface{}{"totalCount": p.PullRequests},
					"pullRequestReviewContributions": map[string]interface{}{"totalCount": p.PullRequestReviews},
				},
			},
		},
	}
}

func cursorIndex(c string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(c, "cursor:"))
	if err != nil {
		return -1
	}
	return n
}
