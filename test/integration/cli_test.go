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

package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-profile/test/testutil"
)

func TestCLI_Version(t *testing.T) {
	result := testutil.RunCLI(t, []string{"--version"}, nil)
	testutil.AssertCLISuccess(t, result)

	if !strings.Contains(result.Stdout, "sirseer-profile version "+testutil.BuildVersion) {
		t.Errorf("Expected stamped version output, got: %s", result.Stdout)
	}
}

func TestCLI_MissingToken(t *testing.T) {
	result := testutil.RunCLI(t, []string{"repos", "octocat"}, nil)

	testutil.AssertCLIError(t, result, "GitHub token not found")
	testutil.AssertExitCode(t, result, testutil.ExitGeneral)
}

func TestCLI_ReposFirstPage(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())

	result := testutil.RunWithMockServer(t, server, "repos", "octocat", "--format", "ndjson")
	testutil.AssertCLISuccess(t, result)

	records := result.Records(t, "")
	if len(records) != 11 {
		t.Fatalf("Expected 10 repositories and a page_info record, got %d lines", len(records))
	}
	if records[0]["type"] != "repository" || records[0]["name"] != "repo-00" {
		t.Errorf("First record = %v", records[0])
	}
	last := records[10]
	if last["type"] != "page_info" || last["end_cursor"] != "cursor:9" || last["has_next_page"] != true {
		t.Errorf("Page info record = %v", last)
	}
	if !strings.Contains(result.Stderr, "Next page: --after cursor:9") {
		t.Errorf("Expected next page hint, got: %s", result.Stderr)
	}
}

func TestCLI_ReposPaging(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())

	forward := testutil.RunWithMockServer(t, server, "repos", "octocat", "--format", "ndjson", "--after", "cursor:19")
	testutil.AssertCLISuccess(t, forward)
	records := forward.Records(t, "")
	if len(records) != 6 || records[0]["name"] != "repo-20" {
		t.Fatalf("Expected repo-20..repo-24 and page info, got %v", records)
	}
	if strings.Contains(forward.Stderr, "Next page") || !strings.Contains(forward.Stderr, "Previous page: --before cursor:20") {
		t.Errorf("Unexpected paging hints: %s", forward.Stderr)
	}

	backward := testutil.RunWithMockServer(t, server, "repos", "octocat", "--format", "ndjson", "--before", "cursor:20")
	testutil.AssertCLISuccess(t, backward)
	records = backward.Records(t, "")
	if len(records) != 11 || records[0]["name"] != "repo-10" || records[9]["name"] != "repo-19" {
		t.Errorf("Expected repo-10..repo-19, got %d records starting at %v", len(records), records[0]["name"])
	}
}

func TestCLI_ReposTable(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())

	result := testutil.RunWithMockServer(t, server, "repos", "octocat")
	testutil.AssertCLISuccess(t, result)

	for _, want := range []string{"NAME", "STARS", "repo-00", "repo-09"} {
		if !strings.Contains(strings.ToUpper(result.Stdout), strings.ToUpper(want)) {
			t.Errorf("Table output missing %q:\n%s", want, result.Stdout)
		}
	}
	if strings.Contains(result.Stdout, "repo-10") {
		t.Errorf("Table output has more than one page:\n%s", result.Stdout)
	}
}

func TestCLI_ReposOutputFile(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())
	path := filepath.Join(t.TempDir(), "repos.ndjson")

	result := testutil.RunWithMockServer(t, server, "repos", "octocat", "--format", "ndjson", "--output", path)
	testutil.AssertCLISuccess(t, result)

	if result.Stdout != "" {
		t.Errorf("Expected empty stdout, got: %s", result.Stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if got := len(testutil.CLIResult{Stdout: string(data)}.Records(t, "repository")); got != 10 {
		t.Errorf("Output file has %d repository records, want 10", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}

func TestCLI_EmptyProfile(t *testing.T) {
	profile := testutil.DefaultProfile()
	profile.Login = "newcomer"
	profile.Repositories = 0
	server := testutil.NewGitHubServer(t, profile)

	result := testutil.RunWithMockServer(t, server, "repos", "newcomer")
	testutil.AssertCLISuccess(t, result)

	if !strings.Contains(result.Stderr, "newcomer doesn't have any public repositories yet") {
		t.Errorf("Expected empty message, got: %s", result.Stderr)
	}
}

func TestCLI_Contributions(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())

	result := testutil.RunWithMockServer(t, server,
		"contributions", "octocat", "--format", "ndjson", "--week", "2024-01-14")
	testutil.AssertCLISuccess(t, result)

	records := result.Records(t, "")
	if len(records) != 4 {
		t.Fatalf("Expected 4 weeks, got %d", len(records))
	}
	week := records[1]
	if week["start"] != "2024-01-14" || week["total"] != float64(14) {
		t.Errorf("Second week = %v", week)
	}
	breakdown, ok := week["breakdown"].(map[string]interface{})
	if !ok {
		t.Fatalf("Second week has no breakdown: %v", week)
	}
	want := map[string]float64{"commits": 8, "issues": 2, "pull_requests": 3, "pull_request_reviews": 1}
	for k, v := range want {
		if breakdown[k] != v {
			t.Errorf("breakdown[%s] = %v, want %v", k, breakdown[k], v)
		}
	}
	if _, ok := records[0]["breakdown"]; ok {
		t.Errorf("First week should not carry a breakdown: %v", records[0])
	}
	if !strings.Contains(result.Stderr, "Contributions in the last year: 70") {
		t.Errorf("Expected yearly total, got: %s", result.Stderr)
	}
	if server.RequestCount() != 2 {
		t.Errorf("Expected calendar and breakdown requests, got %d", server.RequestCount())
	}
}

func TestCLI_ContributionsHTML(t *testing.T) {
	server := testutil.NewGitHubServer(t, testutil.DefaultProfile())
	path := filepath.Join(t.TempDir(), "chart.html")

	result := testutil.RunWithMockServer(t, server, "contributions", "octocat", "--html", path)
	testutil.AssertCLISuccess(t, result)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read chart page: %v", err)
	}
	if !strings.Contains(string(data), "Contributions in the last year") {
		t.Errorf("Chart page missing title")
	}
}

func TestCLI_ExitCodes(t *testing.T) {
	closed := testutil.NewGitHubServer(t)
	closed.Close()

	tests := []struct {
		name     string
		server   *testutil.MockServer
		args     []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown user",
			server:   testutil.NewGitHubServer(t, testutil.DefaultProfile()),
			args:     []string{"repos", "ghost"},
			wantCode: testutil.ExitUserError,
			wantErr:  "ghost",
		},
		{
			name:     "unknown user contributions",
			server:   testutil.NewGitHubServer(t, testutil.DefaultProfile()),
			args:     []string{"contributions", "ghost"},
			wantCode: testutil.ExitUserError,
			wantErr:  "not found",
		},
		{
			name:     "bad credentials",
			server:   testutil.NewErrorServer(t, http.StatusUnauthorized),
			args:     []string{"repos", "octocat"},
			wantCode: testutil.ExitUserError,
			wantErr:  "authentication failed",
		},
		{
			name:     "rate limited",
			server:   testutil.NewErrorServer(t, http.StatusTooManyRequests),
			args:     []string{"repos", "octocat"},
			wantCode: testutil.ExitUserError,
			wantErr:  "rate limit",
		},
		{
			name:     "server error",
			server:   testutil.NewErrorServer(t, http.StatusInternalServerError),
			args:     []string{"contributions", "octocat"},
			wantCode: testutil.ExitGeneral,
		},
		{
			name:     "unreachable",
			server:   closed,
			args:     []string{"repos", "octocat"},
			wantCode: testutil.ExitNetwork,
			wantErr:  "network error",
		},
		{
			name:     "both cursors",
			server:   testutil.NewGitHubServer(t, testutil.DefaultProfile()),
			args:     []string{"repos", "octocat", "--after", "a", "--before", "b"},
			wantCode: testutil.ExitGeneral,
		},
		{
			name:     "unknown week",
			server:   testutil.NewGitHubServer(t, testutil.DefaultProfile()),
			args:     []string{"contributions", "octocat", "--week", "2023-01-01"},
			wantCode: testutil.ExitGeneral,
			wantErr:  "no contribution week starts on 2023-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.RunWithMockServer(t, tt.server, tt.args...)
			testutil.AssertCLIError(t, result, tt.wantErr)
			testutil.AssertExitCode(t, result, tt.wantCode)
		})
	}
}

func TestCLI_RetriesTransientFailures(t *testing.T) {
	t.Run("rate limit without retries", func(t *testing.T) {
		server := testutil.NewRateLimitServer(t, 1, testutil.DefaultProfile())
		result := testutil.RunWithMockServer(t, server, "repos", "octocat")
		testutil.AssertExitCode(t, result, testutil.ExitUserError)
		if server.RequestCount() != 1 {
			t.Errorf("Expected a single request, got %d", server.RequestCount())
		}
	})

	t.Run("rate limit with retries", func(t *testing.T) {
		server := testutil.NewRateLimitServer(t, 1, testutil.DefaultProfile())
		result := testutil.RunWithMockServer(t, server, "repos", "octocat", "--retries", "2", "--format", "ndjson")
		testutil.AssertCLISuccess(t, result)
		if got := len(result.Records(t, "")); got != 11 {
			t.Errorf("Expected 11 records, got %d", got)
		}
		if server.RequestCount() != 2 {
			t.Errorf("Expected 2 requests, got %d", server.RequestCount())
		}
	})

	t.Run("auth failures are not retried", func(t *testing.T) {
		server := testutil.NewErrorServer(t, http.StatusUnauthorized)
		result := testutil.RunWithMockServer(t, server, "repos", "octocat", "--retries", "3")
		testutil.AssertExitCode(t, result, testutil.ExitUserError)
		if server.RequestCount() != 1 {
			t.Errorf("Expected a single request, got %d", server.RequestCount())
		}
	})
}
