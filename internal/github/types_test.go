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
	"strings"
	"testing"
	"time"
)

func TestResultKindJSON(t *testing.T) {
	tests := []struct {
		kind ResultKind
		want string
	}{
		{NoUser, `"no_user"`},
		{EmptyRepoList, `"empty"`},
		{RepoPage, `"page"`},
		{ResultKind(9), `"unknown"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.kind)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.kind, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%d) = %s, want %s", tt.kind, data, tt.want)
		}
	}
}

func TestRepositoryJSONOmitsEmptyOptionals(t *testing.T) {
	repo := Repository{
		ID:        "R_1",
		Name:      "hello-world",
		URL:       "https://github.com/octocat/hello-world",
		UpdatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(repo)
	if err != nil {
		t.Fatalf("Failed to marshal Repository: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "description") {
		t.Errorf("expected description to be omitted: %s", out)
	}
	if strings.Contains(out, "last_commit_at") {
		t.Errorf("expected last_commit_at to be omitted: %s", out)
	}
	if !strings.Contains(out, `"is_fork":false`) {
		t.Errorf("expected is_fork in output: %s", out)
	}
}

func TestFirstPage(t *testing.T) {
	vars := FirstPage()
	if vars.First == nil || *vars.First != PageSize {
		t.Errorf("First = %v, want %d", vars.First, PageSize)
	}
	if vars.After != nil || vars.Last != nil || vars.Before != nil {
		t.Errorf("expected only First to be set: %+v", vars)
	}

	data, err := json.Marshal(vars)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"first":10,"after":null,"last":null,"before":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
