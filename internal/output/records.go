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

package output

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sirseerhq/sirseer-profile/internal/contributions"
	"github.com/sirseerhq/sirseer-profile/internal/github"
)

// Record types written in the "type" field.
const (
	TypeRepository = "repository"
	TypePageInfo   = "page_info"
	TypeWeek       = "week"
)

// RepositoryRecord is one repository of a listed page.
type RepositoryRecord struct {
	Type  string `json:"type"`
	Login string `json:"login"`
	github.Repository
}

// NewRepositoryRecord wraps repo for output.
func NewRepositoryRecord(login string, repo github.Repository) RepositoryRecord {
	return RepositoryRecord{Type: TypeRepository, Login: login, Repository: repo}
}

func (RepositoryRecord) RecordType() string { return TypeRepository }

func (RepositoryRecord) Headers() []string {
	return []string{"Name", "Stars", "Issues", "Pull Requests", "Fork", "Last Commit", "Updated"}
}

func (r RepositoryRecord) Cells() []string {
	fork := "no"
	if r.IsFork {
		fork = "yes"
	}
	lastCommit := "-"
	if r.LastCommitAt != nil {
		lastCommit = contributions.FormatDate(*r.LastCommitAt)
	}
	return []string{
		r.Name,
		humanize.Comma(int64(r.Stars)),
		strconv.Itoa(r.Issues),
		strconv.Itoa(r.PullRequests),
		fork,
		lastCommit,
		contributions.FormatDate(r.UpdatedAt),
	}
}

// PageInfoRecord closes a page of repositories with its cursors.
type PageInfoRecord struct {
	Type  string `json:"type"`
	Login string `json:"login"`
	github.PageInfo
}

// NewPageInfoRecord wraps info for output.
func NewPageInfoRecord(login string, info github.PageInfo) PageInfoRecord {
	return PageInfoRecord{Type: TypePageInfo, Login: login, PageInfo: info}
}

func (PageInfoRecord) RecordType() string { return TypePageInfo }

// WeekRecord is one weekly contribution bucket, with its breakdown when one
// was fetched.
type WeekRecord struct {
	Type      string                   `json:"type"`
	Login     string                   `json:"login"`
	Start     string                   `json:"start"`
	End       string                   `json:"end"`
	Total     int                      `json:"total"`
	Breakdown *contributions.Breakdown `json:"breakdown,omitempty"`
	Warning   string                   `json:"warning,omitempty"`
}

// NewWeekRecord wraps bucket for output.
func NewWeekRecord(login string, b contributions.WeeklyBucket) WeekRecord {
	return WeekRecord{
		Type:  TypeWeek,
		Login: login,
		Start: contributions.FormatDate(b.Start),
		End:   contributions.FormatDate(b.End),
		Total: b.Total,
	}
}

func (WeekRecord) RecordType() string { return TypeWeek }

func (WeekRecord) Headers() []string {
	return []string{"Week", "Total", "Commits", "Issues", "Pull Requests", "Reviews"}
}

func (w WeekRecord) Cells() []string {
	cells := []string{w.Start, strconv.Itoa(w.Total), "-", "-", "-", "-"}
	if w.Breakdown != nil {
		for i, f := range contributions.Fields {
			cells[2+i] = strconv.Itoa(w.Breakdown.Count(f))
		}
	}
	return cells
}

// Since formats t relative to now, for progress lines.
func Since(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
