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

// Package contributions turns a contribution calendar into weekly buckets
// and derives the per-type breakdown of one bucket.
package contributions

import (
	"fmt"
	"time"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/github"
)

// DateLayout is the calendar date format used in URLs and output.
const DateLayout = "2006-01-02"

// WeeklyBucket is the sum of daily counts over one calendar week. Start and
// End are the first and last calendar days of the week.
type WeeklyBucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Total int       `json:"total"`
}

// Buckets sums each calendar week. Weeks without days are skipped.
func Buckets(cal *github.ContributionCalendar) []WeeklyBucket {
	if cal == nil {
		return nil
	}
	out := make([]WeeklyBucket, 0, len(cal.Weeks))
	for _, w := range cal.Weeks {
		if len(w.Days) == 0 {
			continue
		}
		b := WeeklyBucket{
			Start: w.Days[0].Date,
			End:   w.Days[len(w.Days)-1].Date,
		}
		for _, d := range w.Days {
			b.Total += d.Count
		}
		out = append(out, b)
	}
	return out
}

// YearlyTotal sums all buckets.
func YearlyTotal(buckets []WeeklyBucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Total
	}
	return total
}

// Find returns the index of the bucket starting on the given date, or -1.
func Find(buckets []WeeklyBucket, start time.Time) int {
	day := FormatDate(start)
	for i, b := range buckets {
		if FormatDate(b.Start) == day {
			return i
		}
	}
	return -1
}

// EndOfDay returns the last millisecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// StartOfDay returns midnight of t's UTC day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t's UTC date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// WeekWindow is the time range used to query a bucket's breakdown: from
// the first day at 00:00 UTC to the last day at 23:59:59.999 UTC.
func WeekWindow(b WeeklyBucket) (from, to time.Time) {
	return StartOfDay(b.Start), EndOfDay(b.End)
}

// Field is one component of a breakdown.
type Field int

const (
	Commits Field = iota
	Issues
	PullRequests
	PullRequestReviews
)

// Fields is the fixed stacking order.
var Fields = []Field{Commits, Issues, PullRequests, PullRequestReviews}

// Key is the field's machine name.
func (f Field) Key() string {
	switch f {
	case Commits:
		return "commits"
	case Issues:
		return "issues"
	case PullRequests:
		return "pullRequests"
	case PullRequestReviews:
		return "pullRequestReviews"
	default:
		return "unknown"
	}
}

// Label is the field's display name.
func (f Field) Label() string {
	switch f {
	case Commits:
		return "Commits"
	case Issues:
		return "Issues"
	case PullRequests:
		return "Pull requests"
	case PullRequestReviews:
		return "Reviews"
	default:
		return "Unknown"
	}
}

// Breakdown splits a bucket's total by contribution type.
type Breakdown struct {
	Commits            int `json:"commits"`
	Issues             int `json:"issues"`
	PullRequests       int `json:"pull_requests"`
	PullRequestReviews int `json:"pull_request_reviews"`
}

// Count returns the value of f.
func (b Breakdown) Count(f Field) int {
	switch f {
	case Commits:
		return b.Commits
	case Issues:
		return b.Issues
	case PullRequests:
		return b.PullRequests
	case PullRequestReviews:
		return b.PullRequestReviews
	default:
		return 0
	}
}

// Total sums all fields.
func (b Breakdown) Total() int {
	return b.Commits + b.Issues + b.PullRequests + b.PullRequestReviews
}

// Segment is one layer of a stacked bar, spanning [Y0, Y1) in counts.
type Segment struct {
	Field Field
	Count int
	Y0    int
	Y1    int
}

// Segments stacks the fields cumulatively from zero in Fields order.
func (b Breakdown) Segments() []Segment {
	out := make([]Segment, 0, len(Fields))
	y := 0
	for _, f := range Fields {
		n := b.Count(f)
		out = append(out, Segment{Field: f, Count: n, Y0: y, Y1: y + n})
		y += n
	}
	return out
}

// InconsistencyError reports that the typed counts of a week exceed its
// calendar total.
type InconsistencyError struct {
	Week    time.Time
	Total   int
	Deficit int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("week of %s: issues, pull requests and reviews exceed the weekly total of %d by %d",
		FormatDate(e.Week), e.Total, e.Deficit)
}

func (e *InconsistencyError) Unwrap() error { return profileerrors.ErrInconsistentBreakdown }

// Derive computes a bucket's breakdown. Commits are the bucket total minus
// the other three counts. A negative result is clamped to zero and reported
// with an *InconsistencyError alongside the clamped breakdown.
func Derive(b WeeklyBucket, c github.ContributionCounts) (Breakdown, error) {
	bd := Breakdown{
		Issues:             c.Issues,
		PullRequests:       c.PullRequests,
		PullRequestReviews: c.PullRequestReviews,
	}
	commits := b.Total - c.Issues - c.PullRequests - c.PullRequestReviews
	if commits < 0 {
		return bd, &InconsistencyError{Week: b.Start, Total: b.Total, Deficit: -commits}
	}
	bd.Commits = commits
	return bd, nil
}
