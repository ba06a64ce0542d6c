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

package contributions

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/github"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuckets(t *testing.T) {
	cal := &github.ContributionCalendar{Weeks: []github.ContributionWeek{
		{Days: []github.ContributionDay{{Date: day("2024-01-03"), Count: 1}, {Date: day("2024-01-04"), Count: 2}, {Date: day("2024-01-06"), Count: 3}}},
		{},
		{Days: []github.ContributionDay{{Date: day("2024-01-07"), Count: 0}, {Date: day("2024-01-13"), Count: 5}}},
	}}

	buckets := Buckets(cal)
	require.Len(t, buckets, 2)
	assert.Equal(t, WeeklyBucket{Start: day("2024-01-03"), End: day("2024-01-06"), Total: 6}, buckets[0])
	assert.Equal(t, WeeklyBucket{Start: day("2024-01-07"), End: day("2024-01-13"), Total: 5}, buckets[1])
	assert.Equal(t, 11, YearlyTotal(buckets))
	assert.Equal(t, 1, Find(buckets, day("2024-01-07")))
	assert.Equal(t, -1, Find(buckets, day("2024-01-08")))

	assert.Nil(t, Buckets(nil))
	assert.Equal(t, 0, YearlyTotal(nil))
}

func TestWeekWindow(t *testing.T) {
	from, to := WeekWindow(WeeklyBucket{Start: day("2024-01-07"), End: day("2024-01-13")})
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 13, 23, 59, 59, 999_000_000, time.UTC), to)
}

func TestEndOfDayUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2024-01-14 03:00 in UTC+9 is 2024-01-13 18:00 UTC.
	in := time.Date(2024, 1, 14, 3, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 13, 23, 59, 59, 999_000_000, time.UTC), EndOfDay(in))
	assert.Equal(t, "2024-01-13", FormatDate(in))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestDerive(t *testing.T) {
	bucket := WeeklyBucket{Start: day("2024-01-07"), End: day("2024-01-13"), Total: 10}

	bd, err := Derive(bucket, github.ContributionCounts{Issues: 2, PullRequests: 3, PullRequestReviews: 1})
	require.NoError(t, err)
	assert.Equal(t, Breakdown{Commits: 4, Issues: 2, PullRequests: 3, PullRequestReviews: 1}, bd)

	segs := bd.Segments()
	require.Len(t, segs, 4)
	heights := []int{}
	for _, s := range segs {
		heights = append(heights, s.Y1-s.Y0)
	}
	assert.Equal(t, []int{4, 2, 3, 1}, heights)
	assert.Equal(t, []Field{Commits, Issues, PullRequests, PullRequestReviews}, []Field{segs[0].Field, segs[1].Field, segs[2].Field, segs[3].Field})
	assert.Equal(t, 0, segs[0].Y0)
	assert.Equal(t, bucket.Total, segs[3].Y1)
}

func TestDeriveZeroCommits(t *testing.T) {
	bd, err := Derive(WeeklyBucket{Total: 3}, github.ContributionCounts{Issues: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, bd.Commits)
	assert.Equal(t, 3, bd.Total())
}

func TestDeriveInconsistent(t *testing.T) {
	bucket := WeeklyBucket{Start: day("2024-01-07"), Total: 2}
	bd, err := Derive(bucket, github.ContributionCounts{Issues: 2, PullRequests: 1, PullRequestReviews: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, profileerrors.ErrInconsistentBreakdown))
	var incons *InconsistencyError
	require.ErrorAs(t, err, &incons)
	assert.Equal(t, 2, incons.Deficit)
	assert.Contains(t, err.Error(), "2024-01-07")

	assert.Equal(t, 0, bd.Commits)
	for _, s := range bd.Segments() {
		assert.GreaterOrEqual(t, s.Y1-s.Y0, 0)
	}
}

// Segment heights always sum to the bucket total for consistent inputs.
func TestSegmentsSumToTotal(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for issues := 0; issues <= total; issues++ {
			for prs := 0; prs <= total-issues; prs++ {
				reviews := total - issues - prs
				bd, err := Derive(WeeklyBucket{Total: total}, github.ContributionCounts{Issues: issues, PullRequests: prs, PullRequestReviews: reviews / 2})
				require.NoError(t, err)
				segs := bd.Segments()
				assert.Equal(t, total, segs[len(segs)-1].Y1)
			}
		}
	}
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, "pullRequestReviews", PullRequestReviews.Key())
	assert.Equal(t, "Pull requests", PullRequests.Label())
	assert.Equal(t, "unknown", Field(99).Key())
}
