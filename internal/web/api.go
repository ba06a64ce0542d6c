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

package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sirseerhq/sirseer-profile/internal/chart"
	"github.com/sirseerhq/sirseer-profile/internal/contributions"
	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/output"
	"github.com/sirseerhq/sirseer-profile/internal/pagination"
	"github.com/sirseerhq/sirseer-profile/internal/screen"
)

type errorResponse struct {
	Error string `json:"error"`
}

type contributionsResponse struct {
	Login       string              `json:"login"`
	Title       string              `json:"title"`
	YearlyTotal int                 `json:"yearly_total"`
	Weeks       []output.WeekRecord `json:"weeks"`
}

func (s *Server) listRepositories(c *gin.Context) {
	login := c.Param("login")
	after, before := c.Query("after"), c.Query("before")
	if after != "" && before != "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "after and before cannot be combined"})
		return
	}

	vars := pagination.FromCursors(after, before, s.opts.PageSize)
	result, err := s.opts.Client.FetchRepositories(c.Request.Context(), login, vars)
	if err != nil {
		s.fail(c, err)
		return
	}
	if result.Kind == github.NoUser {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listContributions(c *gin.Context) {
	login := c.Param("login")
	buckets, err := s.buckets(c.Request.Context(), login)
	if err != nil {
		s.fail(c, err)
		return
	}

	yearly := contributions.YearlyTotal(buckets)
	resp := contributionsResponse{
		Login:       login,
		Title:       chart.TitleFor(yearly),
		YearlyTotal: yearly,
		Weeks:       make([]output.WeekRecord, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Weeks = append(resp.Weeks, output.NewWeekRecord(login, b))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) weekBreakdown(c *gin.Context) {
	login := c.Param("login")
	week, err := contributions.ParseDate(c.Query("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "week must be a date formatted as YYYY-MM-DD"})
		return
	}

	buckets, err := s.buckets(c.Request.Context(), login)
	if err != nil {
		s.fail(c, err)
		return
	}
	i := contributions.Find(buckets, week)
	if i < 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no contribution week starts on " + contributions.FormatDate(week)})
		return
	}

	rec, err := s.breakdownRecord(c.Request.Context(), login, buckets[i])
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// exportContributions renders a standalone chart page. Each week query
// parameter adds that week's breakdown to the page.
func (s *Server) exportContributions(c *gin.Context) {
	login := c.Param("login")
	ctx := c.Request.Context()
	buckets, err := s.buckets(ctx, login)
	if err != nil {
		s.fail(c, err)
		return
	}

	breakdowns := make(map[int]contributions.Breakdown)
	for _, raw := range c.QueryArray("week") {
		week, err := contributions.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "week must be a date formatted as YYYY-MM-DD"})
			return
		}
		i := contributions.Find(buckets, week)
		if i < 0 {
			continue
		}
		rec, err := s.breakdownRecord(ctx, login, buckets[i])
		if err != nil {
			s.fail(c, err)
			return
		}
		breakdowns[i] = *rec.Breakdown
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := chart.RenderExport(c.Writer, login, buckets, breakdowns); err != nil {
		s.logger.Warn("chart export failed", "login", login, "error", err)
	}
}

func (s *Server) buckets(ctx context.Context, login string) ([]contributions.WeeklyBucket, error) {
	cal, err := s.opts.Client.FetchContributionCalendar(ctx, login)
	if err != nil {
		return nil, err
	}
	return contributions.Buckets(cal), nil
}

// breakdownRecord fetches the breakdown of b. An inconsistent breakdown is
// returned clamped, with a warning.
func (s *Server) breakdownRecord(ctx context.Context, login string, b contributions.WeeklyBucket) (output.WeekRecord, error) {
	rec := output.NewWeekRecord(login, b)
	bd, err := chart.ClientFetcher(s.opts.Client, login)(ctx, b)
	var incons *contributions.InconsistencyError
	switch {
	case err == nil:
	case errors.As(err, &incons):
		rec.Warning = incons.Error()
	default:
		return rec, err
	}
	rec.Breakdown = &bd
	return rec, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := screen.MessageRemoteError
	if status == http.StatusNotFound {
		msg = screen.MessageUserNotFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("upstream request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, errorResponse{Error: msg})
}

// statusFor maps client errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profileerrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, profileerrors.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, profileerrors.ErrInvalidToken),
		errors.Is(err, profileerrors.ErrNetworkFailure),
		errors.Is(err, profileerrors.ErrQueryComplexity):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}
