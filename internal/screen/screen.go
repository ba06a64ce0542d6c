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

// Package screen composes the search input, the repository list with its
// pagination controls and the contribution chart into one screen model.
// A Screen runs entirely on one event loop; its View is a snapshot that can
// be rendered by any front end.
package screen

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sirseerhq/sirseer-profile/internal/chart"
	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/contributions"
	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/pagination"
	"github.com/sirseerhq/sirseer-profile/internal/remote"
	"github.com/sirseerhq/sirseer-profile/internal/search"
	"github.com/sirseerhq/sirseer-profile/internal/urlparams"
)

// Config holds the collaborators of a Screen.
type Config struct {
	Client github.Client
	Store  urlparams.Store
	Clock  clock.Scheduler
	Loop   eventloop.Poster

	// SearchDelay defaults to search.DefaultDelay.
	SearchDelay time.Duration
	// SettleDelay defaults to chart.SettleDelay.
	SettleDelay time.Duration
	// PageSize defaults to github.PageSize.
	PageSize int

	Logger *slog.Logger
}

type repoVars struct {
	Login string
	Page  github.PageVariables
}

// Screen is the state of one search session. All methods must be called on
// the configured loop.
type Screen struct {
	ctx    context.Context
	cfg    Config
	logger *slog.Logger

	search   *search.Coordinator
	pages    *pagination.Coordinator
	repos    *remote.Query[repoVars, *github.RepositoriesResult]
	calendar *remote.Query[string, []contributions.WeeklyBucket]
	chart    *chart.Chart

	listener func(View)
	closed   bool
}

// New builds a Screen. The search text is seeded from the store and, when
// non-empty, commits after the search delay like any other input.
func New(ctx context.Context, cfg Config) *Screen {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewReal()
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = chart.SettleDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Screen{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		pages:  pagination.New(cfg.PageSize),
	}

	client := cfg.Client
	s.repos = remote.New[repoVars, *github.RepositoriesResult](ctx, cfg.Loop, func(ctx context.Context, v repoVars) (*github.RepositoriesResult, error) {
		return client.FetchRepositories(ctx, v.Login, v.Page)
	}, s.reposChanged)
	s.calendar = remote.New[string, []contributions.WeeklyBucket](ctx, cfg.Loop, func(ctx context.Context, login string) ([]contributions.WeeklyBucket, error) {
		cal, err := client.FetchContributionCalendar(ctx, login)
		if err != nil {
			return nil, err
		}
		return contributions.Buckets(cal), nil
	}, s.calendarChanged)
	s.search = search.New(cfg.Store, cfg.Clock, cfg.Loop, cfg.SearchDelay, s.committed)
	return s
}

// Subscribe registers fn to receive a new View after every change.
func (s *Screen) Subscribe(fn func(View)) {
	s.listener = fn
}

// Type records the current content of the search input.
func (s *Screen) Type(text string) {
	if s.closed {
		return
	}
	s.search.SetText(text)
	s.notify()
}

// NextPage loads the page after the current one when there is one.
func (s *Screen) NextPage() {
	if s.closed || !s.pages.RequestNext() {
		return
	}
	s.runRepos()
}

// PreviousPage loads the page before the current one when there is one.
func (s *Screen) PreviousPage() {
	if s.closed || !s.pages.RequestPrevious() {
		return
	}
	s.runRepos()
}

// ActivateBar forwards a pointer activation to the chart.
func (s *Screen) ActivateBar(i int) {
	if s.closed || s.chart == nil {
		return
	}
	s.chart.Activate(i)
}

// LeaveBar forwards a pointer exit to the chart.
func (s *Screen) LeaveBar(i int) {
	if s.closed || s.chart == nil {
		return
	}
	s.chart.Leave(i)
}

// Close cancels timers and requests. No View is published afterwards.
func (s *Screen) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.search.Close()
	s.repos.Close()
	s.calendar.Close()
	if s.chart != nil {
		s.chart.Close()
	}
}

func (s *Screen) committed(login string) {
	if s.closed {
		return
	}
	s.pages.Reset()
	s.dropChart()
	if login == "" {
		s.repos.Skip()
		s.calendar.Skip()
		return
	}
	s.logger.Debug("search committed", "login", login)
	s.runRepos()
	s.calendar.Run(login)
}

func (s *Screen) runRepos() {
	s.repos.Run(repoVars{Login: s.search.Committed(), Page: s.pages.Variables()})
}

func (s *Screen) reposChanged() {
	st := s.repos.State()
	if !st.Loading && st.Err == nil && st.Data != nil && st.Data.Kind == github.RepoPage {
		s.pages.Observe(st.Vars.Page, st.Data.PageInfo)
	}
	if st.Err != nil {
		s.logger.Warn("repositories query failed", "login", st.Vars.Login, "error", st.Err)
	}
	s.notify()
}

func (s *Screen) calendarChanged() {
	st := s.calendar.State()
	s.dropChart()
	if st.Err != nil {
		s.logger.Warn("contributions query failed", "login", st.Vars, "error", st.Err)
	}
	if !st.Loading && st.HasData {
		s.chart = chart.New(s.ctx, st.Data, s.cfg.Clock, s.cfg.Loop,
			chart.ClientFetcher(s.cfg.Client, st.Vars),
			chart.WithSettleDelay(s.cfg.SettleDelay),
			chart.WithLogger(s.logger),
			chart.WithOnChange(s.notify),
		)
	}
	s.notify()
}

func (s *Screen) dropChart() {
	if s.chart != nil {
		s.chart.Close()
		s.chart = nil
	}
}

func (s *Screen) notify() {
	if s.closed || s.listener == nil {
		return
	}
	s.listener(s.View())
}

// View returns a snapshot of the screen.
func (s *Screen) View() View {
	v := View{
		Query: s.search.Text(),
		Login: s.search.Committed(),
	}
	v.State = s.state()
	v.Message = v.State.Message()
	if v.State != Content {
		return v
	}

	data := s.repos.State().Data
	now := s.cfg.Clock.Now()
	v.Repositories = make([]Row, 0, len(data.Repositories))
	for _, r := range data.Repositories {
		v.Repositories = append(v.Repositories, newRow(r, now))
	}
	v.CanPrevious = s.pages.CanPrevious()
	v.CanNext = s.pages.CanNext()
	v.Chart = s.chartView()
	return v
}

func (s *Screen) state() State {
	if s.search.Committed() == "" {
		return NoQuery
	}
	st := s.repos.State()
	switch {
	case !st.Active || st.Loading:
		return Loading
	case st.Err != nil:
		return RemoteError
	case st.Data == nil || st.Data.Kind == github.NoUser:
		return UserNotFound
	case st.Data.Kind == github.EmptyRepoList:
		return Empty
	default:
		return Content
	}
}

func (s *Screen) chartView() ChartView {
	st := s.calendar.State()
	switch {
	case st.Loading:
		return ChartView{Status: ChartLoading}
	case !st.HasData:
		return ChartView{Status: ChartFailed}
	}
	yearly := contributions.YearlyTotal(st.Data)
	cv := ChartView{
		Status:  ChartReady,
		Title:   chart.TitleFor(yearly),
		Yearly:  yearly,
		Buckets: st.Data,
		Overlay: chart.Overlay{Index: -1},
	}
	if s.chart != nil {
		cv.Overlay = s.chart.Overlay()
	}
	return cv
}

func newRow(r github.Repository, now time.Time) Row {
	row := Row{
		Name:         r.Name,
		URL:          r.URL,
		Description:  r.Description,
		Forked:       r.IsFork,
		Issues:       r.Issues,
		PullRequests: r.PullRequests,
		Stars:        r.Stars,
		Updated:      humanize.RelTime(r.UpdatedAt, now, "ago", "from now"),
	}
	if r.LastCommitAt != nil {
		row.LastCommit = contributions.FormatDate(*r.LastCommitAt)
	}
	return row
}
