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

package screen

import (
	"github.com/sirseerhq/sirseer-profile/internal/chart"
	"github.com/sirseerhq/sirseer-profile/internal/contributions"
)

// State is the top-level status of the screen. States are listed in
// priority order.
type State int

const (
	NoQuery State = iota
	Loading
	RemoteError
	UserNotFound
	Empty
	Content
)

// Messages shown for each non-content state.
const (
	MessageNoQuery      = "Search for a user"
	MessageLoading      = "Loading..."
	MessageRemoteError  = "Something went wrong"
	MessageUserNotFound = "No user with this username"
	MessageEmpty        = "User doesn't have any public repositories yet."
)

func (s State) String() string {
	switch s {
	case NoQuery:
		return "no_query"
	case Loading:
		return "loading"
	case RemoteError:
		return "remote_error"
	case UserNotFound:
		return "user_not_found"
	case Empty:
		return "empty"
	case Content:
		return "content"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Message is the text displayed for s. Content has none.
func (s State) Message() string {
	switch s {
	case NoQuery:
		return MessageNoQuery
	case Loading:
		return MessageLoading
	case RemoteError:
		return MessageRemoteError
	case UserNotFound:
		return MessageUserNotFound
	case Empty:
		return MessageEmpty
	default:
		return ""
	}
}

// ChartStatus is the status of the contributions query behind the chart.
type ChartStatus int

const (
	ChartLoading ChartStatus = iota
	ChartFailed
	ChartReady
)

// Row is one rendered repository.
type Row struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	Forked       bool   `json:"forked"`
	LastCommit   string `json:"last_commit,omitempty"`
	Issues       int    `json:"issues"`
	PullRequests int    `json:"pull_requests"`
	Stars        int    `json:"stars"`
	Updated      string `json:"updated"`
}

// ChartView is the chart part of the content state.
type ChartView struct {
	Status  ChartStatus
	Title   string
	Yearly  int
	Buckets []contributions.WeeklyBucket
	Overlay chart.Overlay
}

// View is a snapshot of the screen.
type View struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`

	// Query is the raw input text; Login is the committed search term.
	Query string `json:"query"`
	Login string `json:"login,omitempty"`

	Repositories []Row     `json:"repositories,omitempty"`
	CanPrevious  bool      `json:"can_previous"`
	CanNext      bool      `json:"can_next"`
	Chart        ChartView `json:"-"`
}
