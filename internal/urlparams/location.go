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

// Package urlparams models the page location's query string as an explicit
// store so that search state can be mirrored to it and restored from it.
package urlparams

import (
	"net/url"
	"sync"
)

// Store reads and writes single query parameters.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Location is a Store over a URL. Every change pushes a new history entry
// and notifies the listener, mirroring history.pushState in a browser.
type Location struct {
	mu       sync.Mutex
	u        url.URL
	history  []string
	onChange func(string)
}

// NewLocation parses raw as the current location.
func NewLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Location{u: *u}, nil
}

// OnChange registers fn to receive the new location after each push.
func (l *Location) OnChange(fn func(string)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

func (l *Location) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.u.Query()
	if !q.Has(key) {
		return "", false
	}
	return q.Get(key), true
}

func (l *Location) Set(key, value string) {
	l.update(func(q url.Values) { q.Set(key, value) })
}

func (l *Location) Delete(key string) {
	l.update(func(q url.Values) { q.Del(key) })
}

func (l *Location) update(mutate func(url.Values)) {
	l.mu.Lock()
	q := l.u.Query()
	mutate(q)
	l.u.RawQuery = q.Encode()
	s := l.u.String()
	l.history = append(l.history, s)
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// String returns the current location.
func (l *Location) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.u.String()
}

// History returns every pushed location, oldest first.
func (l *Location) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.history...)
}
