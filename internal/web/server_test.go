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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-profile/internal/github"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Client == nil {
		opts.Client = github.NewMockClient()
	}
	if opts.SearchDelay == 0 {
		opts.SearchDelay = 10 * time.Millisecond
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = 10 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, opts)
}

func get(t *testing.T, s *Server, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="search"`)
	assert.Contains(t, body, `"/ws"`)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsCountsRequests(t *testing.T) {
	s := newTestServer(t, Options{})
	get(t, s, "/healthz", nil)
	get(t, s, "/does-not-exist", nil)

	rec := get(t, s, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sirseer_profile_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
	assert.Contains(t, body, `sirseer_profile_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "any origin", allowed: nil, origin: "https://app.example.org", want: "*"},
		{name: "listed origin", allowed: []string{"https://app.example.org"}, origin: "https://app.example.org", want: "https://app.example.org"},
		// httptest requests target example.com, so this one is same-origin.
		{name: "same origin", allowed: []string{"https://app.example.org"}, origin: "https://example.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{AllowedOrigins: tt.allowed})
			rec := get(t, s, "/api/users/octocat/repositories", http.Header{"Origin": {tt.origin}})

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	s := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example.org"}})
	rec := get(t, s, "/api/users/octocat/repositories", http.Header{"Origin": {"https://evil.example"}})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, Options{AllowedOrigins: []string{"https://example.com"}})

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "https://example.com", want: true},
		{origin: "http://profile.local:8080", want: true},
		{origin: "https://evil.example", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://profile.local:8080/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, s.checkOrigin(req), tt.origin)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func readBody(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}
