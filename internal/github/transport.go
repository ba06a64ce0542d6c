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
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sirseerhq/sirseer-profile/pkg/version"
)

// maxResponseBytes caps a single GraphQL response body.
const maxResponseBytes = 10 * 1024 * 1024

// newHTTPClient builds the HTTP client used for GraphQL requests. Requests
// carry a bearer token from a static oauth2 token source when token is set.
func newHTTPClient(token string, timeout time.Duration) *http.Client {
	pooled := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	var rt http.RoundTripper = &userAgentTransport{base: pooled, limit: maxResponseBytes}
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   rt,
		}
	}

	return &http.Client{Transport: rt, Timeout: timeout}
}

// NewHTTPClient is newHTTPClient for callers configuring a request timeout.
func NewHTTPClient(token string, timeout time.Duration) *http.Client {
	return newHTTPClient(token, timeout)
}

// userAgentTransport identifies the client and limits response sizes.
type userAgentTransport struct {
	base  http.RoundTripper
	limit int64
}

// RoundTrip implements http.RoundTripper
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-profile/%s", version.Version))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{ReadCloser: resp.Body, limit: t.limit}
	}
	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)
	return n, err
}
