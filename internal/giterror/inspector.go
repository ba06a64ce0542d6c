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

package giterror

import (
	"errors"
	"regexp"
	"strings"
)

// Kind is the coarse category of a GitHub API failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindNotFound
	KindRateLimit
	KindComplexity
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindComplexity:
		return "complexity"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error says the requested user or resource does not exist.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsComplexityError returns true if the error represents a query complexity error.
	IsComplexityError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// kindStatusCodes lists HTTP status codes per kind. Codes only match as
// whole words so that ports and byte counts do not trigger them.
var kindStatusCodes = map[Kind][]string{
	KindAuth:      {"401", "403"},
	KindNotFound:  {"404"},
	KindRateLimit: {"429"},
}

var statusCodePattern = regexp.MustCompile(`\b[45]\d\d\b`)

// kindPatterns lists lower-cased substrings per kind.
var kindPatterns = map[Kind][]string{
	KindAuth: {
		"unauthorized", "forbidden", "bad credentials", "authentication",
	},
	KindNotFound: {
		"not found", "not_found", "could not resolve to a user", "could not resolve to a",
	},
	KindRateLimit: {
		"rate limit", "rate_limited", "api rate limit exceeded",
	},
	KindComplexity: {
		"complexity", "query has complexity", "exceeds maximum",
	},
	KindNetwork: {
		"connection refused", "no such host", "timeout", "temporary failure",
		"dial tcp", "tls handshake", "network is unreachable", "connection reset",
	},
}

// classifyOrder is the order in which kinds are tested. Rate limits come
// before auth because GitHub reports both with 403.
var classifyOrder = []Kind{KindRateLimit, KindAuth, KindNotFound, KindComplexity, KindNetwork}

// GitHubErrorInspector implements the Inspector interface for GitHub API errors.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

func matches(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, p := range kindPatterns[kind] {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	if codes := kindStatusCodes[kind]; len(codes) > 0 {
		for _, found := range statusCodePattern.FindAllString(errStr, -1) {
			for _, code := range codes {
				if found == code {
					return true
				}
			}
		}
	}
	return false
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool { return matches(err, KindAuth) }

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool { return matches(err, KindNotFound) }

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool { return matches(err, KindRateLimit) }

// IsComplexityError checks if the error is a query complexity error.
func (i *GitHubErrorInspector) IsComplexityError(err error) bool { return matches(err, KindComplexity) }

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool { return matches(err, KindNetwork) }

// Classify returns the first matching Kind for err using the given inspector.
func Classify(in Inspector, err error) Kind {
	if err == nil {
		return KindUnknown
	}
	checks := map[Kind]func(error) bool{
		KindRateLimit:  in.IsRateLimitError,
		KindAuth:       in.IsAuthError,
		KindNotFound:   in.IsNotFoundError,
		KindComplexity: in.IsComplexityError,
		KindNetwork:    in.IsNetworkError,
	}
	for _, k := range classifyOrder {
		if checks[k](err) {
			return k
		}
	}
	return KindUnknown
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.As.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to string-based inspection.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) && authErr.IsAuthError() {
		return true
	}
	return e.base.IsAuthError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	var notFoundErr interface{ IsNotFoundError() bool }
	if errors.As(err, &notFoundErr) && notFoundErr.IsNotFoundError() {
		return true
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) && rateLimitErr.IsRateLimitError() {
		return true
	}
	return e.base.IsRateLimitError(err)
}

// IsComplexityError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsComplexityError(err error) bool {
	var complexityErr interface{ IsComplexityError() bool }
	if errors.As(err, &complexityErr) && complexityErr.IsComplexityError() {
		return true
	}
	return e.base.IsComplexityError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) && networkErr.IsNetworkError() {
		return true
	}
	return e.base.IsNetworkError(err)
}
