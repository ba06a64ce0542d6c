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

// Package main implements the sirseer-profile command-line interface.
// It serves the interactive profile screen and offers one-shot commands
// that print a user's repositories or contribution history.
//
// The CLI supports:
//   - Serving the live search screen and JSON API (serve)
//   - Listing one page of a user's repositories (repos)
//   - Printing weekly contributions with optional breakdowns (contributions)
//   - Table or NDJSON output to stdout or a file
//   - GitHub token authentication via flag, environment variable or .env file
//
// Usage:
//
//	sirseer-profile serve [--addr :8080]
//	sirseer-profile repos <login> [--after CURSOR | --before CURSOR] [flags]
//	sirseer-profile contributions <login> [--week YYYY-MM-DD]... [--html FILE]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-profile repos octocat --format table
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, unknown user or rate limit error
//   - 3: Network error
package main
