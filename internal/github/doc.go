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

// Package github reads user profiles from GitHub's GraphQL API: a user's
// owned repositories with cursor pagination, the yearly contribution
// calendar and per-week contribution counts.
//
// The package includes:
//   - A Client interface with a GraphQL implementation built on shurcooL/graphql
//   - A caching decorator with in-flight request deduplication
//   - Mock client for testing
//
// Basic usage:
//
//	client := github.NewGraphQLClient("your-github-token", "https://api.github.com/graphql")
//	res, err := client.FetchRepositories(ctx, "octocat", github.FirstPage())
//	if err != nil {
//	    // Handle error
//	}
//	if res.Kind == github.NoUser {
//	    // Unknown login
//	}
package github
