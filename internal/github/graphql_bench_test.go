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
	"context"
	"testing"
	"time"
)

// BenchmarkConvertRepository benchmarks mapping a GraphQL node to a Repository.
func BenchmarkConvertRepository(b *testing.B) {
	node := repositoryNode{
		Name:           "hello-world",
		URL:            "https://github.com/octocat/hello-world",
		UpdatedAt:      time.Now().UTC(),
		StargazerCount: 42,
	}
	node.ID = "R_1"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = convertRepository(&node)
	}
}

// BenchmarkCachingClientHit benchmarks a warm cache lookup.
func BenchmarkCachingClientHit(b *testing.B) {
	ctx := context.Background()
	client := NewCachingClient(NewMockClient(), CacheOptions{})
	if _, err := client.FetchRepositories(ctx, "octocat", FirstPage()); err != nil {
		b.Fatalf("warm cache: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := client.FetchRepositories(ctx, "octocat", FirstPage()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMockPaging benchmarks walking every page of a large repository list.
func BenchmarkMockPaging(b *testing.B) {
	ctx := context.Background()
	mock := NewMockClientWithOptions(WithGeneratedRepositories("big", 1000))
	n := PageSize

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		vars := FirstPage()
		for {
			res, err := mock.FetchRepositories(ctx, "big", vars)
			if err != nil {
				b.Fatal(err)
			}
			if !res.PageInfo.HasNextPage {
				break
			}
			vars = PageVariables{First: &n, After: res.PageInfo.EndCursor}
		}
	}
}
