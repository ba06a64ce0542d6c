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

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/output"
	"github.com/sirseerhq/sirseer-profile/internal/pagination"
)

type reposOptions struct {
	after      string
	before     string
	format     string
	outputFile string
	pageSize   int
	retries    int
}

func newReposCommand(global *globalOptions) *cobra.Command {
	opts := reposOptions{}

	cmd := &cobra.Command{
		Use:   "repos <login>",
		Short: "List one page of a user's public repositories",
		Long: `List one page of a user's public repositories, most recently updated first.

Pages are selected with the cursors printed after each page:
  --after <end cursor>    the next page
  --before <start cursor> the previous page`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := env.newClient(opts.retries)
			if err != nil {
				return err
			}
			if opts.pageSize == 0 {
				opts.pageSize = env.cfg.Search.PageSize
			}
			return runRepos(cmd.Context(), client, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.after, "after", "", "Fetch the page after this cursor")
	cmd.Flags().StringVar(&opts.before, "before", "", "Fetch the page before this cursor")
	cmd.Flags().StringVar(&opts.format, "format", output.FormatTable, "Output format: table or ndjson")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "Retry rate-limited and network failures up to this many times")
	cmd.MarkFlagsMutuallyExclusive("after", "before")
	return cmd
}

// runRepos fetches one page and writes its repositories. NDJSON output ends
// with a page_info record carrying the cursors.
func runRepos(ctx context.Context, client github.Client, login string, opts reposOptions, stdout, stderr io.Writer) error {
	if opts.after != "" && opts.before != "" {
		return fmt.Errorf("--after and --before cannot be combined")
	}

	vars := pagination.FromCursors(opts.after, opts.before, opts.pageSize)

	fmt.Fprintf(stderr, "Fetching repositories of %s...", login)
	result, err := client.FetchRepositories(ctx, login, vars)
	fmt.Fprintf(stderr, "\r\033[K") // Clear progress line
	if err != nil {
		return err
	}

	switch result.Kind {
	case github.NoUser:
		return fmt.Errorf("no user with login '%s': %w", login, profileerrors.ErrUserNotFound)
	case github.EmptyRepoList:
		fmt.Fprintf(stderr, "%s doesn't have any public repositories yet\n", login)
		return nil
	}

	writer, err := openOutput(opts.format, opts.outputFile, stdout)
	if err != nil {
		return err
	}
	for _, repo := range result.Repositories {
		if err := writer.Write(output.NewRepositoryRecord(login, repo)); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write repository: %w", err)
		}
	}
	if opts.format == output.FormatNDJSON {
		if err := writer.Write(output.NewPageInfoRecord(login, result.PageInfo)); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write page info: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	latest := result.Repositories[0].UpdatedAt
	fmt.Fprintf(stderr, "Fetched %d repositories, last updated %s\n",
		len(result.Repositories), output.Since(latest, time.Now()))
	info := result.PageInfo
	if info.HasNextPage && info.EndCursor != nil {
		fmt.Fprintf(stderr, "Next page: --after %s\n", *info.EndCursor)
	}
	if info.HasPreviousPage && info.StartCursor != nil {
		fmt.Fprintf(stderr, "Previous page: --before %s\n", *info.StartCursor)
	}
	return nil
}
