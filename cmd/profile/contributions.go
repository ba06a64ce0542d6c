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
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-profile/internal/chart"
	"github.com/sirseerhq/sirseer-profile/internal/contributions"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/output"
)

type contributionsOptions struct {
	weeks      []string
	htmlFile   string
	format     string
	outputFile string
	retries    int
}

func newContributionsCommand(global *globalOptions) *cobra.Command {
	opts := contributionsOptions{}

	cmd := &cobra.Command{
		Use:   "contributions <login>",
		Short: "Print a user's weekly contributions for the past year",
		Long: `Print a user's weekly contribution totals for the past year.

Each --week adds the breakdown of that week into commits, issues, pull
requests and reviews. The week is given by its first day as YYYY-MM-DD.
With --html the chart is written as a standalone HTML page instead.`,
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
			return runContributions(cmd.Context(), client, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArrayVar(&opts.weeks, "week", nil, "Include the breakdown of the week starting on this date (repeatable)")
	cmd.Flags().StringVar(&opts.htmlFile, "html", "", "Write the chart as an HTML page to this file")
	cmd.Flags().StringVar(&opts.format, "format", output.FormatTable, "Output format: table or ndjson")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "Retry rate-limited and network failures up to this many times")
	return cmd
}

func runContributions(ctx context.Context, client github.Client, login string, opts contributionsOptions, stdout, stderr io.Writer) error {
	// Validate dates before any request is made.
	weeks := make([]time.Time, 0, len(opts.weeks))
	for _, raw := range opts.weeks {
		start, err := contributions.ParseDate(raw)
		if err != nil {
			return err
		}
		weeks = append(weeks, start)
	}

	fmt.Fprintf(stderr, "Fetching contributions of %s...", login)
	cal, err := client.FetchContributionCalendar(ctx, login)
	fmt.Fprintf(stderr, "\r\033[K") // Clear progress line
	if err != nil {
		return err
	}
	buckets := contributions.Buckets(cal)

	records := make([]output.WeekRecord, len(buckets))
	for i, b := range buckets {
		records[i] = output.NewWeekRecord(login, b)
	}

	breakdowns := make(map[int]contributions.Breakdown, len(weeks))
	fetch := chart.ClientFetcher(client, login)
	for _, w := range weeks {
		i := contributions.Find(buckets, w)
		if i < 0 {
			return fmt.Errorf("no contribution week starts on %s", contributions.FormatDate(w))
		}
		bd, err := fetch(ctx, buckets[i])
		var incons *contributions.InconsistencyError
		switch {
		case err == nil:
		case errors.As(err, &incons):
			fmt.Fprintf(stderr, "Warning: %v\n", incons)
			records[i].Warning = incons.Error()
		default:
			return fmt.Errorf("failed to fetch breakdown: %w", err)
		}
		breakdowns[i] = bd
		records[i].Breakdown = &bd
	}

	yearly := contributions.YearlyTotal(buckets)
	if opts.htmlFile != "" {
		if err := writeChartPage(opts.htmlFile, login, buckets, breakdowns); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote chart to %s\n", opts.htmlFile)
		if opts.outputFile == "" {
			return nil
		}
	}

	writer, err := openOutput(opts.format, opts.outputFile, stdout)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write week: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if yearly == 0 {
		fmt.Fprintln(stderr, chart.TitleNoContributions)
	} else {
		fmt.Fprintf(stderr, "%s: %s\n", chart.TitleContributions, humanize.Comma(int64(yearly)))
	}
	return nil
}

func writeChartPage(path, login string, buckets []contributions.WeeklyBucket, breakdowns map[int]contributions.Breakdown) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := chart.RenderExport(f, login, buckets, breakdowns); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
