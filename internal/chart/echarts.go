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

package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sirseerhq/sirseer-profile/internal/contributions"
)

const exportStack = "total"

// BuildExport creates a standalone stacked bar chart of the weekly totals.
// Weeks present in breakdowns are drawn as their stacked breakdown instead
// of a plain bar.
func BuildExport(login string, buckets []contributions.WeeklyBucket, breakdowns map[int]contributions.Breakdown) *charts.Bar {
	labels := make([]string, len(buckets))
	plain := make([]opts.BarData, len(buckets))
	perField := make(map[contributions.Field][]opts.BarData, len(contributions.Fields))
	for _, f := range contributions.Fields {
		perField[f] = make([]opts.BarData, len(buckets))
	}

	for i, b := range buckets {
		labels[i] = contributions.FormatDate(b.Start)
		bd, ok := breakdowns[i]
		if !ok {
			plain[i] = opts.BarData{Value: b.Total}
			for _, f := range contributions.Fields {
				perField[f][i] = opts.BarData{Value: 0}
			}
			continue
		}
		plain[i] = opts.BarData{Value: 0}
		for _, f := range contributions.Fields {
			perField[f][i] = opts.BarData{Value: bd.Count(f)}
		}
	}

	title := TitleFor(contributions.YearlyTotal(buckets))
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s · contributions", login),
			Width:     "100%",
			Height:    fmt.Sprintf("%dpx", DefaultHeight+100),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: login,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Contributions", Type: "value"}),
	)
	bar.SetXAxis(labels)

	bar.AddSeries("Total", plain,
		charts.WithBarChartOpts(opts.BarChart{Stack: exportStack}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: BarColor}),
	)
	for _, f := range contributions.Fields {
		bar.AddSeries(f.Label(), perField[f],
			charts.WithBarChartOpts(opts.BarChart{Stack: exportStack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: FieldColor(f)}),
		)
	}
	return bar
}

// RenderExport writes BuildExport as a complete HTML page.
func RenderExport(w io.Writer, login string, buckets []contributions.WeeklyBucket, breakdowns map[int]contributions.Breakdown) error {
	return BuildExport(login, buckets, breakdowns).Render(w)
}

// Titles above the chart.
const (
	TitleContributions   = "Contributions in the last year"
	TitleNoContributions = "This doesn't have any public contributions for the past year"
)

// TitleFor picks the chart title for a yearly total.
func TitleFor(yearly int) string {
	if yearly == 0 {
		return TitleNoContributions
	}
	return TitleContributions
}
