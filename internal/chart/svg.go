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
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/sirseerhq/sirseer-profile/internal/contributions"
)

// Default viewport of the rendered chart.
const (
	DefaultWidth  = 960
	DefaultHeight = 300
)

// BarColor fills plain bars.
const BarColor = "steelblue"

// Message shown in place of an overlay whose fetch failed.
const BreakdownUnavailable = "Breakdown unavailable"

// Message shown over a clamped overlay.
const BreakdownInconsistent = "Breakdown exceeds weekly total"

// FieldColor is the overlay color of a breakdown field.
func FieldColor(f contributions.Field) string {
	switch f {
	case contributions.Commits:
		return "#fffe78"
	case contributions.Issues:
		return "#ff9d42"
	case contributions.PullRequests:
		return "#52ff52"
	case contributions.PullRequestReviews:
		return "#d34f8c"
	default:
		return "#cccccc"
	}
}

type svgRect struct {
	Index  int
	Week   string
	Field  string
	Fill   string
	X, Y   string
	W, H   string
	Hidden bool
	Title  string
}

type svgText struct {
	Class string
	X, Y  string
	Text  string
}

type svgData struct {
	Width, Height string
	Left, Top     string
	InnerWidth    string
	InnerHeight   string
	Bars          []svgRect
	Stack         []svgRect
	Notes         []svgText
	XTicks        []svgText
	YTicks        []svgText
}

var svgTemplate = template.Must(template.New("chart").Parse(`<svg class="contributions-chart" viewBox="0 0 {{.Width}} {{.Height}}" xmlns="http://www.w3.org/2000/svg">
<g transform="translate({{.Left}},{{.Top}})">
{{- range .Bars}}
<rect class="bar" data-index="{{.Index}}" data-week="{{.Week}}" x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="{{.Fill}}"{{if .Hidden}} opacity="0"{{end}}><title>{{.Title}}</title></rect>
{{- end}}
{{- range .Stack}}
<rect class="stack" data-index="{{.Index}}" data-field="{{.Field}}" x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="{{.Fill}}"><title>{{.Title}}</title></rect>
{{- end}}
{{- range .Notes}}
<text class="{{.Class}}" x="{{.X}}" y="{{.Y}}">{{.Text}}</text>
{{- end}}
<g class="axis axis-x" transform="translate(0,{{.InnerHeight}})">
<line x1="0" x2="{{.InnerWidth}}" y1="0" y2="0" stroke="currentColor"></line>
{{- range .XTicks}}
<text x="{{.X}}" y="{{.Y}}" text-anchor="middle">{{.Text}}</text>
{{- end}}
</g>
<g class="axis axis-y">
<line x1="0" x2="0" y1="0" y2="{{.InnerHeight}}" stroke="currentColor"></line>
{{- range .YTicks}}
<text x="{{.X}}" y="{{.Y}}" text-anchor="end">{{.Text}}</text>
{{- end}}
</g>
</g>
</svg>
`))

// RenderSVG writes the chart with the given overlay as an inline SVG element.
func RenderSVG(w io.Writer, l Layout, ov Overlay) error {
	data := svgData{
		Width:       formatFloat(l.Width),
		Height:      formatFloat(l.Height),
		Left:        formatFloat(l.Margin.Left),
		Top:         formatFloat(l.Margin.Top),
		InnerWidth:  formatFloat(l.InnerWidth()),
		InnerHeight: formatFloat(l.InnerHeight()),
	}

	for i := 0; i < l.Len(); i++ {
		b := l.Bucket(i)
		r := l.Bar(i)
		data.Bars = append(data.Bars, svgRect{
			Index:  i,
			Week:   contributions.FormatDate(b.Start),
			Fill:   BarColor,
			X:      formatFloat(r.X),
			Y:      formatFloat(r.Y),
			W:      formatFloat(r.Width),
			H:      formatFloat(r.Height),
			Hidden: ov.Status == StatusShown && ov.Index == i,
			Title:  fmt.Sprintf("Week of %s: %d contributions", contributions.FormatDate(b.Start), b.Total),
		})
	}

	if ov.Index >= 0 && ov.Index < l.Len() {
		bar := l.Bar(ov.Index)
		noteX := formatFloat(bar.X)
		noteY := formatFloat(bar.Y - 4)
		switch ov.Status {
		case StatusShown:
			week := contributions.FormatDate(l.Bucket(ov.Index).Start)
			for _, seg := range ov.Breakdown.Segments() {
				r := l.Segment(ov.Index, seg)
				data.Stack = append(data.Stack, svgRect{
					Index: ov.Index,
					Week:  week,
					Field: seg.Field.Key(),
					Fill:  FieldColor(seg.Field),
					X:     formatFloat(r.X),
					Y:     formatFloat(r.Y),
					W:     formatFloat(r.Width),
					H:     formatFloat(r.Height),
					Title: fmt.Sprintf("%s: %d", seg.Field.Label(), seg.Count),
				})
			}
			if ov.Inconsistent != nil {
				data.Notes = append(data.Notes, svgText{Class: "breakdown-warning", X: noteX, Y: noteY, Text: BreakdownInconsistent})
			}
		case StatusLoading:
			data.Notes = append(data.Notes, svgText{Class: "breakdown-loading", X: noteX, Y: noteY, Text: "Loading..."})
		case StatusFailed:
			data.Notes = append(data.Notes, svgText{Class: "breakdown-error", X: noteX, Y: noteY, Text: BreakdownUnavailable})
		}
	}

	for _, t := range l.MonthTicks() {
		data.XTicks = append(data.XTicks, svgText{X: formatFloat(t.Pos), Y: "18", Text: t.Label})
	}
	for _, t := range l.ValueTicks(10) {
		data.YTicks = append(data.YTicks, svgText{X: "-6", Y: formatFloat(t.Pos + 3), Text: t.Label})
	}

	return svgTemplate.Execute(w, data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
