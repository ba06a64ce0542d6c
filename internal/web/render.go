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
	"bytes"
	"html/template"
	"io"

	"github.com/sirseerhq/sirseer-profile/internal/chart"
	"github.com/sirseerhq/sirseer-profile/internal/screen"
)

// Notes shown in place of the chart while its data is unavailable.
const (
	chartLoadingNote = "Loading contributions..."
	chartFailedNote  = "Contributions unavailable"
)

type screenData struct {
	screen.View
	Content    bool
	ChartTitle string
	ChartNote  string
	ChartSVG   template.HTML
}

var screenTemplate = template.Must(template.New("screen").Parse(`<section class="screen" data-state="{{.State}}">
{{- if not .Content}}
<p class="message">{{.Message}}</p>
{{- else}}
<div class="chart">
{{- if .ChartNote}}
<p class="chart-note">{{.ChartNote}}</p>
{{- else}}
<h2>{{.ChartTitle}}</h2>
{{.ChartSVG}}
{{- end}}
</div>
<ul class="repositories">
{{- range .Repositories}}
<li class="repository">
<a href="{{.URL}}" target="_blank" rel="noopener">{{.Name}}</a>{{if .Forked}} <span class="badge">forked</span>{{end}}
{{- if .Description}}
<p class="description">{{.Description}}</p>
{{- end}}
<dl>
{{- if .LastCommit}}
<dt>Last commit</dt><dd>{{.LastCommit}}</dd>
{{- end}}
<dt>Issues</dt><dd>{{.Issues}}</dd>
<dt>Pull Requests</dt><dd>{{.PullRequests}}</dd>
<dt>Stars</dt><dd>{{.Stars}}</dd>
<dt>Updated</dt><dd>{{.Updated}}</dd>
</dl>
</li>
{{- end}}
</ul>
<nav class="pagination">
<button type="button" data-action="previous"{{if not .CanPrevious}} disabled{{end}}>Previous</button>
<button type="button" data-action="next"{{if not .CanNext}} disabled{{end}}>Next</button>
</nav>
{{- end}}
</section>
`))

// renderView writes the HTML fragment for v.
func renderView(w io.Writer, v screen.View) error {
	data := screenData{View: v, Content: v.State == screen.Content}
	if data.Content {
		switch v.Chart.Status {
		case screen.ChartLoading:
			data.ChartNote = chartLoadingNote
		case screen.ChartFailed:
			data.ChartNote = chartFailedNote
		default:
			var svg bytes.Buffer
			l := chart.NewLayout(v.Chart.Buckets, chart.DefaultWidth, chart.DefaultHeight)
			if err := chart.RenderSVG(&svg, l, v.Chart.Overlay); err != nil {
				return err
			}
			data.ChartTitle = v.Chart.Title
			// RenderSVG escapes all interpolated values.
			data.ChartSVG = template.HTML(svg.String()) //nolint:gosec
		}
	}
	return screenTemplate.Execute(w, data)
}
