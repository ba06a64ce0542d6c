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
	"math"
	"time"

	"github.com/sirseerhq/sirseer-profile/internal/contributions"
)

// Margin is the space around the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for the axes.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 30, Left: 40}

// Rect is an axis-aligned rectangle in plot coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Tick is one labelled axis position.
type Tick struct {
	Pos   float64
	Label string
}

// TimeScale maps a time domain linearly onto a pixel range.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

// Map returns the position of t. A zero-length domain maps to the middle of
// the range.
func (s TimeScale) Map(t time.Time) float64 {
	span := s.D1.Sub(s.D0)
	if span <= 0 {
		return (s.R0 + s.R1) / 2
	}
	frac := float64(t.Sub(s.D0)) / float64(span)
	return s.R0 + frac*(s.R1-s.R0)
}

// LinearScale maps a numeric domain linearly onto a pixel range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// Map returns the position of v. A zero-length domain maps everything to R0.
func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return s.R0
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Layout positions weekly bars inside a width by height viewport.
type Layout struct {
	Width, Height float64
	Margin        Margin
	X             TimeScale
	Y             LinearScale
	BarWidth      float64

	buckets []contributions.WeeklyBucket
}

// NewLayout computes scales for buckets. The x domain spans the week starts
// and the y domain runs from zero to the largest total.
func NewLayout(buckets []contributions.WeeklyBucket, width, height float64) Layout {
	l := Layout{Width: width, Height: height, Margin: DefaultMargin, buckets: buckets}
	iw, ih := l.InnerWidth(), l.InnerHeight()

	maxTotal := 0
	var d0, d1 time.Time
	for i, b := range buckets {
		if i == 0 || b.Start.Before(d0) {
			d0 = b.Start
		}
		if i == 0 || b.Start.After(d1) {
			d1 = b.Start
		}
		if b.Total > maxTotal {
			maxTotal = b.Total
		}
	}

	l.X = TimeScale{D0: d0, D1: d1, R0: 0, R1: iw}
	l.Y = LinearScale{D0: 0, D1: float64(maxTotal), R0: ih, R1: 0}
	if n := len(buckets); n > 0 {
		l.BarWidth = iw / float64(n)
	}
	return l
}

// InnerWidth is the plot width inside the margins.
func (l Layout) InnerWidth() float64 {
	return math.Max(0, l.Width-l.Margin.Left-l.Margin.Right)
}

// InnerHeight is the plot height inside the margins.
func (l Layout) InnerHeight() float64 {
	return math.Max(0, l.Height-l.Margin.Top-l.Margin.Bottom)
}

// Len is the number of bars.
func (l Layout) Len() int { return len(l.buckets) }

// Bucket returns bar i's bucket.
func (l Layout) Bucket(i int) contributions.WeeklyBucket { return l.buckets[i] }

// Bar returns the rectangle of bar i, its height proportional to the total.
func (l Layout) Bar(i int) Rect {
	b := l.buckets[i]
	return l.span(i, 0, b.Total)
}

// Segment returns the rectangle of one stacked layer over bar i.
func (l Layout) Segment(i int, seg contributions.Segment) Rect {
	return l.span(i, seg.Y0, seg.Y1)
}

func (l Layout) span(i, from, to int) Rect {
	top := math.Max(0, l.Y.Map(float64(to)))
	bottom := l.Y.Map(float64(from))
	return Rect{
		X:      l.X.Map(l.buckets[i].Start),
		Y:      top,
		Width:  l.BarWidth,
		Height: math.Max(0, bottom-top),
	}
}

// MonthTicks places a tick at the first of every month inside the x domain,
// labelled with the short month name.
func (l Layout) MonthTicks() []Tick {
	if len(l.buckets) == 0 {
		return nil
	}
	var ticks []Tick
	y, m, _ := l.X.D0.UTC().Date()
	t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	if t.Before(l.X.D0) {
		t = t.AddDate(0, 1, 0)
	}
	for !t.After(l.X.D1) {
		ticks = append(ticks, Tick{Pos: l.X.Map(t), Label: t.Format("Jan")})
		t = t.AddDate(0, 1, 0)
	}
	return ticks
}

// ValueTicks returns roughly count evenly spaced ticks over the y domain
// at 1, 2 or 5 times a power of ten.
func (l Layout) ValueTicks(count int) []Tick {
	maxV := l.Y.D1
	if maxV <= 0 || count <= 0 {
		return []Tick{{Pos: l.Y.Map(0), Label: "0"}}
	}
	step := niceStep(maxV / float64(count))
	var ticks []Tick
	for v := 0.0; v <= maxV+step/1e6; v += step {
		ticks = append(ticks, Tick{Pos: l.Y.Map(v), Label: formatTick(v)})
	}
	return ticks
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	norm := raw / mag
	switch {
	case norm <= 1:
		norm = 1
	case norm <= 2:
		norm = 2
	case norm <= 5:
		norm = 5
	default:
		norm = 10
	}
	step := norm * mag
	if step < 1 {
		step = 1
	}
	return step
}

func formatTick(v float64) string {
	return formatFloat(math.Round(v))
}
