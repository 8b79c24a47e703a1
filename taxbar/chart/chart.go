// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders aggregated taxonomic composition as stacked bar
// charts, one bar per sample.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/abisko/magtax/taxbar/aggregate"
	"github.com/abisko/magtax/taxbar/taxonomy"
)

var (
	// ErrNoSamples is returned for tables with no retained samples.
	ErrNoSamples = errors.New("chart: no samples")

	// ErrNoCategories is returned for tables with no categories.
	ErrNoCategories = errors.New("chart: no categories")
)

// Neutral is the colour used for the Unclassified category.
var Neutral color.Color = color.RGBA{R: 0xbe, G: 0xbe, B: 0xbe, A: 0xff}

// Palette returns n colours for classified categories. Small sets use
// the soft brewer Set2 scheme, up to twelve use the paired scheme, and
// larger sets use evenly spaced hues.
func Palette(n int) []color.Color {
	switch {
	case n <= 0:
		return nil
	case n <= 8:
		return qualitative("Set2", n)
	case n <= 12:
		return qualitative("Paired", n)
	default:
		return palette.Rainbow(n, 0, 0.8, 1, 0.85, 1).Colors()
	}
}

// qualitative returns the first n colours of the named brewer scheme.
// Brewer schemes start at three colours.
func qualitative(name string, n int) []color.Color {
	k := n
	if k < 3 {
		k = 3
	}
	p, err := brewer.GetPalette(brewer.TypeQualitative, name, k)
	if err != nil {
		panic(fmt.Sprintf("chart: %v", err))
	}
	return p.Colors()[:n]
}

// Colors returns a colour for each category. The Unclassified category
// is given Neutral and the remaining categories share a Palette.
func Colors(categories []string) []color.Color {
	n := 0
	for _, c := range categories {
		if c != taxonomy.Unclassified {
			n++
		}
	}
	pal := Palette(n)
	cols := make([]color.Color, len(categories))
	k := 0
	for i, c := range categories {
		if c == taxonomy.Unclassified {
			cols[i] = Neutral
			continue
		}
		cols[i] = pal[k]
		k++
	}
	return cols
}

// Style holds image dimensions. Width is increased when needed to give
// each bar at least BarWidth plus spacing.
type Style struct {
	Width, Height vg.Length
	BarWidth      vg.Length
}

// DefaultStyle is the style used when no other is specified.
var DefaultStyle = Style{
	Width:    8 * vg.Inch,
	Height:   6 * vg.Inch,
	BarWidth: vg.Points(20),
}

// orDefault returns s with zero fields taken from DefaultStyle.
func (s Style) orDefault() Style {
	if s.Width <= 0 {
		s.Width = DefaultStyle.Width
	}
	if s.Height <= 0 {
		s.Height = DefaultStyle.Height
	}
	if s.BarWidth <= 0 {
		s.BarWidth = DefaultStyle.BarWidth
	}
	return s
}

// New returns a stacked bar chart of t. Categories are stacked in table
// order, so the Unclassified category is drawn on top.
func New(t *aggregate.Table, s Style) (*plot.Plot, error) {
	if len(t.Samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(t.Categories) == 0 {
		return nil, ErrNoCategories
	}
	s = s.orDefault()

	p := plot.New()
	p.Title.Text = t.Title()
	p.X.Label.Text = "Sample"
	if t.Normalized {
		p.Y.Label.Text = "Relative sequence abundance"
	} else {
		p.Y.Label.Text = "Depth"
	}
	p.Y.Min = 0

	cols := Colors(t.Categories)
	bars := make([]*plotter.BarChart, len(t.Categories))
	for i, cat := range t.Categories {
		b, err := plotter.NewBarChart(plotter.Values(t.Values[i]), s.BarWidth)
		if err != nil {
			return nil, fmt.Errorf("chart: category %q: %w", cat, err)
		}
		b.Color = cols[i]
		b.LineStyle.Width = 0
		if i != 0 {
			b.StackOn(bars[i-1])
		}
		bars[i] = b
		p.Add(b)
	}
	// List the legend in stacking order, top segment first.
	for i := len(bars) - 1; i >= 0; i-- {
		p.Legend.Add(t.Categories[i], bars[i])
	}
	p.Legend.Top = true

	p.NominalX(t.Samples...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	return p, nil
}

// Save writes p as an image named for t in dir, creating dir if
// necessary, and returns the path written. The image format is taken
// from the file name extension.
func Save(p *plot.Plot, t *aggregate.Table, dir string, s Style) (string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", err
	}
	s = s.orDefault()
	w := s.Width
	if need := vg.Length(len(t.Samples))*(s.BarWidth*3/2) + 3*vg.Inch; need > w {
		w = need
	}
	path := filepath.Join(dir, t.Filename())
	return path, p.Save(w, s.Height, path)
}

// Render builds the chart for t and saves it to dir.
func Render(t *aggregate.Table, dir string, s Style) (string, error) {
	p, err := New(t, s)
	if err != nil {
		return "", err
	}
	return Save(p, t, dir, s)
}
