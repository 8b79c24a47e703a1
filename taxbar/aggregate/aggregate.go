// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aggregate sums joined bin abundances into taxonomic
// categories at a chosen rank.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/abisko/magtax/taxbar/join"
	"github.com/abisko/magtax/taxbar/taxonomy"
)

// Options specifies a grouping and its filters.
type Options struct {
	Rank taxonomy.Rank

	// DropUnclassified removes the Unclassified category.
	DropUnclassified bool

	// Layer restricts the samples to those whose name contains
	// Layer. An empty Layer retains all samples.
	Layer string
}

// Filename returns the image file name for the options. Names depend
// only on the options, so repeated runs replace earlier output.
func (o Options) Filename() string {
	var b strings.Builder
	b.WriteString("rsa_")
	b.WriteString(o.Rank.String())
	if o.Layer != "" {
		b.WriteByte('_')
		b.WriteString(sanitize(o.Layer))
	}
	if o.DropUnclassified {
		b.WriteString("_classified")
	}
	b.WriteString(".png")
	return b.String()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}

// Title returns a human readable description of the options.
func (o Options) Title() string {
	t := strings.ToUpper(o.Rank.String()[:1]) + o.Rank.String()[1:]
	if o.Layer != "" {
		t = fmt.Sprintf("%s (%s)", t, o.Layer)
	}
	if o.DropUnclassified {
		t += ", classified only"
	}
	return t
}

// Combinations returns the options for every rank with and without the
// Unclassified category, for all samples and for each layer.
func Combinations(ranks []taxonomy.Rank, layers []string) []Options {
	opts := make([]Options, 0, len(ranks)*2*(len(layers)+1))
	for _, r := range ranks {
		for _, drop := range []bool{false, true} {
			opts = append(opts, Options{Rank: r, DropUnclassified: drop})
			for _, l := range layers {
				opts = append(opts, Options{Rank: r, DropUnclassified: drop, Layer: l})
			}
		}
	}
	return opts
}

// Table holds summed abundances for each category in each retained
// sample. Values[i][j] is the abundance of Categories[i] in Samples[j].
type Table struct {
	Options

	Samples    []string
	Categories []string
	Values     [][]float64

	// Normalized reports whether the values are relative abundances.
	Normalized bool
}

// Aggregate groups the records of t by their name at opt.Rank and sums
// abundances within each group. Categories are in order of first
// appearance, except that Unclassified is always last.
func Aggregate(t *join.Table, opt Options) *Table {
	agg := &Table{Options: opt, Normalized: t.Normalized}

	var cols []int
	for j, s := range t.Samples {
		if opt.Layer == "" || strings.Contains(s, opt.Layer) {
			cols = append(cols, j)
			agg.Samples = append(agg.Samples, s)
		}
	}

	index := make(map[string]int)
	var unclassified []float64
	for _, r := range t.Records {
		name := r.Lineage.At(opt.Rank)
		if name == "" {
			name = taxonomy.Unclassified
		}
		var sums []float64
		if name == taxonomy.Unclassified {
			if opt.DropUnclassified {
				continue
			}
			if unclassified == nil {
				unclassified = make([]float64, len(cols))
			}
			sums = unclassified
		} else {
			i, ok := index[name]
			if !ok {
				i = len(agg.Categories)
				index[name] = i
				agg.Categories = append(agg.Categories, name)
				agg.Values = append(agg.Values, make([]float64, len(cols)))
			}
			sums = agg.Values[i]
		}
		for k, j := range cols {
			sums[k] += r.Abundance[j]
		}
	}
	if unclassified != nil {
		agg.Categories = append(agg.Categories, taxonomy.Unclassified)
		agg.Values = append(agg.Values, unclassified)
	}
	return agg
}
