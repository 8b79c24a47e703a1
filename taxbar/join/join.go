// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package join combines bin classifications with bin abundances.
package join

import (
	"math"

	"github.com/abisko/magtax/taxbar/abundance"
	"github.com/abisko/magtax/taxbar/taxonomy"
)

// Record is a bin with its filled lineage and per-sample abundance.
type Record struct {
	Bin     string
	Lineage taxonomy.Lineage

	// Classified is true if the bin was present in the taxonomy.
	Classified bool
	// Measured is true if the bin was present in the abundance
	// table. Abundance is all zero for unmeasured bins.
	Measured bool

	Abundance []float64
}

// Table is the outer join of a taxonomy and an abundance table.
// Abundance values of each Record are in Samples order.
type Table struct {
	Samples []string
	Records []Record

	// Normalized reports whether the abundances are relative.
	Normalized bool
}

// Report summarises the overlap between the two joined sources.
type Report struct {
	TaxonomyBins  int `yaml:"taxonomy_bins"`
	AbundanceBins int `yaml:"abundance_bins"`
	Shared        int `yaml:"shared_bins"`
	TaxonomyOnly  int `yaml:"taxonomy_only_bins"`

	// MissingTaxonomy lists the measured bins with no
	// classification, and MissingTaxonomyAbundance holds their
	// summed abundance in each sample.
	MissingTaxonomy          []string  `yaml:"missing_taxonomy"`
	MissingTaxonomyAbundance []float64 `yaml:"missing_taxonomy_abundance"`

	Samples    []string  `yaml:"samples"`
	SampleSums []float64 `yaml:"sample_sums"`

	// Filled counts missing depths replaced by zero, either by
	// normalization or by the join for raw tables. Degenerate is
	// carried from the abundance table.
	Filled     int      `yaml:"filled_missing_depths"`
	Degenerate []string `yaml:"degenerate_samples,omitempty"`
}

// Join performs an outer join of tax and ab on bin identifier. Records
// are ordered as the bins of ab followed by the bins found only in tax,
// in taxonomy order. Unclassified ranks, including all ranks of bins
// absent from tax, are filled with taxonomy.Unclassified.
func Join(tax []taxonomy.Record, ab *abundance.Table) (*Table, Report) {
	nSamples := len(ab.Samples)
	t := &Table{
		Samples:    append([]string(nil), ab.Samples...),
		Records:    make([]Record, 0, len(ab.Bins)),
		Normalized: ab.Normalized,
	}
	rep := Report{
		TaxonomyBins:             len(tax),
		AbundanceBins:            len(ab.Bins),
		MissingTaxonomy:          []string{},
		MissingTaxonomyAbundance: make([]float64, nSamples),
		Samples:                  t.Samples,
		SampleSums:               ab.ColumnSums(),
		Filled:                   ab.Filled,
		Degenerate:               ab.Degenerate,
	}

	lineage := make(map[string]taxonomy.Lineage, len(tax))
	for _, r := range tax {
		lineage[r.Genome] = r.Lineage
	}

	for i, bin := range ab.Bins {
		l, ok := lineage[bin]
		rec := Record{
			Bin:        bin,
			Lineage:    l.Filled(),
			Classified: ok,
			Measured:   true,
			Abundance:  make([]float64, nSamples),
		}
		for j := range ab.Samples {
			v := ab.At(i, j)
			if math.IsNaN(v) {
				// Raw tables keep missing depths as NaN.
				v = 0
				rep.Filled++
			}
			rec.Abundance[j] = v
			if !ok {
				rep.MissingTaxonomyAbundance[j] += v
			}
		}
		if ok {
			rep.Shared++
		} else {
			rep.MissingTaxonomy = append(rep.MissingTaxonomy, bin)
		}
		t.Records = append(t.Records, rec)
	}

	for _, r := range tax {
		if _, ok := ab.Index(r.Genome); ok {
			continue
		}
		rep.TaxonomyOnly++
		t.Records = append(t.Records, Record{
			Bin:        r.Genome,
			Lineage:    r.Lineage.Filled(),
			Classified: true,
			Abundance:  make([]float64, nSamples),
		})
	}

	return t, rep
}
