// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abisko/magtax/taxbar/join"
	"github.com/abisko/magtax/taxbar/taxonomy"
)

// writeReport writes rep to the named file as YAML.
func writeReport(path string, rep join.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	err = enc.Encode(rep)
	if err != nil {
		f.Close()
		return err
	}
	err = enc.Close()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes the join counts, the per-sample abundance totals
// and the merged table to w as tab-separated text.
func printSummary(w io.Writer, t *join.Table, rep join.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Bins in taxonomy\t%d\n", rep.TaxonomyBins)
	fmt.Fprintf(bw, "Bins in abundance\t%d\n", rep.AbundanceBins)
	fmt.Fprintf(bw, "Bins in both\t%d\n", rep.Shared)
	fmt.Fprintf(bw, "Bins without abundance\t%d\n", rep.TaxonomyOnly)
	fmt.Fprintf(bw, "Bins without taxonomy\t%d\n", len(rep.MissingTaxonomy))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Sample\tTotal\tWithout taxonomy")
	for j, s := range rep.Samples {
		fmt.Fprintf(bw, "%s\t%g\t%g\n", s, rep.SampleSums[j], rep.MissingTaxonomyAbundance[j])
	}
	fmt.Fprintln(bw)

	head := []string{"bin"}
	for r := taxonomy.Domain; r <= taxonomy.Species; r++ {
		head = append(head, r.String())
	}
	head = append(head, t.Samples...)
	fmt.Fprintln(bw, strings.Join(head, "\t"))
	for _, r := range t.Records {
		fmt.Fprintf(bw, "%s\t%s", r.Bin, strings.Join(r.Lineage[:], "\t"))
		for _, v := range r.Abundance {
			fmt.Fprintf(bw, "\t%g", v)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
