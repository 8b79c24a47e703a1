// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// taxbar draws the taxonomic composition of metagenome samples as
// stacked bar charts. It reads a GTDB-Tk classification summary and an
// nf-core/mag bin depth summary, joins them on bin name, converts depths
// to relative sequence abundance and renders one chart for each
// combination of rank, Unclassified filtering and sample layer.
//
// Charts are written to the output directory with names derived from
// their parameters, for example rsa_phylum_TOP_classified.png, so
// repeated runs replace earlier charts.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/abisko/magtax/taxbar/abundance"
	"github.com/abisko/magtax/taxbar/aggregate"
	"github.com/abisko/magtax/taxbar/chart"
	"github.com/abisko/magtax/taxbar/join"
	"github.com/abisko/magtax/taxbar/taxonomy"
)

var (
	INFO = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	WARN = log.New(os.Stderr, "WARN: ", log.Ldate|log.Ltime)
)

var (
	taxName  = flag.String("tax", "", "GTDB-Tk summary file with user_genome and classification columns (required).")
	binName  = flag.String("bins", "", "Bin summary file with bin and 'Depth <sample>' columns (required).")
	outDir   = flag.String("out", "plots", "Directory for chart images.")
	raw      = flag.Bool("raw", false, "Plot raw depths instead of relative sequence abundance.")
	rankList = flag.String("ranks", ranksString(taxonomy.Aggregated), "Comma separated ranks to plot.")
	layers   = flag.String("layers", "TOP,BOTTOM", "Comma separated sample name substrings to plot separately.")
	width    = flag.Float64("width", 8, "Minimum chart width in inches.")
	height   = flag.Float64("height", 6, "Chart height in inches.")
	threads  = flag.Int("threads", 1, "Number of charts to render concurrently.")
	progress = flag.Bool("progress", false, "Show a rendering progress bar.")
	printOut = flag.Bool("print", false, "Print the join summary and merged table to stdout.")
	report   = flag.String("report", "", "Write the join summary as YAML to this file.")
	config   = flag.String("config", "", "Read defaults for these flags from a YAML, TOML or JSON file.")
	help     = flag.Bool("help", false, "Print this usage message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *config != "" {
		err := applyConfig(flag.CommandLine, *config)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *taxName == "" || *binName == "" {
		flag.Usage()
		os.Exit(1)
	}

	ranks, err := parseRanks(*rankList)
	if err != nil {
		log.Fatalf("failed to parse ranks: %v", err)
	}
	p := params{
		tax:    *taxName,
		bins:   *binName,
		out:    *outDir,
		raw:    *raw,
		ranks:  ranks,
		layers: splitList(*layers),
		style: chart.Style{
			Width:    vg.Length(*width) * vg.Inch,
			Height:   vg.Length(*height) * vg.Inch,
			BarWidth: chart.DefaultStyle.BarWidth,
		},
		threads:  *threads,
		progress: *progress,
		report:   *report,
	}
	if *printOut {
		p.print = os.Stdout
	}
	err = run(p)
	if err != nil {
		log.Fatalf("failed: %v", err)
	}
}

type params struct {
	tax, bins string
	out       string
	raw       bool

	ranks  []taxonomy.Rank
	layers []string
	style  chart.Style

	threads  int
	progress bool

	// print receives the summary and merged table if not nil.
	print  io.Writer
	report string
}

func run(p params) error {
	INFO.Printf("reading taxonomy from `%s'", p.tax)
	tax, err := taxonomy.ReadFile(p.tax)
	if err != nil {
		return err
	}
	INFO.Printf("read %d classified bins", len(tax))

	INFO.Printf("reading bin depths from `%s'", p.bins)
	ab, err := abundance.ReadFile(p.bins)
	if err != nil {
		return err
	}
	INFO.Printf("read %d bins in %d samples", len(ab.Bins), len(ab.Samples))
	if !p.raw {
		ab = ab.Normalize()
		for _, s := range ab.Degenerate {
			WARN.Printf("sample %s has zero total depth; left as zero", s)
		}
	}

	joined, rep := join.Join(tax, ab)
	logReport(rep)
	if p.report != "" {
		err = writeReport(p.report, rep)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		INFO.Printf("wrote report to `%s'", p.report)
	}
	if p.print != nil {
		err = printSummary(p.print, joined, rep)
		if err != nil {
			return err
		}
	}

	opts := aggregate.Combinations(p.ranks, p.layers)
	INFO.Printf("rendering %d charts to `%s'", len(opts), p.out)
	paths, err := render(joined, opts, p.out, p.style, p.threads, p.progress)
	INFO.Printf("wrote %d charts", len(paths))
	return err
}

func logReport(rep join.Report) {
	INFO.Printf("bins: %d in taxonomy, %d in abundance, %d in both",
		rep.TaxonomyBins, rep.AbundanceBins, rep.Shared)
	if rep.Filled != 0 {
		WARN.Printf("%d missing depths treated as zero", rep.Filled)
	}
	if rep.TaxonomyOnly != 0 {
		WARN.Printf("%d classified bins have no abundance", rep.TaxonomyOnly)
	}
	if n := len(rep.MissingTaxonomy); n != 0 {
		WARN.Printf("%d bins have no taxonomy and are shown as %s", n, taxonomy.Unclassified)
		for j, s := range rep.Samples {
			WARN.Printf("\t%s: %g", s, rep.MissingTaxonomyAbundance[j])
		}
	}
}

func splitList(s string) []string {
	var l []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			l = append(l, f)
		}
	}
	return l
}

func parseRanks(s string) ([]taxonomy.Rank, error) {
	var ranks []taxonomy.Rank
	for _, f := range splitList(s) {
		r, err := taxonomy.ParseRank(f)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, r)
	}
	return ranks, nil
}

func ranksString(ranks []taxonomy.Rank) string {
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.String()
	}
	return strings.Join(names, ",")
}
