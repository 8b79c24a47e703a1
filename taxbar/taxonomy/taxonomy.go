// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package taxonomy parses GTDB-Tk style classification tables into
// ranked lineages.
//
// A classification string is a semicolon-delimited path of rank-prefixed
// names, for example
//
//	d__Bacteria;p__Firmicutes;c__Bacilli;o__;f__;g__;s__
//
// Parsing keeps unnamed ranks as empty strings. Replacing them with the
// Unclassified sentinel is a separate step performed by Lineage.Filled,
// so parsing fidelity and display defaults can be checked independently.
package taxonomy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/abisko/magtax/taxbar/tsv"
)

// Rank is a level of the taxonomic hierarchy.
type Rank int

const (
	Domain Rank = iota
	Phylum
	Class
	Order
	Family
	Genus
	Species

	// NumRanks is the number of ranks in a Lineage.
	NumRanks = int(Species) + 1
)

var rankNames = [NumRanks]string{"domain", "phylum", "class", "order", "family", "genus", "species"}

func (r Rank) String() string {
	if r < 0 || int(r) >= NumRanks {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// ParseRank returns the Rank with the given name. Matching is
// case-insensitive.
func ParseRank(s string) (Rank, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range rankNames {
		if s == n {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("taxonomy: unknown rank %q", s)
}

// Aggregated lists the ranks offered for composition summaries. Species
// is parsed but not included; GTDB-Tk species calls are too sparse for
// metagenome-assembled bins to give useful composition plots.
var Aggregated = []Rank{Domain, Phylum, Class, Order, Family, Genus}

// Unclassified is the name given to a rank with no classification.
const Unclassified = "Unclassified"

// Lineage holds a name for each Rank, in rank order. An empty string
// indicates that the rank is not classified.
type Lineage [NumRanks]string

// At returns the name at rank r.
func (l Lineage) At(r Rank) string { return l[r] }

// Filled returns a copy of l with every empty rank replaced by
// Unclassified.
func (l Lineage) Filled() Lineage {
	for i, n := range l {
		if n == "" {
			l[i] = Unclassified
		}
	}
	return l
}

var rankPrefix = regexp.MustCompile(`^[a-z]__`)

// ParseClassification splits a classification string into a Lineage,
// removing the rank prefix from each segment. Strings with fewer than
// NumRanks segments leave the trailing ranks empty; segments after the
// last rank are ignored.
func ParseClassification(s string) Lineage {
	var l Lineage
	for i, seg := range strings.SplitN(s, ";", NumRanks+1) {
		if i == NumRanks {
			break
		}
		l[i] = rankPrefix.ReplaceAllString(strings.TrimSpace(seg), "")
	}
	return l
}

// Record is a classified genome bin.
type Record struct {
	Genome  string
	Lineage Lineage
}

// binExts are the sequence file extensions removed by BinID, longest first.
var binExts = []string{".fasta.gz", ".fna.gz", ".fa.gz", ".fasta", ".fna", ".fa"}

// BinID returns the canonical identifier of a bin named name. GTDB-Tk
// reports genomes without their file extension while binning summaries
// often retain it; BinID removes a trailing FASTA extension so both
// forms compare equal.
func BinID(name string) string {
	name = strings.TrimSpace(name)
	for _, ext := range binExts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// ErrDuplicate is returned when a genome is classified more than once.
var ErrDuplicate = errors.New("taxonomy: duplicate genome")

const (
	genomeColumn = "user_genome"
	classColumn  = "classification"
)

// Read reads a classification table from r. The table must have
// user_genome and classification columns. Rows with a missing
// classification are skipped.
func Read(r io.Reader) ([]Record, error) {
	tr, err := tsv.NewReader(r)
	if err != nil {
		return nil, err
	}
	err = tr.Require(genomeColumn, classColumn)
	if err != nil {
		return nil, err
	}
	gc, _ := tr.Column(genomeColumn)
	cc, _ := tr.Column(classColumn)

	var recs []Record
	seen := make(map[string]int)
	for {
		row, err := tr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if tsv.IsNA(row[cc]) {
			continue
		}
		id := BinID(row[gc])
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w %q at lines %d and %d", ErrDuplicate, id, prev, tr.Line())
		}
		seen[id] = tr.Line()
		recs = append(recs, Record{Genome: id, Lineage: ParseClassification(row[cc])})
	}
	return recs, nil
}

// ReadFile reads the classification table in the named file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %q: %w", path, err)
	}
	return recs, nil
}
