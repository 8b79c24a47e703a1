// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sheet groups paired-end read files into samples and writes
// nf-core/mag sample sheets for each site and layer.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/biogo/store/llrb"
)

// pattern matches trimmed read file names, capturing the sample ID, site,
// replicate, layer and mate.
var pattern = regexp.MustCompile(`(ID\d+)-(KJ|KF|SF)_(\d+)_(TOP|BOTTOM)_[ACGT]+-[ACGT]+_L\d{3}_R(1|2)_001\.fastq\.gz$`)

// Header is the sample sheet column header.
var Header = []string{"sample", "group", "short_reads_1", "short_reads_2", "long_reads", "short_reads_platform"}

// Platform is the sequencing platform written for every sample.
const Platform = "ILLUMINA"

// Sample is a pair of read files from one sequencing library.
type Sample struct {
	Name  string
	Site  string
	Layer string

	R1, R2 string
}

// Compare satisfies the llrb.Comparable interface.
func (s *Sample) Compare(b llrb.Comparable) int {
	return strings.Compare(s.Name, b.(*Sample).Name)
}

// Group returns the sample's group label, <site>_<layer>.
func (s *Sample) Group() string { return s.Site + "_" + s.Layer }

// Missing returns the names of the sample's absent mates.
func (s *Sample) Missing() []string {
	var m []string
	if s.R1 == "" {
		m = append(m, "R1")
	}
	if s.R2 == "" {
		m = append(m, "R2")
	}
	return m
}

// Set is a collection of samples held in name order.
type Set struct {
	t llrb.Tree

	// Extra holds paths that named a mate already
	// held by their sample. They are not written.
	Extra []string
}

// Add adds the read file at path to its sample. It returns false
// if the base name of path is not a recognised read file name.
func (s *Set) Add(path string) bool {
	m := pattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return false
	}
	key := &Sample{Name: fmt.Sprintf("Sample_%s-%s_%s_%s", m[1], m[2], m[3], m[4])}
	smp, ok := s.t.Get(key).(*Sample)
	if !ok {
		smp = key
		smp.Site = m[2]
		smp.Layer = m[4]
		s.t.Insert(smp)
	}
	mate := &smp.R1
	if m[5] == "2" {
		mate = &smp.R2
	}
	if *mate != "" {
		s.Extra = append(s.Extra, path)
		return true
	}
	*mate = path
	return true
}

// Len returns the number of samples in the set.
func (s *Set) Len() int { return s.t.Len() }

// Do calls fn on each sample in name order until fn returns true.
func (s *Set) Do(fn func(*Sample) (done bool)) {
	s.t.Do(func(c llrb.Comparable) bool { return fn(c.(*Sample)) })
}

// Samples returns the samples in name order.
func (s *Set) Samples() []*Sample {
	l := make([]*Sample, 0, s.Len())
	s.Do(func(smp *Sample) bool {
		l = append(l, smp)
		return false
	})
	return l
}

// Scan returns the samples formed by the read files in dir. Files are
// considered in name order so that the first of any duplicated mates
// is kept.
func Scan(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var s Set
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".fastq.gz") {
			continue
		}
		s.Add(filepath.Join(dir, e.Name()))
	}
	return &s, nil
}

// Category is a site and layer combination written to its own sheet.
type Category struct {
	Name  string
	Site  string
	Layer string
}

// Categories are the sheets written by WriteAll, in order.
var Categories = []Category{
	{"kj_top", "KJ", "TOP"},
	{"kj_bottom", "KJ", "BOTTOM"},
	{"kf_top", "KF", "TOP"},
	{"kf_bottom", "KF", "BOTTOM"},
	{"sf_top", "SF", "TOP"},
	{"sf_bottom", "SF", "BOTTOM"},
}

// Path returns the location of the category's sheet below out.
func (c Category) Path(out string) string {
	return filepath.Join(out, c.Name, c.Name+"_samplesheet.csv")
}

// Write writes the sheet for category c to w and returns the
// number of samples written.
func (s *Set) Write(w io.Writer, c Category) (int, error) {
	cw := csv.NewWriter(w)
	err := cw.Write(Header)
	if err != nil {
		return 0, err
	}
	var n int
	s.Do(func(smp *Sample) bool {
		if smp.Site != c.Site || smp.Layer != c.Layer {
			return false
		}
		err = cw.Write([]string{smp.Name, smp.Group(), smp.R1, smp.R2, "", Platform})
		if err != nil {
			return true
		}
		n++
		return false
	})
	if err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}

// WriteAll writes the sheet for each of Categories below out, creating
// directories as needed, and returns the paths written. Categories with
// no samples still get a sheet holding only the header.
func (s *Set) WriteAll(out string) ([]string, error) {
	var paths []string
	for _, c := range Categories {
		path := c.Path(out)
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return paths, err
		}
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		_, err = s.Write(f, c)
		if err != nil {
			f.Close()
			return paths, fmt.Errorf("writing %q: %w", path, err)
		}
		err = f.Close()
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
