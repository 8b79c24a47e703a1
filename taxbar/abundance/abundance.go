// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package abundance loads per-sample bin depths from binning summary
// tables and converts them to relative sequence abundance.
package abundance

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/abisko/magtax/taxbar/taxonomy"
	"github.com/abisko/magtax/taxbar/tsv"
)

// DepthPrefix is the column name prefix identifying per-sample depth
// columns. Sample names are the column names with the prefix removed.
const DepthPrefix = "Depth "

const binColumn = "bin"

var (
	// ErrDuplicate is returned when a bin appears more than once.
	ErrDuplicate = errors.New("abundance: duplicate bin")

	// ErrBadDepth is returned for depth values that are not
	// non-negative numbers.
	ErrBadDepth = errors.New("abundance: invalid depth")
)

// Table holds sample depths for a set of bins. Depths are stored by
// sample: Depth[j][i] is the depth of Bins[i] in Samples[j]. Missing
// values in a raw table are NaN.
type Table struct {
	Bins    []string
	Samples []string
	Depth   [][]float64

	// Normalized indicates the table has been through Normalize.
	Normalized bool

	// Filled is the number of missing values replaced by zero
	// during normalization. Unmeasured and zero depths cannot be
	// distinguished after normalization.
	Filled int

	// Degenerate lists the samples whose depths summed to zero
	// during normalization. Their columns are left as zeros.
	Degenerate []string

	index map[string]int
}

// Read reads a binning table from r. The table must have a bin column;
// every column whose name starts with DepthPrefix is taken as a sample.
func Read(r io.Reader) (*Table, error) {
	tr, err := tsv.NewReader(r)
	if err != nil {
		return nil, err
	}
	err = tr.Require(binColumn)
	if err != nil {
		return nil, err
	}
	bc, _ := tr.Column(binColumn)
	cols := tr.Prefixed(DepthPrefix)

	t := &Table{
		Samples: make([]string, len(cols)),
		Depth:   make([][]float64, len(cols)),
		index:   make(map[string]int),
	}
	for j, col := range cols {
		t.Samples[j] = strings.TrimPrefix(tr.Header[col], DepthPrefix)
	}
	lines := make(map[string]int)
	for {
		row, err := tr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		id := taxonomy.BinID(row[bc])
		if prev, ok := lines[id]; ok {
			return nil, fmt.Errorf("%w %q at lines %d and %d", ErrDuplicate, id, prev, tr.Line())
		}
		lines[id] = tr.Line()
		t.index[id] = len(t.Bins)
		t.Bins = append(t.Bins, id)
		for j, col := range cols {
			v, err := parseDepth(row[col])
			if err != nil {
				return nil, fmt.Errorf("%w %q in column %q at line %d", ErrBadDepth, row[col], tr.Header[col], tr.Line())
			}
			t.Depth[j] = append(t.Depth[j], v)
		}
	}
	return t, nil
}

func parseDepth(s string) (float64, error) {
	if tsv.IsNA(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrBadDepth
	}
	return v, nil
}

// ReadFile reads the binning table in the named file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading bin depths %q: %w", path, err)
	}
	return t, nil
}

// Index returns the row index of the named bin.
func (t *Table) Index(bin string) (int, bool) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Bins))
		for i, b := range t.Bins {
			t.index[b] = i
		}
	}
	i, ok := t.index[bin]
	return i, ok
}

// At returns the depth of bin i in sample j.
func (t *Table) At(i, j int) float64 { return t.Depth[j][i] }

// ColumnSums returns the sum of depths for each sample, ignoring
// missing values.
func (t *Table) ColumnSums() []float64 {
	sums := make([]float64, len(t.Samples))
	for j, col := range t.Depth {
		for _, v := range col {
			if !math.IsNaN(v) {
				sums[j] += v
			}
		}
	}
	return sums
}

// Normalize returns a new table in which missing depths are replaced
// with zero and each sample is scaled to sum to one. Samples with a
// zero total are left as zeros and listed in Degenerate. The receiver
// is not modified.
func (t *Table) Normalize() *Table {
	n := &Table{
		Bins:       append([]string(nil), t.Bins...),
		Samples:    append([]string(nil), t.Samples...),
		Depth:      make([][]float64, len(t.Depth)),
		Normalized: true,
		Filled:     t.Filled,
	}
	for j, col := range t.Depth {
		c := make([]float64, len(col))
		for i, v := range col {
			if math.IsNaN(v) {
				n.Filled++
				continue
			}
			c[i] = v
		}
		sum := floats.Sum(c)
		if sum == 0 {
			n.Degenerate = append(n.Degenerate, t.Samples[j])
		} else {
			floats.Scale(1/sum, c)
		}
		n.Depth[j] = c
	}
	return n
}
