// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tsv reads header-indexed tab-delimited tables such as the
// summary files written by GTDB-Tk and nf-core/mag.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEmpty is returned when a table has no header line.
	ErrEmpty = errors.New("tsv: no header line")

	// ErrMissingColumn is returned by Require when a named column is absent.
	ErrMissingColumn = errors.New("tsv: missing required column")
)

// naValues are the cell values treated as missing. The set follows the
// defaults used by the pandas table reader so that tables produced and
// consumed by Python tooling are interpreted the same way here.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNA returns whether the cell value s represents a missing value.
func IsNA(s string) bool { return naValues[strings.TrimSpace(s)] }

// Reader reads records from a tab-delimited table with a header line.
type Reader struct {
	r *csv.Reader

	// Header holds the column names in file order.
	Header []string
	index  map[string]int
}

// NewReader returns a Reader that has consumed the header line of r.
// Every subsequent record must have the same number of fields as the
// header.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	h, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmpty
		}
		return nil, err
	}
	if len(h) != 0 {
		h[0] = strings.TrimPrefix(h[0], "\ufeff")
	}
	idx := make(map[string]int, len(h))
	for i, name := range h {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return &Reader{r: cr, Header: h, index: idx}, nil
}

// Column returns the index of the named column.
func (r *Reader) Column(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Require returns an error wrapping ErrMissingColumn listing every name
// that is not present in the header.
func (r *Reader) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := r.index[n]; !ok {
			missing = append(missing, fmt.Sprintf("%q", n))
		}
	}
	if len(missing) != 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Prefixed returns the indices of the columns whose name starts with
// prefix, in file order.
func (r *Reader) Prefixed(prefix string) []int {
	var cols []int
	for i, n := range r.Header {
		if strings.HasPrefix(n, prefix) {
			cols = append(cols, i)
		}
	}
	return cols
}

// Read returns the next record. At the end of the table Read
// returns io.EOF.
func (r *Reader) Read() ([]string, error) {
	return r.r.Read()
}

// Line returns the line number of the record most recently returned
// by Read.
func (r *Reader) Line() int {
	line, _ := r.r.FieldPos(0)
	return line
}
