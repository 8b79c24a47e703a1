// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package abundance

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gopkg.in/check.v1"

	"github.com/abisko/magtax/taxbar/tsv"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const tol = 1e-9

const binSummary = "bin\tDepth KJ_1_TOP\tDepth KJ_1_BOTTOM\tCompleteness\tDepth SF_2_TOP\n" +
	"b1.fa\t4\t0\t98.5\t1\n" +
	"b2.fa\t0\t0\t50\tNA\n" +
	"b3.fa\t12\t0\t77\t3\n"

func (s *S) TestRead(c *check.C) {
	t, err := Read(strings.NewReader(binSummary))
	c.Assert(err, check.Equals, nil)
	c.Check(t.Bins, check.DeepEquals, []string{"b1", "b2", "b3"})
	c.Check(t.Samples, check.DeepEquals, []string{"KJ_1_TOP", "KJ_1_BOTTOM", "SF_2_TOP"})
	c.Check(t.At(0, 0), check.Equals, 4.0)
	c.Check(t.At(2, 0), check.Equals, 12.0)
	c.Check(math.IsNaN(t.At(1, 2)), check.Equals, true)
	c.Check(t.ColumnSums(), check.DeepEquals, []float64{16, 0, 4})
	c.Check(t.Normalized, check.Equals, false)

	i, ok := t.Index("b3")
	c.Check(ok, check.Equals, true)
	c.Check(i, check.Equals, 2)
	_, ok = t.Index("b4")
	c.Check(ok, check.Equals, false)
	c.Check(t.Samples[2], check.Equals, "SF_2_TOP")
}

func (s *S) TestNoDepthColumns(c *check.C) {
	t, err := Read(strings.NewReader("bin\tCompleteness\nb1\t90\n"))
	c.Assert(err, check.Equals, nil)
	c.Check(t.Bins, check.DeepEquals, []string{"b1"})
	c.Check(t.Samples, check.HasLen, 0)
	c.Check(t.Normalize().Samples, check.HasLen, 0)
}

func (s *S) TestReadErrors(c *check.C) {
	for i, t := range []struct {
		in   string
		is   error
		want string
	}{
		{
			in:   "Bin\tDepth A\nb1\t1\n",
			is:   tsv.ErrMissingColumn,
			want: `tsv: missing required column: "bin"`,
		},
		{
			in:   "bin\tDepth A\nb1\t1\nb1\t2\n",
			is:   ErrDuplicate,
			want: `abundance: duplicate bin "b1" at lines 2 and 3`,
		},
		{
			in:   "bin\tDepth A\nb1\t-1\n",
			is:   ErrBadDepth,
			want: `abundance: invalid depth "-1" in column "Depth A" at line 2`,
		},
		{
			in:   "bin\tDepth A\nb1\tdeep\n",
			is:   ErrBadDepth,
			want: `abundance: invalid depth "deep" in column "Depth A" at line 2`,
		},
	} {
		_, err := Read(strings.NewReader(t.in))
		c.Check(errors.Is(err, t.is), check.Equals, true, check.Commentf("Test %d: %v", i, err))
		c.Check(err, check.ErrorMatches, t.want, check.Commentf("Test %d", i))
	}
}

func (s *S) TestNormalize(c *check.C) {
	// Two bins with Depth S1 = [4, 0] and Depth S2 = [0, 0].
	raw, err := Read(strings.NewReader("bin\tDepth S1\tDepth S2\nG1\t4\t0\nG2\t0\t0\n"))
	c.Assert(err, check.Equals, nil)
	c.Check(raw.ColumnSums(), check.DeepEquals, []float64{4, 0})

	n := raw.Normalize()
	c.Check(n.Depth[0], check.DeepEquals, []float64{1, 0})
	c.Check(n.Depth[1], check.DeepEquals, []float64{0, 0})
	c.Check(n.Degenerate, check.DeepEquals, []string{"S2"})
	c.Check(n.Normalized, check.Equals, true)

	// The raw table is not aliased.
	c.Check(raw.Depth[0], check.DeepEquals, []float64{4, 0})
	n.Depth[0][0] = 7
	c.Check(raw.Depth[0][0], check.Equals, 4.0)
}

func (s *S) TestNormalizeSums(c *check.C) {
	raw, err := Read(strings.NewReader(binSummary))
	c.Assert(err, check.Equals, nil)
	n := raw.Normalize()
	c.Check(n.Filled, check.Equals, 1)
	c.Check(n.Degenerate, check.DeepEquals, []string{"KJ_1_BOTTOM"})
	for j, sum := range n.ColumnSums() {
		for _, v := range n.Depth[j] {
			c.Check(math.IsNaN(v), check.Equals, false)
		}
		if n.Samples[j] == "KJ_1_BOTTOM" {
			c.Check(sum, check.Equals, 0.0)
			continue
		}
		c.Check(scalar.EqualWithinAbs(sum, 1, tol), check.Equals, true, check.Commentf("sample %s sums to %v", n.Samples[j], sum))
	}
	c.Check(floats.EqualApprox(n.Depth[0], []float64{0.25, 0, 0.75}, tol), check.Equals, true)
	c.Check(floats.EqualApprox(n.Depth[2], []float64{0.25, 0, 0.75}, tol), check.Equals, true)
}

func (s *S) TestNormalizeIdempotent(c *check.C) {
	raw, err := Read(strings.NewReader("bin\tDepth A\tDepth B\tDepth C\n" +
		"x\t0.3\t17\t0\n" +
		"y\t1e-7\t3\t0\n" +
		"z\t2.9\tNA\t0\n" +
		"w\t11\t1\t0\n"))
	c.Assert(err, check.Equals, nil)
	once := raw.Normalize()
	twice := once.Normalize()
	c.Check(twice.Filled, check.Equals, once.Filled)
	c.Check(twice.Degenerate, check.DeepEquals, once.Degenerate)
	for j := range once.Depth {
		c.Check(floats.EqualApprox(once.Depth[j], twice.Depth[j], tol), check.Equals, true,
			check.Commentf("sample %s: %v != %v", once.Samples[j], once.Depth[j], twice.Depth[j]))
	}
}

func (s *S) TestReadFile(c *check.C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "bin_summary.tsv")
	c.Assert(os.WriteFile(path, []byte(binSummary), 0o644), check.Equals, nil)
	t, err := ReadFile(path)
	c.Check(err, check.Equals, nil)
	c.Check(t.Bins, check.HasLen, 3)

	_, err = ReadFile(filepath.Join(dir, "absent.tsv"))
	c.Check(os.IsNotExist(err), check.Equals, true)
}
