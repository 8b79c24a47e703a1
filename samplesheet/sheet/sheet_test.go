// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sheet

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const (
	kj1TopR1 = "ID101-KJ_1_TOP_ACGT-TTAG_L002_R1_001.fastq.gz"
	kj1TopR2 = "ID101-KJ_1_TOP_ACGT-TTAG_L002_R2_001.fastq.gz"
	kj2TopR1 = "ID102-KJ_2_TOP_GGCA-CATG_L002_R1_001.fastq.gz"
	sf1BotR1 = "ID103-SF_1_BOTTOM_AACC-GGTT_L001_R1_001.fastq.gz"
	sf1BotR2 = "ID103-SF_1_BOTTOM_AACC-GGTT_L001_R2_001.fastq.gz"
)

func (s *S) TestAdd(c *check.C) {
	for _, t := range []struct {
		name  string
		ok    bool
		smp   string
		group string
		mate  int
	}{
		{name: kj1TopR1, ok: true, smp: "Sample_ID101-KJ_1_TOP", group: "KJ_TOP", mate: 1},
		{name: sf1BotR2, ok: true, smp: "Sample_ID103-SF_1_BOTTOM", group: "SF_BOTTOM", mate: 2},
		{name: "/data/raw/" + kj2TopR1, ok: true, smp: "Sample_ID102-KJ_2_TOP", group: "KJ_TOP", mate: 1},
		{name: "ID101-XX_1_TOP_ACGT-TTAG_L002_R1_001.fastq.gz"},
		{name: "ID101-KJ_1_MIDDLE_ACGT-TTAG_L002_R1_001.fastq.gz"},
		{name: "ID101-KJ_1_TOP_ACGN-TTAG_L002_R1_001.fastq.gz"},
		{name: "ID101-KJ_1_TOP_ACGT-TTAG_L002_R3_001.fastq.gz"},
		{name: "ID101-KJ_1_TOP_ACGT-TTAG_L002_R1_001.fastq"},
		{name: "ID101-KJ_1_TOP_ACGT-TTAG_L02_R1_001.fastq.gz"},
	} {
		var set Set
		c.Check(set.Add(t.name), check.Equals, t.ok, check.Commentf("%s", t.name))
		if !t.ok {
			c.Check(set.Len(), check.Equals, 0)
			continue
		}
		l := set.Samples()
		c.Assert(l, check.HasLen, 1)
		c.Check(l[0].Name, check.Equals, t.smp)
		c.Check(l[0].Group(), check.Equals, t.group)
		got := l[0].R1
		if t.mate == 2 {
			got = l[0].R2
		}
		c.Check(got, check.Equals, t.name)
	}
}

func (s *S) TestGrouping(c *check.C) {
	var set Set
	for _, n := range []string{sf1BotR2, kj2TopR1, kj1TopR2, sf1BotR1, kj1TopR1, "notes.txt"} {
		set.Add(n)
	}
	c.Check(set.Len(), check.Equals, 3)

	var names []string
	for _, smp := range set.Samples() {
		names = append(names, smp.Name)
	}
	c.Check(names, check.DeepEquals, []string{
		"Sample_ID101-KJ_1_TOP",
		"Sample_ID102-KJ_2_TOP",
		"Sample_ID103-SF_1_BOTTOM",
	})

	l := set.Samples()
	c.Check(l[0].R1, check.Equals, kj1TopR1)
	c.Check(l[0].R2, check.Equals, kj1TopR2)
	c.Check(l[0].Missing(), check.HasLen, 0)
	c.Check(l[1].Missing(), check.DeepEquals, []string{"R2"})
	c.Check(set.Extra, check.HasLen, 0)

	c.Check(set.Add("other/"+kj1TopR1), check.Equals, true)
	c.Check(set.Extra, check.DeepEquals, []string{"other/" + kj1TopR1})
	c.Check(set.Samples()[0].R1, check.Equals, kj1TopR1)
}

func (s *S) TestWrite(c *check.C) {
	var set Set
	for _, n := range []string{kj1TopR1, kj1TopR2, kj2TopR1, sf1BotR1, sf1BotR2} {
		set.Add(n)
	}

	var buf bytes.Buffer
	n, err := set.Write(&buf, Categories[0])
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, 2)
	c.Check(buf.String(), check.Equals,
		"sample,group,short_reads_1,short_reads_2,long_reads,short_reads_platform\n"+
			"Sample_ID101-KJ_1_TOP,KJ_TOP,"+kj1TopR1+","+kj1TopR2+",,ILLUMINA\n"+
			"Sample_ID102-KJ_2_TOP,KJ_TOP,"+kj2TopR1+",,,ILLUMINA\n")

	buf.Reset()
	n, err = set.Write(&buf, Categories[1])
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, 0)
	c.Check(buf.String(), check.Equals, strings.Join(Header, ",")+"\n")
}

func (s *S) TestScanWriteAll(c *check.C) {
	in := c.MkDir()
	for _, n := range []string{kj1TopR1, kj1TopR2, sf1BotR1, "README"} {
		c.Assert(os.WriteFile(filepath.Join(in, n), nil, 0o644), check.Equals, nil)
	}
	c.Assert(os.Mkdir(filepath.Join(in, sf1BotR2), 0o755), check.Equals, nil)

	set, err := Scan(in)
	c.Assert(err, check.Equals, nil)
	c.Check(set.Len(), check.Equals, 2)
	c.Check(set.Samples()[1].R2, check.Equals, "")

	out := filepath.Join(c.MkDir(), "sheets")
	paths, err := set.WriteAll(out)
	c.Assert(err, check.Equals, nil)
	c.Assert(paths, check.HasLen, len(Categories))
	for i, cat := range Categories {
		c.Check(paths[i], check.Equals, filepath.Join(out, cat.Name, cat.Name+"_samplesheet.csv"))
	}
	b, err := os.ReadFile(paths[4])
	c.Assert(err, check.Equals, nil)
	c.Check(strings.Contains(string(b), "Sample_ID103-SF_1_BOTTOM"), check.Equals, false)
	b, err = os.ReadFile(paths[5])
	c.Assert(err, check.Equals, nil)
	c.Check(strings.Contains(string(b), "Sample_ID103-SF_1_BOTTOM,SF_BOTTOM,"+filepath.Join(in, sf1BotR1)+",,,ILLUMINA\n"), check.Equals, true)

	_, err = Scan(filepath.Join(in, "absent"))
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func writeFastq(c *check.C, path string, reads int) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for i := 0; i < reads; i++ {
		_, err := gz.Write([]byte("@read" + strings.Repeat("x", i) + "\nACGTACGT\n+\nIIIIIIII\n"))
		c.Assert(err, check.Equals, nil)
	}
	c.Assert(gz.Close(), check.Equals, nil)
	c.Assert(os.WriteFile(path, buf.Bytes(), 0o644), check.Equals, nil)
}

func (s *S) TestCheckPairs(c *check.C) {
	dir := c.MkDir()
	r1 := filepath.Join(dir, kj1TopR1)
	r2 := filepath.Join(dir, kj1TopR2)
	writeFastq(c, r1, 3)
	writeFastq(c, r2, 3)

	n, err := CountReads(r1)
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, 3)

	p, err := CheckPairs(&Sample{Name: "a", R1: r1, R2: r2})
	c.Assert(err, check.Equals, nil)
	c.Check(p.Matched(), check.Equals, true)

	writeFastq(c, r2, 2)
	p, err = CheckPairs(&Sample{Name: "a", R1: r1, R2: r2})
	c.Assert(err, check.Equals, nil)
	c.Check(p.R1, check.Equals, 3)
	c.Check(p.R2, check.Equals, 2)
	c.Check(p.Matched(), check.Equals, false)

	p, err = CheckPairs(&Sample{Name: "a", R1: r1})
	c.Assert(err, check.Equals, nil)
	c.Check(p.Matched(), check.Equals, false)

	bad := filepath.Join(dir, "bad.fastq.gz")
	c.Assert(os.WriteFile(bad, []byte("not gzip"), 0o644), check.Equals, nil)
	_, err = CountReads(bad)
	c.Check(err, check.ErrorMatches, `reading ".*bad.fastq.gz": .*`)
}
