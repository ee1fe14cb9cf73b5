package gtstore

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/carbocation/pfx"
)

// SampleRow is one entry in the sample-metadata table, spec.md §3.1. Each
// sample occupies haplotype columns 2*Index and 2*Index+1 in the genotype
// matrix.
type SampleRow struct {
	Index int
	Name  string
	Attrs map[string]string
}

// SampleTable is the ordered, full-scan-queryable list of samples backing
// a Store's .spl artifact.
type SampleTable struct {
	rows   []SampleRow
	byName map[string]int
}

// Len returns the number of sample rows, S in spec.md's notation.
func (t *SampleTable) Len() int { return len(t.rows) }

// Row returns the sample row at index i.
func (t *SampleTable) Row(i int) SampleRow { return t.rows[i] }

// IndexOf returns the sample index for name, or -1 if not present.
func (t *SampleTable) IndexOf(name string) int {
	if i, ok := t.byName[name]; ok {
		return i
	}
	return -1
}

// openSampleTable parses a .spl file: one line per sample, tab-separated
// fields "name\tkey=value\tkey=value...". Blank lines and lines beginning
// with '#' are skipped. This mirrors the teacher's manual, allocation-light
// field-at-a-time parsing loop (bgen/sample.go's ReadSamples) adapted to a
// line-oriented text format rather than BGEN's length-prefixed binary one.
func openSampleTable(path string) (*SampleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	t := &SampleTable{byName: make(map[string]int)}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		name := fields[0]
		if name == "" {
			continue
		}

		attrs := make(map[string]string, len(fields)-1)
		for _, kv := range fields[1:] {
			if kv == "" {
				continue
			}
			if i := strings.IndexByte(kv, '='); i >= 0 {
				attrs[kv[:i]] = kv[i+1:]
			} else {
				attrs[kv] = ""
			}
		}

		row := SampleRow{Index: len(t.rows), Name: name, Attrs: attrs}
		t.byName[name] = row.Index
		t.rows = append(t.rows, row)
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, pfx.Err(err)
	}

	return t, nil
}

// matches evaluates a GroupSpec against every row, returning a per-row
// boolean membership vector (the union of name-set and predicate, for the
// hybrid form of spec.md §4.2).
func (t *SampleTable) matches(spec GroupSpec) []bool {
	out := make([]bool, len(t.rows))

	if spec.All {
		for i := range out {
			out[i] = true
		}
		return out
	}

	if len(spec.Names) > 0 {
		want := make(map[string]struct{}, len(spec.Names))
		for _, n := range spec.Names {
			want[n] = struct{}{}
		}
		for i, r := range t.rows {
			if _, ok := want[r.Name]; ok {
				out[i] = true
			}
		}
	}

	if spec.Predicate != nil {
		for i, r := range t.rows {
			if out[i] {
				continue
			}
			if spec.Predicate.Test(r.Attrs) {
				out[i] = true
			}
		}
	}

	return out
}
