package gtstore

import "testing"

// TestParseAlleleKeyNormalization covers spec.md §8 E5's three examples.
func TestParseAlleleKeyNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want AlleleKey
	}{
		{"chr1:100:ACGT:ACCT", AlleleKey{Chrom: "chr1", Pos: 101, RLen: 1, Alt: "C"}},
		{"chr1:100:1:T", AlleleKey{Chrom: "chr1", Pos: 99, RLen: 1, Alt: "T"}},
		{"chr1:100:ACGT:<DEL>", AlleleKey{Chrom: "chr1", Pos: 99, RLen: 4, Alt: "<DEL>"}},
	}

	for _, c := range cases {
		got, err := ParseAlleleKey(c.in)
		if err != nil {
			t.Fatalf("ParseAlleleKey(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseAlleleKey(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

// TestParseAlleleKeyIdempotent covers spec.md §8 invariant 6.
func TestParseAlleleKeyIdempotent(t *testing.T) {
	inputs := []string{"chr1:100:ACGT:ACCT", "chr1:100:1:T", "chrX:5:GG:G"}
	for _, in := range inputs {
		k1, err := ParseAlleleKey(in)
		if err != nil {
			t.Fatalf("ParseAlleleKey(%q): %v", in, err)
		}
		k2, err := ParseAlleleKey(k1.String())
		if err != nil {
			t.Fatalf("ParseAlleleKey(%q) [reparse]: %v", k1.String(), err)
		}
		if k1 != k2 {
			t.Errorf("not idempotent: %+v != %+v", k1, k2)
		}
	}
}

func TestParseAlleleKeyMalformed(t *testing.T) {
	cases := []string{"chr1:100:ACGT", "chr1:abc:A:T", "chr1:100:A:", ":100:A:T"}
	for _, in := range cases {
		if _, err := ParseAlleleKey(in); err == nil {
			t.Errorf("ParseAlleleKey(%q): expected error, got none", in)
		}
	}
}
