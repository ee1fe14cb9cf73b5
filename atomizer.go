package gtstore

import "sort"

// Atom is a normalized, position-anchored single-variant decomposition of
// one ALT of a possibly-complex site, spec.md §3.1/§4.4.
type Atom struct {
	RID  int
	Pos  int
	RLen int
	Ref  Allele
	Alt  Allele

	// anum is the source-ALT index (1-based among Alleles[1:]) this atom
	// was generated from, before duplicate-collapsing. After collapsing it
	// is meaningless for a representative atom that absorbed several
	// source ALTs; use GT instead.
	anum int

	// GT holds, per sample*ploidy slot, the translated code: 0 (not this
	// allele), 1 (is this allele), 2 (missing), 3 (overlapping other).
	GT []byte
}

// ploidy is fixed at 2 throughout, per spec.md's haplotype-column model.
const ploidy = 2

// Atomize decomposes site into its representative atoms, spec.md §4.4.
// a0, a1 are the site's full-width (2*S) genotype bit-planes.
func Atomize(site *Site, a0, a1 []byte) ([]Atom, error) {
	ref := site.Ref()
	alts := site.Alt()
	nSamples := len(a0) / ploidy

	var raw []Atom

	perAlt, havePerAlt := site.CIGARInfo()
	var perAltCigars []string
	if havePerAlt {
		perAltCigars = splitPerAltCIGARs(perAlt)
	}

	for i, alt := range alts {
		anum := i + 1

		if alt.Symbolic() || site.RLen != len(ref) {
			raw = append(raw, Atom{RID: site.RID, Pos: site.Pos, RLen: site.RLen, Ref: ref, Alt: alt, anum: anum})
			continue
		}

		var ops []cigarOp
		var err error
		switch {
		case havePerAlt && i < len(perAltCigars):
			ops, err = parseCIGAR(perAltCigars[i])
			if err != nil {
				return nil, err
			}
		case len(ref) == len(alt):
			ops = trivialCIGAR(len(ref))
		default:
			ops = heuristicCIGAR(len(ref), len(alt))
		}

		atoms := walkCIGAR(site.RID, site.Pos, string(ref), string(alt), ops, anum)
		raw = append(raw, atoms...)
	}

	sort.SliceStable(raw, func(i, j int) bool {
		return compareAtoms(&raw[i], &raw[j]) < 0
	})

	eq := make([]int, len(raw))
	for k := range raw {
		eq[k] = k
		for j := 0; j < k; j++ {
			if compareAtoms(&raw[j], &raw[k]) == 0 {
				eq[k] = eq[j]
				break
			}
		}
	}

	// Stable compaction: representatives (eq[k]==k) are kept in their
	// sorted relative order and duplicates are dropped. Grounded on
	// original_source/atomic.c's bcf_atom_gen_at single-pass compaction.
	reps := make([]Atom, 0, len(raw))
	repIndexOf := make(map[int]int, len(raw))
	for k := range raw {
		if eq[k] == k {
			repIndexOf[k] = len(reps)
			reps = append(reps, raw[k])
		}
	}

	for k := range reps {
		reps[k].GT = make([]byte, nSamples*ploidy)
	}

	for k, a := range raw {
		repK := repIndexOf[eq[k]]
		rep := &reps[repK]

		// Build tr[0..A-1] for this representative by scanning all raw
		// atoms that map to it (eq[i]==eq[k]) and all that overlap it.
		if k != eq[k] {
			continue
		}
		trArr := make([]byte, len(alts)+1)
		for i := range raw {
			if eq[i] == eq[k] {
				trArr[raw[i].anum] = 1
			} else if overlaps(&raw[i], &a) {
				trArr[raw[i].anum] = 3
			}
		}

		for s := 0; s < nSamples; s++ {
			for p := 0; p < ploidy; p++ {
				idx := s*ploidy + p
				c := decodeAlleleIndex(a0[idx], a1[idx])
				if c < 0 {
					rep.GT[idx] = 2
				} else if c < len(trArr) {
					rep.GT[idx] = trArr[c]
				}
			}
		}
	}

	return reps, nil
}

// decodeAlleleIndex maps a haplotype's 2-bit code to a source allele index:
// 0=REF, 1=first ALT, -1=missing. The "second-or-higher ALT" sentinel (code
// 11) is reported as allele index 2, matching the combined-code convention
// of spec.md §3.1 for sites with more than one ALT. The 2-bit code cannot
// tell ALTs beyond the second apart, so they all map to index 2.
func decodeAlleleIndex(a0, a1 byte) int {
	switch (a1 << 1) | a0 {
	case 0b00:
		return 0
	case 0b01:
		return 1
	case 0b10:
		return -1
	case 0b11:
		return 2
	}
	return -1
}

func overlaps(a, b *Atom) bool {
	return a.Pos < b.Pos+b.RLen && b.Pos < a.Pos+a.RLen
}

// walkCIGAR implements spec.md §4.4 step 2.
func walkCIGAR(rid, pos int, ref, alt string, ops []cigarOp, anum int) []Atom {
	var atoms []Atom
	x, y := 0, 0
	for _, op := range ops {
		switch op.Op {
		case 'M', '=', 'X':
			for j := 0; j < op.Len; j++ {
				if ref[x+j] != alt[y+j] {
					atoms = append(atoms, Atom{
						RID: rid, Pos: pos + x + j, RLen: 1,
						Ref: Allele(ref[x+j : x+j+1]), Alt: Allele(alt[y+j : y+j+1]),
						anum: anum,
					})
				}
			}
			x += op.Len
			y += op.Len
		case 'I':
			atoms = append(atoms, Atom{
				RID: rid, Pos: pos + x - 1, RLen: 1,
				Ref: Allele(ref[x-1 : x]),
				Alt: Allele(ref[x-1:x]) + Allele(alt[y:y+op.Len]),
				anum: anum,
			})
			y += op.Len
		case 'D':
			atoms = append(atoms, Atom{
				RID: rid, Pos: pos + x - 1, RLen: op.Len + 1,
				Ref:  Allele(ref[x-1 : x+op.Len]),
				Alt:  Allele(ref[x-1 : x]),
				anum: anum,
			})
			x += op.Len
		}
	}
	return atoms
}

// compareAtoms implements the (rid, pos, rlen, ref, alt) order of spec.md
// §4.4 step 3.
func compareAtoms(a, b *Atom) int {
	switch {
	case a.RID < b.RID:
		return -1
	case a.RID > b.RID:
		return 1
	}
	switch {
	case a.Pos < b.Pos:
		return -1
	case a.Pos > b.Pos:
		return 1
	}
	switch {
	case a.RLen < b.RLen:
		return -1
	case a.RLen > b.RLen:
		return 1
	}
	switch {
	case a.Ref < b.Ref:
		return -1
	case a.Ref > b.Ref:
		return 1
	}
	switch {
	case a.Alt < b.Alt:
		return -1
	case a.Alt > b.Alt:
		return 1
	}
	return 0
}
