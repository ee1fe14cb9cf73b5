package gtstore

// OutputRecord is a fully populated output variant, spec.md §3.1: a site
// plus haplotype bits restricted to selected samples, a FORMAT block, and
// the AN/AC(/per-group) info annotations.
type OutputRecord struct {
	Site *Site

	// End is set (to Site.Pos+Site.RLen) only when the merged REF length
	// differs from the reported rlen; 0 otherwise.
	End int

	AN      int
	AC      []int // one or two values: first-ALT count, and <M>-count if present
	GroupAN []int // length groupCount, index g-1 => AN for group g

	// GroupAC carries the same per-group shape as AC: len(AC) values per
	// group, flattened group-major. Group g's slice is
	// GroupAC[(g-1)*w : (g-1)*w+w] where w = len(AC), mirroring
	// original_source/bgt.c's bgtm_read_core, which writes AC{g} with the
	// same b->n_allele-1 width as the top-level AC (gac[0]=first-ALT
	// count, gac[1]=<M>-count).
	GroupAC []int

	// GT holds one typed genotype byte per selected haplotype column,
	// spec.md §4.2's fixed mapping table. len(GT) == 2*len(Samples).
	GT []byte

	Samples []string // output column sample names, in order
}

// buildOutputHeader synthesizes the single-cohort Reader's output header,
// spec.md §4.2 Prepare: contig lines copied, sample column headers
// appended in selection order. No additional info/format declarations are
// added here — those are MultiReader-specific (spec.md §4.3, §6.3).
func buildOutputHeader(source *Header, sampleNames []string) *Header {
	return &Header{
		Contigs:     append([]ContigInfo(nil), source.Contigs...),
		Infos:       append([]FieldDef(nil), source.Infos...),
		Formats:     append([]FieldDef(nil), source.Formats...),
		SampleNames: sampleNames,
	}
}

// symbolicALTs is the fixed structural-variant ALT symbol set declared in
// every synthesized MultiReader header, spec.md §6.3.
var symbolicALTs = []string{"M", "DEL", "DUP", "INS", "INV", "DUP:TANDEM", "DEL:ME", "INS:ME"}

// buildMultiHeader synthesizes the MultiReader output header, spec.md
// §4.3/§6.3: always-present AC/AN, per-group AC{g}/AN{g} for g in
// 1..groupCount (at most 8),
// END, FORMAT GT, the symbolic ALT declarations, the union-taken-as-child-0
// contig list, and sample column headers (omitted when noGT is set).
func buildMultiHeader(base *Header, sampleNames []string, groupCount int, noGT bool) *Header {
	infos := []FieldDef{
		{ID: "AC", Number: "A", Type: "Integer", Description: "allele count"},
		{ID: "AN", Number: "1", Type: "Integer", Description: "total allele count"},
		{ID: "END", Number: "1", Type: "Integer", Description: "end position of the record"},
	}
	for g := 1; g <= groupCount && g <= maxGroups; g++ {
		gs := groupSuffix(g)
		infos = append(infos,
			FieldDef{ID: "AC" + gs, Number: "A", Type: "Integer", Description: "allele count, group " + gs},
			FieldDef{ID: "AN" + gs, Number: "1", Type: "Integer", Description: "total allele count, group " + gs},
		)
	}
	for _, sym := range symbolicALTs {
		infos = append(infos, FieldDef{ID: "<" + sym + ">", Number: "0", Type: "String", Description: "symbolic ALT"})
	}

	formats := []FieldDef{{ID: "GT", Number: "1", Type: "String", Description: "genotype"}}

	names := sampleNames
	if noGT {
		names = nil
	}

	return &Header{
		Contigs:     append([]ContigInfo(nil), base.Contigs...),
		Infos:       infos,
		Formats:     formats,
		SampleNames: names,
	}
}

func groupSuffix(g int) string {
	const digits = "12345678"
	return string(digits[g-1])
}

// formatGTBlock maps 2*|samples| haplotype codes through spec.md §4.2's
// fixed table, producing one typed genotype byte per haplotype column.
func formatGTBlock(a0, a1 []byte) []byte {
	out := make([]byte, len(a0))
	for i := range a0 {
		out[i] = gtCode(a0[i], a1[i])
	}
	return out
}

// tallyAN computes AN/AC for spec.md §8 invariant 2: AN = 2*|samples| -
// missing_count, where missing codes have combined value 2 (binary 10).
// hasSecondALT controls whether AC carries one or two values (the <M>
// symbolic-allele case of spec.md §4.3 step 6).
func tallyAN(a0, a1 []byte, hasSecondALT bool) (an int, ac []int) {
	var cnt [4]int
	for i := range a0 {
		cnt[(a1[i]<<1)|a0[i]]++
	}
	an = cnt[0] + cnt[1] + cnt[3]
	if hasSecondALT {
		return an, []int{cnt[1], cnt[3]}
	}
	return an, []int{cnt[1] + cnt[3]}
}

// tallyGroupAN computes per-group AN/AC, spec.md §4.3 step 7. groupOf has
// one entry per selected haplotype-pair's *sample* (not per haplotype
// column); it is expanded to per-column here. Per the "dense vs sparse"
// design note (spec.md §9), the direct per-sample loop is used below the
// threshold and the 256-entry table above it; both paths are required to
// agree, which TestTallyGroupANDenseSparseEquivalence (outputrecord_test.go)
// checks through tallyGroupANForced.
const denseGroupThreshold = 512

func tallyGroupAN(a0, a1 []byte, groupOf []byte, groupCount int, hasSecondALT bool) (an, ac []int) {
	return tallyGroupANForced(a0, a1, groupOf, groupCount, hasSecondALT, len(groupOf) < denseGroupThreshold)
}

// tallyGroupANForced is tallyGroupAN with the dense/sparse choice forced,
// rather than threshold-selected, so tests can check both paths agree on
// the same input regardless of sample count.
func tallyGroupANForced(a0, a1 []byte, groupOf []byte, groupCount int, hasSecondALT, forceDense bool) (an, ac []int) {
	width := 1
	if hasSecondALT {
		width = 2
	}
	an = make([]int, groupCount)
	ac = make([]int, groupCount*width)

	// acSlot picks the ac[] offset a code-1 ("first-ALT") or code-3
	// ("<M>") haplotype contributes to for group b: two distinct slots
	// when the site carries a second ALT, collapsed into one otherwise
	// (mirroring tallyAN's own hasSecondALT handling).
	acSlot := func(b, code int) int {
		if hasSecondALT && code == 3 {
			return b*width + 1
		}
		return b * width
	}

	nSamples := len(groupOf)
	if forceDense {
		for s := 0; s < nSamples; s++ {
			g := groupOf[s]
			if g == 0 {
				continue
			}
			for p := 0; p < 2; p++ {
				i := 2*s + p
				code := int((a1[i] << 1) | a0[i])
				for b := 0; b < groupCount; b++ {
					if g&(1<<uint(b)) == 0 {
						continue
					}
					if code == 1 || code == 3 {
						an[b]++
						ac[acSlot(b, code)]++
					} else if code != 2 {
						an[b]++
					}
				}
			}
		}
		return an, ac
	}

	// Sparse path: precompute, for every possible groupMaskByte and the
	// four per-haplotype codes, a 256-entry table of per-group
	// an/ac1/ac3 contributions, then reduce.
	type contribution struct {
		an, ac1, ac3 [8]int
	}
	tableFor := func(code byte) [256]contribution {
		var t [256]contribution
		for mask := 0; mask < 256; mask++ {
			for b := 0; b < groupCount; b++ {
				if mask&(1<<uint(b)) == 0 {
					continue
				}
				if code != 2 {
					t[mask].an[b]++
				}
				switch code {
				case 1:
					t[mask].ac1[b]++
				case 3:
					t[mask].ac3[b]++
				}
			}
		}
		return t
	}
	tables := [4][256]contribution{}
	for code := 0; code < 4; code++ {
		tables[code] = tableFor(byte(code))
	}

	for s := 0; s < nSamples; s++ {
		g := groupOf[s]
		if g == 0 {
			continue
		}
		for p := 0; p < 2; p++ {
			i := 2*s + p
			code := (a1[i] << 1) | a0[i]
			contrib := tables[code][g]
			for b := 0; b < groupCount; b++ {
				an[b] += contrib.an[b]
				if hasSecondALT {
					ac[b*width] += contrib.ac1[b]
					ac[b*width+1] += contrib.ac3[b]
				} else {
					ac[b*width] += contrib.ac1[b] + contrib.ac3[b]
				}
			}
		}
	}
	return an, ac
}
