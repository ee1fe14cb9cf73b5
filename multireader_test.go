package gtstore

import "testing"

// TestMultiReaderAlignedMerge covers spec.md §8 E3: two one-sample stores
// with an identical site merge into one two-column record.
func TestMultiReaderAlignedMerge(t *testing.T) {
	prefixX := buildStore(t, []string{"chr1"}, []string{"X1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{1}, Plane1: []byte{0}}})
	prefixY := buildStore(t, []string{"chr1"}, []string{"Y1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{1}, Plane1: []byte{0}}})

	storeX, err := Open(prefixX)
	if err != nil {
		t.Fatal(err)
	}
	defer storeX.Close()
	storeY, err := Open(prefixY)
	if err != nil {
		t.Fatal(err)
	}
	defer storeY.Close()

	mr := NewMultiReader(NewReader(storeX), NewReader(storeY))
	mr.SetComputeAC(true)

	rec, err := mr.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Samples) != 2 {
		t.Fatalf("expected 2 FORMAT columns, got %d", len(rec.Samples))
	}
	if rec.AN != 2 || len(rec.AC) != 1 || rec.AC[0] != 2 {
		t.Fatalf("AN/AC = %d/%v, want 2/[2]", rec.AN, rec.AC)
	}

	if _, err := mr.ReadOne(); err != EndOfStream {
		t.Fatalf("expected EndOfStream, got %v", err)
	}
}

// TestMultiReaderGroupedMultiAllelicMerge covers spec.md §4.3 steps 6-7
// together: three one-sample stores share a position, one of them
// triallelic (forcing <M> promotion), split across two groups. Each
// group's AC must carry the same (first-ALT, <M>-count) pair as the
// top-level AC rather than a single summed scalar.
func TestMultiReaderGroupedMultiAllelicMerge(t *testing.T) {
	prefixX := buildStore(t, []string{"chr1"}, []string{"X1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{1}, Plane1: []byte{0}}})
	prefixY := buildStore(t, []string{"chr1"}, []string{"Y1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T", "G"}, Plane0: []byte{1}, Plane1: []byte{1}}})
	prefixZ := buildStore(t, []string{"chr1"}, []string{"Z1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{0}, Plane1: []byte{0}}})

	storeX, err := Open(prefixX)
	if err != nil {
		t.Fatal(err)
	}
	defer storeX.Close()
	storeY, err := Open(prefixY)
	if err != nil {
		t.Fatal(err)
	}
	defer storeY.Close()
	storeZ, err := Open(prefixZ)
	if err != nil {
		t.Fatal(err)
	}
	defer storeZ.Close()

	mr := NewMultiReader(NewReader(storeX), NewReader(storeY), NewReader(storeZ))
	mr.SetComputeAC(true)
	if _, err := mr.AddGroup(NamesGroup("X1", "Y1")); err != nil {
		t.Fatal(err)
	}
	if _, err := mr.AddGroup(NamesGroup("Z1")); err != nil {
		t.Fatal(err)
	}

	rec, err := mr.ReadOne()
	if err != nil {
		t.Fatal(err)
	}

	if len(rec.Site.Alleles) != 3 || rec.Site.Alleles[2] != Allele("<M>") {
		t.Fatalf("expected <M> promotion, got alleles %v", rec.Site.Alleles)
	}
	if rec.AN != 6 || len(rec.AC) != 2 || rec.AC[0] != 1 || rec.AC[1] != 1 {
		t.Fatalf("AN/AC = %d/%v, want 6/[1 1]", rec.AN, rec.AC)
	}
	if len(rec.GroupAN) != 2 || rec.GroupAN[0] != 4 || rec.GroupAN[1] != 2 {
		t.Fatalf("GroupAN = %v, want [4 2]", rec.GroupAN)
	}
	if len(rec.GroupAC) != 4 {
		t.Fatalf("GroupAC length = %d, want 4 (2 groups * width 2)", len(rec.GroupAC))
	}
	if rec.GroupAC[0] != 1 || rec.GroupAC[1] != 1 {
		t.Fatalf("group 1 AC = %v, want [1 1]", rec.GroupAC[0:2])
	}
	if rec.GroupAC[2] != 0 || rec.GroupAC[3] != 0 {
		t.Fatalf("group 2 AC = %v, want [0 0]", rec.GroupAC[2:4])
	}
}

// TestMultiReaderFilterForcesTally covers the gap in spec.md §4.3 step 8:
// installing a filter callback without SetComputeAC(true) must still
// populate AN/AC before invoking it (original_source/bgt.c's
// `(bm->flag & BGT_F_SET_AC) || bm->filter_func` gate in bgtm_read_core).
func TestMultiReaderFilterForcesTally(t *testing.T) {
	prefix := buildStore(t, []string{"chr1"}, []string{"X1", "Y1"},
		[]testSite{
			{Pos: 10, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{0, 0, 0, 0}, Plane1: []byte{0, 0, 0, 0}},
			{Pos: 20, RLen: 1, Alleles: []string{"G", "C"}, Plane0: []byte{1, 0, 0, 0}, Plane1: []byte{0, 0, 0, 0}},
		})

	store, err := Open(prefix)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var sawAC []int
	mr := NewMultiReader(NewReader(store))
	mr.SetFilter(func(rec *OutputRecord, user interface{}) bool {
		sawAC = rec.AC
		return rec.AC[0] == 0 // discard sites with no ALT observed
	}, nil)

	rec, err := mr.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Site.Pos != 20 {
		t.Fatalf("expected the AC=0 site at pos 10 to be filtered out, got pos %d", rec.Site.Pos)
	}
	if rec.AN == 0 || rec.AC == nil {
		t.Fatalf("filter-forced tally missing on the emitted record: AN=%d AC=%v", rec.AN, rec.AC)
	}
	if sawAC == nil {
		t.Fatal("filter callback was invoked without AC populated")
	}
}

// TestMultiReaderDisjointMerge covers spec.md §8 E4: two one-sample stores
// with sites at disjoint positions produce two ordered records, each with
// the absent child's sample filled as missing.
func TestMultiReaderDisjointMerge(t *testing.T) {
	prefixX := buildStore(t, []string{"chr1"}, []string{"X1"},
		[]testSite{{Pos: 99, RLen: 1, Alleles: []string{"A", "T"}, Plane0: []byte{0}, Plane1: []byte{0}}})
	prefixY := buildStore(t, []string{"chr1"}, []string{"Y1"},
		[]testSite{{Pos: 200, RLen: 1, Alleles: []string{"G", "C"}, Plane0: []byte{0}, Plane1: []byte{0}}})

	storeX, err := Open(prefixX)
	if err != nil {
		t.Fatal(err)
	}
	defer storeX.Close()
	storeY, err := Open(prefixY)
	if err != nil {
		t.Fatal(err)
	}
	defer storeY.Close()

	mr := NewMultiReader(NewReader(storeX), NewReader(storeY))

	rec1, err := mr.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if rec1.Site.Pos != 99 {
		t.Fatalf("first record pos = %d, want 99", rec1.Site.Pos)
	}
	if rec1.GT[2] != 0 || rec1.GT[3] != 0 {
		t.Fatalf("first record Y1 genotype = %v, want missing (0,0)", rec1.GT[2:4])
	}

	rec2, err := mr.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if rec2.Site.Pos != 200 {
		t.Fatalf("second record pos = %d, want 200", rec2.Site.Pos)
	}
	if rec2.GT[0] != 0 || rec2.GT[1] != 0 {
		t.Fatalf("second record X1 genotype = %v, want missing (0,0)", rec2.GT[0:2])
	}

	if _, err := mr.ReadOne(); err != EndOfStream {
		t.Fatalf("expected EndOfStream, got %v", err)
	}
}
