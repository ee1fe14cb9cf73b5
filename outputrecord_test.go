package gtstore

import "testing"

func TestTallyAN(t *testing.T) {
	a0 := []byte{0, 1, 0, 0}
	a1 := []byte{0, 0, 0, 1}

	an, ac := tallyAN(a0, a1, false)
	if an != 3 {
		t.Errorf("AN = %d, want 3", an)
	}
	if len(ac) != 1 || ac[0] != 1 {
		t.Errorf("AC = %v, want [1]", ac)
	}
}

func TestTallyANWithSecondALT(t *testing.T) {
	// codes: 00, 01, 11, 10
	a0 := []byte{0, 1, 1, 0}
	a1 := []byte{0, 0, 1, 1}

	an, ac := tallyAN(a0, a1, true)
	if an != 3 {
		t.Errorf("AN = %d, want 3", an)
	}
	if len(ac) != 2 || ac[0] != 1 || ac[1] != 1 {
		t.Errorf("AC = %v, want [1 1]", ac)
	}
}

// TestTallyGroupANDenseSparseEquivalence covers spec.md §9's dense/sparse
// equivalence contract: both code paths must produce identical AC_g/AN_g
// for the same input.
func TestTallyGroupANDenseSparseEquivalence(t *testing.T) {
	const nSamples = 20
	groupOf := make([]byte, nSamples)
	a0 := make([]byte, 2*nSamples)
	a1 := make([]byte, 2*nSamples)
	for i := 0; i < nSamples; i++ {
		groupOf[i] = byte(1 << uint(i%3))
		a0[2*i] = byte(i % 2)
		a1[2*i] = byte((i / 2) % 2)
		a0[2*i+1] = byte((i + 1) % 2)
		a1[2*i+1] = byte((i / 3) % 2)
	}

	for _, hasSecondALT := range []bool{false, true} {
		anDense, acDense := tallyGroupANForced(a0, a1, groupOf, 3, hasSecondALT, true)
		anSparse, acSparse := tallyGroupANForced(a0, a1, groupOf, 3, hasSecondALT, false)

		for g := 0; g < 3; g++ {
			if anDense[g] != anSparse[g] {
				t.Errorf("hasSecondALT=%v AN[%d]: dense=%d sparse=%d", hasSecondALT, g, anDense[g], anSparse[g])
			}
		}
		if len(acDense) != len(acSparse) {
			t.Fatalf("hasSecondALT=%v AC length: dense=%d sparse=%d", hasSecondALT, len(acDense), len(acSparse))
		}
		for i := range acDense {
			if acDense[i] != acSparse[i] {
				t.Errorf("hasSecondALT=%v AC[%d]: dense=%d sparse=%d", hasSecondALT, i, acDense[i], acSparse[i])
			}
		}
	}
}

// TestTallyGroupANSecondALTWidth covers spec.md §4.3 step 7's requirement
// that GroupAC carry the same (first-ALT, <M>-count) pair per group as the
// top-level AC, not a single summed scalar: a group containing both a
// first-ALT and a second-ALT (<M>) haplotype must report both counts
// distinctly, mirroring original_source/bgt.c's gac[0]/gac[1] pair.
func TestTallyGroupANSecondALTWidth(t *testing.T) {
	// sample0: hap0=code1 (first ALT), hap1=code0 (REF)
	// sample1: hap0=code3 (<M>),       hap1=code0 (REF)
	a0 := []byte{1, 0, 1, 0}
	a1 := []byte{0, 0, 1, 0}
	groupOf := []byte{1, 1} // both samples in group 1

	an, ac := tallyGroupANForced(a0, a1, groupOf, 1, true, true)
	if an[0] != 4 {
		t.Fatalf("AN[0] = %d, want 4", an[0])
	}
	if len(ac) != 2 || ac[0] != 1 || ac[1] != 1 {
		t.Fatalf("AC for group 1 = %v, want [1 1]", ac)
	}
}
