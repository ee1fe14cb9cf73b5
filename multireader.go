package gtstore

// MultiReader is the k-way merging reader of spec.md §4.3: it owns N
// single-cohort Readers, each with one pending slot, and produces a single
// coordinate-sorted stream with allele harmonization and allele-count
// annotation.
type MultiReader struct {
	children []*Reader
	pending  []pendingSlot

	groupCount int

	noGT  bool
	setAC bool

	filter     FilterFunc
	filterUser interface{}

	prepared bool
	header   *Header

	sampleIdx []sampleRef // per output-sample-position (child, sourceSampleIndex)
	groupOf   []byte      // per output-sample-position group mask byte

	// scratch, reused across ReadOne calls
	mergedA0 []byte
	mergedA1 []byte
}

type sampleRef struct {
	child int
	index int
}

type pendingSlot struct {
	site *Site
	a0   []byte
	a1   []byte
	full bool
}

// FilterFunc is the optional per-record filter callback of spec.md §4.3
// step 8. Returning true discards the record.
type FilterFunc func(rec *OutputRecord, user interface{}) bool

// NewMultiReader constructs a MultiReader over one Reader per child store.
// Each Reader should be freshly constructed (NewReader(store)) and not yet
// Prepared; MultiReader calls Prepare on each during its own Prepare.
func NewMultiReader(children ...*Reader) *MultiReader {
	return &MultiReader{
		children: children,
		pending:  make([]pendingSlot, len(children)),
	}
}

// SetNoGT suppresses FORMAT/sample-column synthesis, spec.md §6.4's NO_GT
// flag.
func (m *MultiReader) SetNoGT(v bool) { m.noGT = v }

// SetComputeAC enables AN/AC (and per-group AN/AC) computation, spec.md
// §6.4's SET_AC flag.
func (m *MultiReader) SetComputeAC(v bool) { m.setAC = v }

// SetFilter installs the optional per-record filter callback. Installing
// one forces the AN/AC tally on every record even without
// SetComputeAC(true), since the callback's an/ac/groupAN/groupAC
// arguments presuppose those values exist (spec.md §4.3 step 8; mirrors
// original_source/bgt.c's `(bm->flag & BGT_F_SET_AC) || bm->filter_func`
// gate in bgtm_read_core).
func (m *MultiReader) SetFilter(f FilterFunc, user interface{}) {
	m.filter = f
	m.filterUser = user
}

// SetGroupCap forwards to every child Reader's SetGroupCap, lowering the
// group cap below the structural maximum of 8. Must be called before any
// AddGroup.
func (m *MultiReader) SetGroupCap(n int) error {
	for _, c := range m.children {
		if err := c.SetGroupCap(n); err != nil {
			return err
		}
	}
	return nil
}

// AddGroup forwards to every child Reader, spec.md §4.3's AddGroup. All
// children must accept the group (in practice they always do, since the
// cap is shared and enforced identically on every child); if any child
// rejects it, the call fails while the children before it keep the group
// applied — callers should treat a failure here as fatal to the
// MultiReader, since the children are then desynchronized.
func (m *MultiReader) AddGroup(spec GroupSpec) (int, error) {
	var idx int
	for i, c := range m.children {
		g, err := c.AddGroup(spec)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			idx = g
		}
	}
	m.groupCount++
	return idx, nil
}

// Prepare calls Prepare on every child and computes the combined
// sample-index table, group table, and synthesized output header, per
// spec.md §4.3.
func (m *MultiReader) Prepare() error {
	if m.prepared {
		return nil
	}

	for _, c := range m.children {
		if err := c.Prepare(); err != nil {
			return err
		}
	}

	if len(m.children) > 0 {
		base := m.children[0].store.Header.Contigs
		for _, c := range m.children[1:] {
			if !sameContigs(base, c.store.Header.Contigs) {
				return &FormatError{Context: "child stores declare diverging contig dictionaries"}
			}
		}
	}

	var sampleIdx []sampleRef
	var groupOf []byte
	var names []string
	for ci, c := range m.children {
		for si, srcIdx := range c.Samples() {
			sampleIdx = append(sampleIdx, sampleRef{child: ci, index: srcIdx})
			groupOf = append(groupOf, c.GroupMasks()[si])
			names = append(names, c.store.samples.Row(srcIdx).Name)
		}
	}
	m.sampleIdx = sampleIdx
	m.groupOf = groupOf

	var baseHeader *Header
	if len(m.children) > 0 {
		baseHeader = m.children[0].store.Header
	} else {
		baseHeader = &Header{}
	}
	m.header = buildMultiHeader(baseHeader, names, m.groupCount, m.noGT)

	m.mergedA0 = make([]byte, 2*len(sampleIdx))
	m.mergedA1 = make([]byte, 2*len(sampleIdx))

	m.prepared = true
	return nil
}

func sameContigs(a, b []ContigInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Length != b[i].Length {
			return false
		}
	}
	return true
}

// Header returns the synthesized output header, after Prepare.
func (m *MultiReader) Header() *Header { return m.header }

// fillPending pulls the next (site, bits) into every empty pending slot.
func (m *MultiReader) fillPending() error {
	for i, c := range m.children {
		if m.pending[i].full {
			continue
		}
		site, a0, a1, err := c.Read()
		if err == EndOfStream {
			continue
		}
		if err != nil {
			return err
		}
		m.pending[i] = pendingSlot{site: site, a0: a0, a1: a1, full: true}
	}
	return nil
}

// ReadOne produces the next merged output record, spec.md §4.3's ReadOne.
// Returns EndOfStream when every pending slot is empty and stays empty.
func (m *MultiReader) ReadOne() (*OutputRecord, error) {
	if !m.prepared {
		if err := m.Prepare(); err != nil {
			return nil, err
		}
	}

	for {
		if err := m.fillPending(); err != nil {
			return nil, err
		}

		chosen := -1
		for i := range m.pending {
			if !m.pending[i].full {
				continue
			}
			if chosen < 0 || compareSites(m.pending[i].site, m.pending[chosen].site) < 0 {
				chosen = i
			}
		}
		if chosen < 0 {
			return nil, EndOfStream
		}

		chosenSite := m.pending[chosen].site
		maxAlleles := len(chosenSite.Alleles)
		for i := range m.pending {
			if i == chosen || !m.pending[i].full {
				continue
			}
			if samePosition(m.pending[i].site, chosenSite) {
				if n := len(m.pending[i].site.Alleles); n > maxAlleles {
					maxAlleles = n
				}
			}
		}

		out := &Site{
			RID:     chosenSite.RID,
			Pos:     chosenSite.Pos,
			RLen:    chosenSite.RLen,
			Alleles: append([]Allele(nil), chosenSite.Alleles...),
		}
		hasSecondALT := maxAlleles > 2
		if hasSecondALT {
			out.Alleles = append(out.Alleles, Allele("<M>"))
		}

		rec := &OutputRecord{Site: out, Samples: m.outputSampleNames()}
		if refLen := len(out.Ref()); out.RLen != refLen {
			rec.End = out.Pos + out.RLen
		}

		off := 0
		for i := range m.children {
			n := len(m.children[i].Samples())
			dst0 := m.mergedA0[2*off : 2*(off+n)]
			dst1 := m.mergedA1[2*off : 2*(off+n)]
			if m.pending[i].full && samePosition(m.pending[i].site, chosenSite) {
				copy(dst0, m.pending[i].a0)
				copy(dst1, m.pending[i].a1)
				m.pending[i].full = false
			} else {
				for j := range dst0 {
					dst0[j] = 0
					dst1[j] = 1
				}
			}
			off += n
		}

		if m.setAC || m.filter != nil {
			rec.AN, rec.AC = tallyAN(m.mergedA0, m.mergedA1, hasSecondALT)
			if m.groupCount > 1 {
				rec.GroupAN, rec.GroupAC = tallyGroupAN(m.mergedA0, m.mergedA1, m.groupOf, m.groupCount, hasSecondALT)
			}
		}

		if m.filter != nil && m.filter(rec, m.filterUser) {
			continue
		}

		if !m.noGT {
			rec.GT = formatGTBlock(m.mergedA0, m.mergedA1)
		}

		return rec, nil
	}
}

func (m *MultiReader) outputSampleNames() []string {
	names := make([]string, len(m.sampleIdx))
	for i, ref := range m.sampleIdx {
		names[i] = m.children[ref.child].store.samples.Row(ref.index).Name
	}
	return names
}
