package gtstore

import (
	"io"

	"github.com/carbocation/pfx"
)

// Reader is the single-cohort reader of spec.md §4.2: it produces
// (site, haplotype-bits) pairs filtered by region, BED, and sample subset.
type Reader struct {
	store *Store

	mask *groupMask

	region   *Region
	startRow int64 // -1 means unset

	bed        BedOverlapper
	bedExclude bool

	prepared bool
	samples  []int  // source sample index for each output column position
	groupOf  []byte // per-output-sample group mask byte
	header   *Header

	// scan cursor state
	curOffset     int64
	regionOffsets []int64
	regionPos     int
}

// NewReader binds a Reader to store, per spec.md §4.2's construction step.
func NewReader(store *Store) *Reader {
	return &Reader{
		store:    store,
		mask:     newGroupMask(store.samples.Len()),
		startRow: -1,
	}
}

// SetGroupCap lowers the group cap below the structural maximum of 8.
// Must be called before any AddGroup.
func (r *Reader) SetGroupCap(n int) error {
	return r.mask.setCap(n)
}

// AddGroup appends one sample group, spec.md §4.2. Returns the new group's
// index g. Fails with TooManyGroups once the group cap (8 unless lowered by
// SetGroupCap) is reached, in which case the group is not added.
func (r *Reader) AddGroup(spec GroupSpec) (int, error) {
	matches := r.store.samples.matches(spec)
	idx, err := r.mask.apply(matches)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

// SetRegion constrains subsequent reads to one contig, optionally bounded.
// Setting a region clears any previously-set row-start, per spec.md §4.2's
// "at most one of region / row-start is active at a time".
func (r *Reader) SetRegion(region string) error {
	reg, err := ParseRegion(r.store.Header, region)
	if err != nil {
		return err
	}
	r.region = &reg
	r.startRow = -1
	r.regionOffsets = nil
	r.regionPos = 0
	return nil
}

// SetStart constrains subsequent reads to begin at row-id rowID, clearing
// any previously-set region.
func (r *Reader) SetStart(rowID int64) {
	r.startRow = rowID
	r.region = nil
	r.regionOffsets = nil
	r.regionPos = 0
}

// SetBed attaches a BED-interval filter: a site is kept iff
// overlap(intervals, contig, pos, pos+rlen) XOR exclude is true.
func (r *Reader) SetBed(overlapper BedOverlapper, exclude bool) {
	r.bed = overlapper
	r.bedExclude = exclude
}

// Prepare computes the selected-sample arrays and output header, per
// spec.md §4.2. It is idempotent and is called lazily by Read on first
// use, but callers that need the output header up front (e.g. to
// synthesize it once for a MultiReader) may call it explicitly.
func (r *Reader) Prepare() error {
	if r.prepared {
		return nil
	}

	if r.mask.count == 0 {
		if _, err := r.AddGroup(AllSamplesGroup()); err != nil {
			return err
		}
	}

	var samples []int
	var groupOf []byte
	for i, m := range r.mask.mask {
		if m != 0 {
			samples = append(samples, i)
			groupOf = append(groupOf, m)
		}
	}
	r.samples = samples
	r.groupOf = groupOf

	cols := make([]int, 0, 2*len(samples))
	for _, s := range samples {
		cols = append(cols, 2*s, 2*s+1)
	}
	r.store.matrix.subsetColumns(cols)

	r.header = buildOutputHeader(r.store.Header, r.sampleNames())

	switch {
	case r.region != nil:
		offsets, err := r.store.index.queryRegion(r.region.RID, r.region.Beg, regionEndOrMax(r.region))
		if err != nil {
			return &UnderlyingIO{Cause: err}
		}
		r.regionOffsets = offsets
		r.regionPos = 0
	case r.startRow >= 0:
		off, ok, err := r.store.index.offsetForRow(r.startRow)
		if err != nil {
			return &UnderlyingIO{Cause: err}
		}
		if !ok {
			r.curOffset = -1 // immediate end of stream
		} else {
			r.curOffset = off
		}
	default:
		r.curOffset = r.store.variants.headerBytes
	}

	r.prepared = true
	return nil
}

func regionEndOrMax(r *Region) int {
	if r.End < 0 {
		return 1 << 62
	}
	return r.End
}

func (r *Reader) sampleNames() []string {
	names := make([]string, len(r.samples))
	for i, s := range r.samples {
		names[i] = r.store.samples.Row(s).Name
	}
	return names
}

// Samples returns the selected sample indices in output-column order,
// after Prepare.
func (r *Reader) Samples() []int { return r.samples }

// GroupMasks returns the per-output-sample group mask bytes, after
// Prepare.
func (r *Reader) GroupMasks() []byte { return r.groupOf }

// Header returns the synthesized output header, after Prepare.
func (r *Reader) Header() *Header { return r.header }

// Read returns the next (site, haplotype-bits) pair restricted to the
// selected samples, spec.md §4.2's five-step algorithm. EndOfStream signals
// normal termination.
func (r *Reader) Read() (*Site, []byte, []byte, error) {
	if !r.prepared {
		if err := r.Prepare(); err != nil {
			return nil, nil, nil, err
		}
	}

	for {
		site, err := r.nextSite()
		if err != nil {
			return nil, nil, nil, err
		}
		if site == nil {
			return nil, nil, nil, EndOfStream
		}

		if _, ok := site.InfoRowID(); !ok {
			return nil, nil, nil, &FormatError{Context: "site is missing required _row info field"}
		}

		if r.bed != nil {
			ov, err := r.bed.Overlap(r.contigName(site.RID), site.Pos, site.Pos+site.RLen)
			if err != nil {
				return nil, nil, nil, &UnderlyingIO{Cause: pfx.Err(err)}
			}
			if ov == r.bedExclude {
				continue
			}
		}

		a0, a1, err := r.store.matrix.readRow(site.RowID)
		if err != nil {
			return nil, nil, nil, err
		}
		return site, a0, a1, nil
	}
}

func (r *Reader) contigName(rid int) string {
	if rid < 0 || rid >= len(r.store.Header.Contigs) {
		return ""
	}
	return r.store.Header.Contigs[rid].Name
}

// nextSite pulls the next raw site record honoring whichever scan mode
// (full, row-start, or region) Prepare selected. Returns (nil, nil) at
// end of stream.
func (r *Reader) nextSite() (*Site, error) {
	if r.region != nil {
		if r.regionPos >= len(r.regionOffsets) {
			return nil, nil
		}
		off := r.regionOffsets[r.regionPos]
		r.regionPos++
		site, _, err := r.store.variants.readAt(off)
		if err != nil {
			return nil, &UnderlyingIO{Cause: err}
		}
		return site, nil
	}

	if r.curOffset < 0 {
		return nil, nil
	}
	site, next, err := r.store.variants.readAt(r.curOffset)
	if err == io.EOF {
		r.curOffset = -1
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.curOffset = next
	return site, nil
}

// gtCode maps a combined 2-bit genotype code (a1<<1|a0) to the
// target record's typed-byte GT convention, spec.md §4.2: 00->REF,
// 01->first ALT, 10->missing, 11->second-ALT, each shifted left by one to
// leave the phasing bit clear.
func gtCode(a0, a1 byte) byte {
	switch (a1 << 1) | a0 {
	case 0b00:
		return (0 + 1) << 1
	case 0b01:
		return (1 + 1) << 1
	case 0b10:
		return 0 << 1
	case 0b11:
		return (2 + 1) << 1
	}
	return 0
}
