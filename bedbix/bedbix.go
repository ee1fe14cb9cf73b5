// Package bedbix adapts a tabix-indexed BED file to gtstore's
// BedOverlapper interface via github.com/carbocation/bix.
package bedbix

import (
	"io"

	"github.com/carbocation/bix"
	"github.com/carbocation/pfx"
)

// locus implements bix's query-interval interface, mirroring
// carbocation-genomisc's TabixLocus.
type locus struct {
	chrom      string
	start, end int
}

func (l locus) Chrom() string { return l.chrom }
func (l locus) Start() uint32 { return uint32(l.start) }
func (l locus) End() uint32   { return uint32(l.end) }

// Overlapper queries a tabix-indexed, bgzip-compressed BED file for
// interval overlaps. It implements gtstore.BedOverlapper without gtstore
// importing bix directly.
type Overlapper struct {
	tbx *bix.Bix
}

// Open opens a local bgzip+tabix BED file (path.gz with path.gz.tbi).
func Open(path string) (*Overlapper, error) {
	tbx, err := bix.New(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return &Overlapper{tbx: tbx}, nil
}

// Close releases the underlying tabix index and file handles.
func (o *Overlapper) Close() error {
	return o.tbx.Close()
}

// Overlap reports whether [beg, end) on chrom intersects any interval in
// the BED file.
func (o *Overlapper) Overlap(chrom string, beg, end int) (bool, error) {
	vals, err := o.tbx.Query(locus{chrom: chrom, start: beg, end: end})
	if err != nil {
		return false, pfx.Err(err)
	}

	_, err = vals.Next()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, pfx.Err(err)
	}
	return true, nil
}
