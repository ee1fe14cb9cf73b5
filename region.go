package gtstore

import (
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Region constrains a variant-metadata scan to one contig, optionally
// bounded by a half-open [Beg, End) coordinate range. Region is the parsed,
// validated form of the strings accepted by Reader.SetRegion.
type Region struct {
	RID int
	Beg int // 0-based, inclusive
	End int // 0-based, exclusive; -1 means "to the end of the contig"
}

// ParseRegion parses "chrom", "chrom:beg-end", or "chrom:beg" against the
// header's contig dictionary. beg is taken as 1-based on input (matching
// the textual-record convention) and converted to 0-based internally.
func ParseRegion(h *Header, s string) (Region, error) {
	chrom := s
	begStr, endStr := "", ""

	if i := strings.IndexByte(s, ':'); i >= 0 {
		chrom = s[:i]
		rest := s[i+1:]
		if j := strings.IndexByte(rest, '-'); j >= 0 {
			begStr, endStr = rest[:j], rest[j+1:]
		} else {
			begStr = rest
		}
	}

	rid := h.ContigIndex(chrom)
	if rid < 0 {
		return Region{}, &BadRegion{Region: s, Cause: pfx.Err(&unknownContigError{chrom})}
	}

	reg := Region{RID: rid, Beg: 0, End: -1}
	if begStr != "" {
		beg, err := strconv.Atoi(begStr)
		if err != nil {
			return Region{}, &BadRegion{Region: s, Cause: pfx.Err(err)}
		}
		reg.Beg = beg - 1
	}
	if endStr != "" {
		end, err := strconv.Atoi(endStr)
		if err != nil {
			return Region{}, &BadRegion{Region: s, Cause: pfx.Err(err)}
		}
		reg.End = end
	} else if begStr != "" {
		// A single position was given: treat it as a one-base region.
		reg.End = reg.Beg + 1
	}

	if reg.Beg < 0 {
		return Region{}, &BadRegion{Region: s, Cause: pfx.Err(&negativeCoordinateError{})}
	}

	return reg, nil
}

// Contains reports whether the (rid, pos, end) footprint overlaps the
// region.
func (r Region) Contains(rid, pos, end int) bool {
	if rid != r.RID {
		return false
	}
	if pos < r.Beg {
		// still allow spanning deletions: compare the footprint end, not just pos
	}
	if end <= r.Beg {
		return false
	}
	if r.End >= 0 && pos >= r.End {
		return false
	}
	return true
}

type unknownContigError struct{ chrom string }

func (e *unknownContigError) Error() string { return "unknown contig " + e.chrom }

type negativeCoordinateError struct{}

func (e *negativeCoordinateError) Error() string { return "coordinate resolves to a negative position" }
