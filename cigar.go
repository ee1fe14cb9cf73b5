package gtstore

import (
	"strings"
)

// cigarOp is one parsed CIGAR operation, e.g. "12M", "1I", "3D".
type cigarOp struct {
	Len int
	Op  byte // 'M', '=', 'X', 'I', 'D'
}

// parseCIGAR splits a CIGAR string like "1M2I5M" into its operations.
func parseCIGAR(s string) ([]cigarOp, error) {
	var ops []cigarOp
	n := 0
	hasDigits := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			hasDigits = true
			continue
		}
		if !hasDigits {
			return nil, &FormatError{Context: "malformed CIGAR: missing length before operation " + string(c)}
		}
		switch c {
		case 'M', '=', 'X', 'I', 'D':
			ops = append(ops, cigarOp{Len: n, Op: c})
		default:
			return nil, &FormatError{Context: "malformed CIGAR: unsupported operation " + string(c)}
		}
		n = 0
		hasDigits = false
	}
	if hasDigits {
		return nil, &FormatError{Context: "malformed CIGAR: trailing length with no operation"}
	}
	return ops, nil
}

// trivialCIGAR returns the single-op "{len}M" CIGAR used when REF and ALT
// share length, spec.md §4.4 step 1b.
func trivialCIGAR(length int) []cigarOp {
	return []cigarOp{{Len: length, Op: 'M'}}
}

// heuristicCIGAR builds the "1M, then I/D by length delta, then {rest}M"
// CIGAR of spec.md §4.4 step 1c.
func heuristicCIGAR(refLen, altLen int) []cigarOp {
	delta := altLen - refLen
	ops := []cigarOp{{Len: 1, Op: 'M'}}
	var rest int
	if delta > 0 {
		ops = append(ops, cigarOp{Len: delta, Op: 'I'})
		rest = refLen - 1
	} else if delta < 0 {
		ops = append(ops, cigarOp{Len: -delta, Op: 'D'})
		rest = altLen - 1
	} else {
		rest = refLen - 1
	}
	if rest > 0 {
		ops = append(ops, cigarOp{Len: rest, Op: 'M'})
	}
	return ops
}

// splitPerAltCIGARs splits a per-site CIGAR info string, spec.md §4.4 step
// 1a: comma-separated, one CIGAR string per ALT allele in ALT order.
func splitPerAltCIGARs(info string) []string {
	return strings.Split(info, ",")
}
