package gtstore

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/pfx"
)

// maxGroups is the hard cap of spec.md §3.2 invariant 4: a group mask must
// fit in one byte.
const maxGroups = 8

// GroupSpec describes one AddGroup call, per spec.md §4.2. The zero value
// with All set to false, Names empty, and Predicate nil is nonsensical and
// will simply match no samples.
type GroupSpec struct {
	All       bool
	Names     []string
	Predicate SamplePredicate
}

// AllSamplesGroup is the sentinel spec.md §4.2 calls "all samples".
func AllSamplesGroup() GroupSpec { return GroupSpec{All: true} }

// NamesGroup builds a GroupSpec from an explicit sample-name list.
func NamesGroup(names ...string) GroupSpec { return GroupSpec{Names: names} }

// PredicateGroup builds a GroupSpec from a predicate over sample attributes.
func PredicateGroup(p SamplePredicate) GroupSpec { return GroupSpec{Predicate: p} }

// PredicateParser parses the caller's predicate expression language. Its
// grammar is deliberately unspecified here (spec.md §1 lists it as an
// external collaborator); gtstore only ever calls Parse and then later
// Test on the result.
type PredicateParser interface {
	Parse(expr string) (SamplePredicate, error)
}

// ResolveGroupSpec implements the dispatch table of spec.md §6.5: a
// filesystem path to a line-delimited name list, the exact string ":"
// followed by inline comma-separated names, or (prefixed by "?", or any
// string that is neither a readable path nor a ":"-form) a predicate
// expression handed to pp.
func ResolveGroupSpec(spec string, pp PredicateParser) (GroupSpec, error) {
	switch {
	case strings.HasPrefix(spec, ":"):
		names := splitNonEmpty(spec[1:], ",")
		return NamesGroup(names...), nil

	case strings.HasPrefix(spec, "?"):
		if pp == nil {
			return GroupSpec{}, pfx.Err(&predicateUnavailableError{})
		}
		pred, err := pp.Parse(spec[1:])
		if err != nil {
			return GroupSpec{}, pfx.Err(err)
		}
		return PredicateGroup(pred), nil

	default:
		if names, err := readNameListFile(spec); err == nil {
			return NamesGroup(names...), nil
		}
		if pp == nil {
			return GroupSpec{}, pfx.Err(&predicateUnavailableError{})
		}
		pred, err := pp.Parse(spec)
		if err != nil {
			return GroupSpec{}, pfx.Err(err)
		}
		return PredicateGroup(pred), nil
	}
}

func readNameListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type predicateUnavailableError struct{}

func (e *predicateUnavailableError) Error() string {
	return "gtstore: a predicate expression was given but no PredicateParser was supplied"
}

// groupMask tracks the per-sample-row membership bitmask (spec.md §3.1)
// while groups are being declared, before Prepare computes the compact
// selected-sample arrays.
type groupMask struct {
	mask  []byte // one byte per sample row, OR of all matching group bits
	count int    // number of groups declared so far
	cap   int    // groups allowed before TooManyGroups fires; <= maxGroups
}

func newGroupMask(nSamples int) *groupMask {
	return &groupMask{mask: make([]byte, nSamples), cap: maxGroups}
}

// setCap lowers the group cap below the structural maximum of 8 (spec.md
// §3.2 invariant 4, which bounds the mask to one byte regardless of this
// setting). Must be called before any AddGroup; deployments that want to
// budget group-mask bits more tightly than the structural maximum use
// this to fail fast on the (n+1)th AddGroup instead of the 9th.
func (g *groupMask) setCap(n int) error {
	if n < 1 || n > maxGroups {
		return fmt.Errorf("gtstore: group cap %d out of range [1,%d]", n, maxGroups)
	}
	if g.count > 0 {
		return fmt.Errorf("gtstore: group cap must be set before any AddGroup call")
	}
	g.cap = n
	return nil
}

// apply ORs spec's bit (1<<count) into every matching row, then increments
// count. Returns the new group's index, or an error if the cap is exceeded.
func (g *groupMask) apply(matches []bool) (int, error) {
	if g.count >= g.cap {
		return 0, &TooManyGroups{}
	}
	bit := byte(1) << uint(g.count)
	for i, m := range matches {
		if m {
			g.mask[i] |= bit
		}
	}
	idx := g.count
	g.count++
	return idx, nil
}
