package gtstore

// BedOverlapper is the opaque BED-interval evaluator capability described
// in spec.md §9: "{overlap(chr,beg,end)→bool}". gtstore holds it by shared
// reference with no ownership of the underlying object; see the bedbix
// package for a concrete bix-backed implementation.
type BedOverlapper interface {
	Overlap(chrom string, beg, end int) (bool, error)
}
