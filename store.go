package gtstore

import (
	"os"

	"github.com/carbocation/pfx"
)

// Store is an open handle to one on-disk cohort keyed by a filesystem
// prefix, spec.md §3.1/§4.1. Immutable after Open.
type Store struct {
	Prefix string
	Header *Header

	variants *variantStream
	matrix   *genotypeMatrix
	samples  *SampleTable
	index    *coordIndex
}

// Open locates the four artifacts sharing prefix (prefix+".bcf",
// prefix+".csi", prefix+".pbf", prefix+".spl"), reads the header fully into
// memory, and returns an immutable handle. Any missing artifact fails with
// StoreOpenError; header parse errors fail with FormatError. No partial
// open is observable: on any failure, every artifact opened so far is
// closed before returning.
func Open(prefix string) (*Store, error) {
	bcfPath := prefix + ".bcf"
	csiPath := prefix + ".csi"
	pbfPath := prefix + ".pbf"
	splPath := prefix + ".spl"

	for _, artifact := range []string{bcfPath, csiPath, pbfPath, splPath} {
		if _, err := os.Stat(artifact); err != nil {
			return nil, &StoreOpenError{Prefix: prefix, Artifact: artifact, Cause: pfx.Err(err)}
		}
	}

	vs, hdr, err := openVariantStream(bcfPath)
	if err != nil {
		return nil, err
	}

	idx, err := openCoordIndex(csiPath)
	if err != nil {
		vs.Close()
		return nil, &StoreOpenError{Prefix: prefix, Artifact: csiPath, Cause: err}
	}

	gm, err := openGenotypeMatrix(pbfPath)
	if err != nil {
		vs.Close()
		idx.Close()
		return nil, &StoreOpenError{Prefix: prefix, Artifact: pbfPath, Cause: err}
	}

	spl, err := openSampleTable(splPath)
	if err != nil {
		vs.Close()
		idx.Close()
		gm.Close()
		return nil, &StoreOpenError{Prefix: prefix, Artifact: splPath, Cause: err}
	}

	return &Store{
		Prefix:   prefix,
		Header:   hdr,
		variants: vs,
		matrix:   gm,
		samples:  spl,
		index:    idx,
	}, nil
}

// Samples exposes the store's sample-metadata table.
func (s *Store) Samples() *SampleTable { return s.samples }

// Close releases all four artifacts, in a deterministic single pass, per
// spec.md §5.
func (s *Store) Close() error {
	var firstErr error
	if err := s.variants.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.matrix.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
