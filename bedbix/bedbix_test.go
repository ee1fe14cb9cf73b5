package bedbix

import "github.com/carbocation/gtstore"

// This file exists to keep Overlapper pinned to gtstore's BedOverlapper
// shape without gtstore importing bix directly; Reader.SetBed's own
// filtering behavior is exercised in gtstore's reader_test.go against a
// stub implementation, since a real test here would need an on-disk
// bgzip+tabix fixture.
var _ gtstore.BedOverlapper = (*Overlapper)(nil)
