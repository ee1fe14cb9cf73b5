//go:build !cgo

package gtstore

// Without cgo, fall back to the pure-Go modernc.org/sqlite driver. Slower
// than the cgo driver but has no C toolchain dependency. Mirrors
// bgen/variantindex_openbgicnogo.go exactly, including the pragma tuning.

import (
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"
