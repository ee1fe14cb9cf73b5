//go:build cgo

package gtstore

// If cgo is enabled, use the mattn/go-sqlite3 cgo driver for the .csi
// index. It is faster than the modernc driver. Mirrors
// bgen/variantindex_openbgicgo.go exactly.

import (
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriverName = "sqlite3"
