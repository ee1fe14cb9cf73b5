package gtstore

import (
	"strings"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

// coordIndex is the external "coordinate-sorted index" collaborator of
// spec.md §6.1 (the .csi artifact), giving "seek to record N" and
// "queryRegion" random access over the .bcf variant-metadata stream. It is
// implemented the same way the teacher implements its own SQLite-backed
// .bgi index (bgen/variantindex.go): one row per site, keyed by (rid, pos).
type coordIndex struct {
	db *sqlx.DB
}

type csiRow struct {
	RID    int   `db:"rid"`
	Pos    int   `db:"pos"`
	End    int   `db:"end_pos"`
	RowID  int64 `db:"row_id"`
	Offset int64 `db:"block_offset"`
}

// openCoordIndex opens (or, if absent, creates with an empty Site table)
// the .csi SQLite index at path; rows are added with append. sqliteDriverName is supplied by
// csiindex_cgo.go / csiindex_nogo.go so the caller never has to know which
// build tag is active.
func openCoordIndex(path string) (*coordIndex, error) {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	db, err := sqlx.Connect(sqliteDriverName, dsn)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if sqliteDriverName == "sqlite" {
		// See https://www.rockyourcode.com/til-sqlite-foreign-key-support-with-go/
		if _, err := db.Exec(`PRAGMA journal_mode = OFF; PRAGMA synchronous = OFF; PRAGMA auto_vacuum = NONE;`); err != nil {
			db.Close()
			return nil, pfx.Err(err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS Site (
			rid INTEGER NOT NULL,
			pos INTEGER NOT NULL,
			end_pos INTEGER NOT NULL,
			row_id INTEGER NOT NULL PRIMARY KEY,
			block_offset INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS Site_rid_pos ON Site (rid, pos);
	`); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &coordIndex{db: db}, nil
}

func (c *coordIndex) Close() error { return c.db.Close() }

// append records one site's position and .bcf block offset. Called by the
// ingestion path (out of scope here; exposed so tests can build fixtures).
func (c *coordIndex) append(rid, pos, end int, rowID, offset int64) error {
	_, err := c.db.Exec(`INSERT INTO Site (rid, pos, end_pos, row_id, block_offset) VALUES (?, ?, ?, ?, ?)`,
		rid, pos, end, rowID, offset)
	if err != nil {
		return pfx.Err(err)
	}
	return nil
}

// offsetForRow resolves row N's byte offset into the .bcf stream, the
// "seek to record N" primitive of spec.md §6.1.
func (c *coordIndex) offsetForRow(rowID int64) (int64, bool, error) {
	var row csiRow
	err := c.db.Get(&row, `SELECT block_offset FROM Site WHERE row_id = ?`, rowID)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0, false, nil
		}
		return 0, false, pfx.Err(err)
	}
	return row.Offset, true, nil
}

// queryRegion returns, in row-id (equivalently pos) order, the offsets of
// every site whose [pos, end) footprint overlaps [beg, end).
func (c *coordIndex) queryRegion(rid, beg, end int) ([]int64, error) {
	var rows []csiRow
	err := c.db.Select(&rows, `
		SELECT row_id, block_offset FROM Site
		WHERE rid = ? AND pos < ? AND end_pos > ?
		ORDER BY row_id ASC
	`, rid, end, beg)
	if err != nil {
		return nil, pfx.Err(err)
	}
	offsets := make([]int64, len(rows))
	for i, r := range rows {
		offsets[i] = r.Offset
	}
	return offsets, nil
}

// maxRowID returns the largest known row-id, or -1 if the index is empty.
func (c *coordIndex) maxRowID() (int64, error) {
	var max struct {
		Max *int64 `db:"m"`
	}
	if err := c.db.Get(&max, `SELECT MAX(row_id) AS m FROM Site`); err != nil {
		return -1, pfx.Err(err)
	}
	if max.Max == nil {
		return -1, nil
	}
	return *max.Max, nil
}
