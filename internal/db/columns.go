package db

import (
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS quotations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    quoteText     TEXT NOT NULL,
    author        TEXT,
    contributedBy TEXT,
    subjects      TEXT,
    authorLink    TEXT,
    videoLink     TEXT,
    favorite      INTEGER DEFAULT 0,
    deleted       INTEGER DEFAULT 0,
    createdAt     TEXT
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// selectColumns lists the fixed quotation columns. Dynamic columns added
// by sync are write-only from the core's point of view, so selects stay
// pinned to the registry instead of SELECT *.
const selectColumns = "id, quoteText, author, contributedBy, subjects, authorLink, videoLink, favorite, deleted, createdAt"

// BaseColumns is the fixed column registry. Sync extends the table
// beyond it, never shrinks it.
var BaseColumns = []string{
	"id", "quoteText", "author", "contributedBy", "subjects",
	"authorLink", "videoLink", "favorite", "deleted", "createdAt",
}

// TableColumns reports the current column set, fixed plus dynamically
// added.
func (db *DB) TableColumns() ([]string, error) {
	rows, err := db.Query("PRAGMA table_info(quotations)")
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func (db *DB) HasColumn(name string) (bool, error) {
	columns, err := db.TableColumns()
	if err != nil {
		return false, err
	}
	for _, c := range columns {
		if c == name {
			return true, nil
		}
	}
	return false, nil
}

// EnsureColumn adds a nullable TEXT column when missing. Idempotent:
// calling it for a present column is a no-op, not an error. Invoked by
// the sync importer when remote documents carry unknown fields.
func (db *DB) EnsureColumn(name string) error {
	exists, err := db.HasColumn(name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE quotations ADD COLUMN %q TEXT", name)); err != nil {
		return fmt.Errorf("failed to add column %q: %w", name, err)
	}
	return nil
}
