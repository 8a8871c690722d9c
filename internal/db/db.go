package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tobewise-cli/internal/model"
	"tobewise-cli/internal/util"
)

// DB owns the long-lived handle to the embedded quotation store. Every
// operation is its own unit of work; there is no multi-statement
// transaction spanning operations.
type DB struct {
	*sqlx.DB
}

func New(dbPath string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Init creates the quotation and settings tables if absent. Safe to run
// on every startup.
func (db *DB) Init() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveQuote inserts a quotation and returns the assigned id. Author and
// subjects are cleaned of stray quote/parenthesis characters before
// persisting; other fields are stored as given.
func (db *DB) SaveQuote(q model.Quotation) (int64, error) {
	author := util.CleanString(q.Author)
	subjects := util.NormalizeSubjects(q.Subjects)

	result, err := db.Exec(`
		INSERT INTO quotations (quoteText, author, contributedBy, subjects, authorLink, videoLink, favorite, deleted, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.QuoteText, author, q.ContributedBy, subjects, q.AuthorLink, q.VideoLink,
		boolToInt(q.Favorite), boolToInt(q.Deleted), q.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quotation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get quotation id: %w", err)
	}
	return id, nil
}

// EditQuote replaces all mutable fields for the given id. The id and
// createdAt are never touched. A missing row is a hard error.
func (db *DB) EditQuote(id int64, q model.Quotation) error {
	author := util.CleanString(q.Author)
	subjects := util.NormalizeSubjects(q.Subjects)

	result, err := db.Exec(`
		UPDATE quotations
		SET quoteText = ?, author = ?, contributedBy = ?, subjects = ?, authorLink = ?, videoLink = ?, favorite = ?, deleted = ?
		WHERE id = ?
	`, q.QuoteText, author, q.ContributedBy, subjects, q.AuthorLink, q.VideoLink,
		boolToInt(q.Favorite), boolToInt(q.Deleted), id)
	if err != nil {
		return fmt.Errorf("failed to update quotation %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quotation %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// SetFavorite updates only the favorite flag. The zero id is rejected;
// a missing row degrades to false rather than an error, matching the
// toggle call site's graceful-degradation contract.
func (db *DB) SetFavorite(id int64, favorite bool) (bool, error) {
	if id == 0 {
		return false, fmt.Errorf("favorite toggle requires an id: %w", model.ErrInvalidArgument)
	}

	result, err := db.Exec("UPDATE quotations SET favorite = ? WHERE id = ?", boolToInt(favorite), id)
	if err != nil {
		return false, fmt.Errorf("failed to update favorite for %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

// SetDeleted updates only the soft-delete flag. Deleted rows stay in
// the table and can be restored with SetDeleted(id, false).
func (db *DB) SetDeleted(id int64, deleted bool) error {
	if id == 0 {
		return fmt.Errorf("delete toggle requires an id: %w", model.ErrInvalidArgument)
	}

	result, err := db.Exec("UPDATE quotations SET deleted = ? WHERE id = ?", boolToInt(deleted), id)
	if err != nil {
		return fmt.Errorf("failed to update deleted flag for %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quotation %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetQuoteByID returns nil without error when no row matches.
func (db *DB) GetQuoteByID(id int64) (*model.Quotation, error) {
	var q model.Quotation
	err := db.Get(&q, "SELECT "+selectColumns+" FROM quotations WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get quotation %d: %w", id, err)
	}
	return &q, nil
}

// QuoteExists tests the dedup identity: trimmed (quoteText, author).
func (db *DB) QuoteExists(quoteText, author string) (bool, error) {
	var count int
	err := db.Get(&count,
		"SELECT COUNT(*) FROM quotations WHERE quoteText = ? AND author = ?",
		strings.TrimSpace(quoteText), strings.TrimSpace(author))
	if err != nil {
		return false, fmt.Errorf("failed to check quotation existence: %w", err)
	}
	return count > 0, nil
}

// GetQuoteByText fetches a row by its text, the lookup the sync
// reconciler uses when diffing remote documents against local rows.
func (db *DB) GetQuoteByText(quoteText string) (*model.Quotation, error) {
	var q model.Quotation
	err := db.Get(&q, "SELECT "+selectColumns+" FROM quotations WHERE quoteText = ?", quoteText)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get quotation by text: %w", err)
	}
	return &q, nil
}

// GetQuoteRowByText fetches a row as a column->value map, dynamic
// columns included. The sync reconciler diffs against this form since
// the typed struct only carries registry columns.
func (db *DB) GetQuoteRowByText(quoteText string) (map[string]any, error) {
	row := db.QueryRowx("SELECT * FROM quotations WHERE quoteText = ?", quoteText)
	dest := make(map[string]any)
	err := row.MapScan(dest)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get quotation row by text: %w", err)
	}
	return dest, nil
}

// UpdateQuoteField sets a single column for the row matching the given
// text. The column name must come from the column registry; arbitrary
// caller strings are rejected.
func (db *DB) UpdateQuoteField(quoteText, column string, value any) error {
	known, err := db.HasColumn(column)
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("unknown column %q: %w", column, model.ErrInvalidArgument)
	}

	_, err = db.Exec(fmt.Sprintf("UPDATE quotations SET %q = ? WHERE quoteText = ?", column), value, quoteText)
	if err != nil {
		return fmt.Errorf("failed to update column %q: %w", column, err)
	}
	return nil
}

// RemoveQuote hard-deletes a row. Low-level primitive only; the
// user-facing lifecycle soft-deletes via SetDeleted.
func (db *DB) RemoveQuote(id int64) error {
	if _, err := db.Exec("DELETE FROM quotations WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to remove quotation %d: %w", id, err)
	}
	return nil
}

// CountAll counts every row, deleted included.
func (db *DB) CountAll() (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM quotations"); err != nil {
		return 0, fmt.Errorf("failed to count quotations: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
