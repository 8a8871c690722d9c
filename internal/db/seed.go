package db

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"tobewise-cli/internal/model"
)

// SeedFromJSON imports the bundled default dataset when the table is
// empty. A non-empty table makes this a no-op so reruns never duplicate
// the seed set.
func (db *DB) SeedFromJSON(path string) (int, error) {
	count, err := db.CountAll()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		slog.Debug("seed skipped, table not empty", "rows", count)
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var quotes []model.Quotation
	if err := json.Unmarshal(data, &quotes); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	var imported int
	for _, q := range quotes {
		q.Favorite = false
		q.Deleted = false
		if _, err := db.SaveQuote(q); err != nil {
			slog.Warn("failed to seed quotation", "author", q.Author, "error", err)
			continue
		}
		imported++
	}

	slog.Info("seed import completed", "imported", imported, "total", len(quotes))
	return imported, nil
}
