package compat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/settings"
	"tobewise-cli/internal/util"
)

// Layouts older app versions used when they persisted notification
// times as full serialized dates.
var legacyTimeLayouts = []string{
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006 15:04:05",
	time.RFC3339,
	time.ANSIC,
}

// ConvertTimeTo24h normalizes a stored notification time setting.
// Values already stored as plain numbers are left untouched (no write
// occurs). Legacy serialized dates are rewritten as hour*100+minute.
// Absent values get the supplied default. Malformed values are logged
// and left alone; startup never fails on bad stored data.
func ConvertTimeTo24h(store settings.Store, key string, defaultValue int) error {
	stored, ok, err := store.Get(key)
	if err != nil {
		return err
	}

	if !ok {
		return settings.SetJSON(store, key, defaultValue)
	}

	var raw any
	if err := json.Unmarshal([]byte(stored), &raw); err != nil {
		slog.Error("error converting stored time to 24h format", "key", key, "error", err)
		return nil
	}

	switch v := raw.(type) {
	case float64:
		// Already migrated.
		return nil
	case string:
		converted, err := parseLegacyTime(v)
		if err != nil {
			slog.Error("error converting stored time to 24h format", "key", key, "error", err)
			return nil
		}
		return settings.SetJSON(store, key, converted)
	default:
		slog.Error("error converting stored time to 24h format", "key", key,
			"error", fmt.Errorf("unexpected stored type %T", raw))
		return nil
	}
}

func parseLegacyTime(value string) (int, error) {
	// Some legacy builds stored the number itself JSON-encoded as a
	// string.
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}

	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*100 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("unparseable legacy time value %q", value)
}

// CleanStoredSubjects recomputes the cleaned form of every row's
// subjects and writes it back where it changed. Best-effort and
// row-by-row: one bad row never blocks the rest.
func CleanStoredSubjects(database *db.DB) error {
	rows, err := database.Query("SELECT id, subjects FROM quotations")
	if err != nil {
		return fmt.Errorf("failed to list quotations for cleanup: %w", err)
	}
	defer rows.Close()

	type rowSubjects struct {
		id       int64
		subjects string
	}
	var all []rowSubjects
	for rows.Next() {
		var r rowSubjects
		var subjects *string
		if err := rows.Scan(&r.id, &subjects); err != nil {
			slog.Warn("failed to scan row during subject cleanup", "error", err)
			continue
		}
		if subjects != nil {
			r.subjects = *subjects
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate quotations for cleanup: %w", err)
	}

	var cleaned int
	for _, r := range all {
		normalized := util.NormalizeSubjects(r.subjects)
		if normalized == r.subjects {
			continue
		}
		if _, err := database.Exec("UPDATE quotations SET subjects = ? WHERE id = ?", normalized, r.id); err != nil {
			slog.Warn("failed to clean subjects for row", "id", r.id, "error", err)
			continue
		}
		cleaned++
	}

	if cleaned > 0 {
		slog.Info("subject cleanup migration applied", "rows", cleaned)
	}
	return nil
}

// Run applies every backward-compatibility routine. Idempotent, called
// on each startup before sync.
func Run(store settings.Store, database *db.DB) error {
	defaults := model.DefaultSettings()
	if err := ConvertTimeTo24h(store, model.KeyStartTime24h, defaults.StartTime24h); err != nil {
		return err
	}
	if err := ConvertTimeTo24h(store, model.KeyEndTime24h, defaults.EndTime24h); err != nil {
		return err
	}
	return CleanStoredSubjects(database)
}
