package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
)

// Store is the key/value persistence contract. Values are strings;
// structured values are JSON-encoded by callers before storing.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	MultiSet(pairs [][2]string) error
}

// SQLiteStore keeps settings in the settings table alongside the
// quotation table, one JSON-encoded string value per key.
type SQLiteStore struct {
	db *db.DB
}

func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) MultiSet(pairs [][2]string) error {
	for _, pair := range pairs {
		if err := s.Set(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

// GetJSON decodes a stored value into out. Absent keys report false
// without touching out.
func GetJSON(store Store, key string, out any) (bool, error) {
	value, ok, err := store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes and stores a value under key.
func SetJSON(store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	return store.Set(key, string(data))
}

// Load builds the typed settings view. Missing or malformed stored
// values fall back to defaults with a logged warning; bad stored data
// never fails startup.
func Load(store Store) model.Settings {
	s := model.DefaultSettings()

	loadValue(store, model.KeyAllowNotifications, &s.AllowNotifications)
	loadValue(store, model.KeyStartTime24h, &s.StartTime24h)
	loadValue(store, model.KeyEndTime24h, &s.EndTime24h)
	loadValue(store, model.KeySpacing, &s.Spacing)
	loadValue(store, model.KeyQuery, &s.Query)
	loadValue(store, model.KeyNotificationQuery, &s.NotificationQuery)

	var filter string
	if loadValue(store, model.KeyFilter, &filter) && model.FilterKind(filter).Valid() {
		s.Filter = model.FilterKind(filter)
	}
	var notifFilter string
	if loadValue(store, model.KeyNotificationFilter, &notifFilter) && model.FilterKind(notifFilter).Valid() {
		s.NotificationFilter = model.FilterKind(notifFilter)
	}

	return s
}

// Save persists the typed settings view back to the store.
func Save(store Store, s model.Settings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{model.KeyAllowNotifications, s.AllowNotifications},
		{model.KeyStartTime24h, s.StartTime24h},
		{model.KeyEndTime24h, s.EndTime24h},
		{model.KeySpacing, s.Spacing},
		{model.KeyQuery, s.Query},
		{model.KeyFilter, string(s.Filter)},
		{model.KeyNotificationQuery, s.NotificationQuery},
		{model.KeyNotificationFilter, string(s.NotificationFilter)},
	}

	var encoded [][2]string
	for _, p := range pairs {
		data, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("failed to encode setting %q: %w", p.key, err)
		}
		encoded = append(encoded, [2]string{p.key, string(data)})
	}
	return store.MultiSet(encoded)
}

func loadValue(store Store, key string, out any) bool {
	ok, err := GetJSON(store, key, out)
	if err != nil {
		slog.Warn("ignoring malformed stored setting", "key", key, "error", err)
		return false
	}
	return ok
}
