package compat

import (
	"path/filepath"
	"testing"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/settings"
)

// trackingStore wraps a map store and records writes so tests can
// assert that already-migrated values are left untouched.
type trackingStore struct {
	data   map[string]string
	writes int
}

func newTrackingStore() *trackingStore {
	return &trackingStore{data: make(map[string]string)}
}

func (s *trackingStore) Get(key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *trackingStore) Set(key, value string) error {
	s.data[key] = value
	s.writes++
	return nil
}

func (s *trackingStore) MultiSet(pairs [][2]string) error {
	for _, p := range pairs {
		if err := s.Set(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func TestConvertTimeTo24hLegacyDate(t *testing.T) {
	store := newTrackingStore()
	store.data[model.KeyStartTime24h] = `"Tue Jan 01 2030 15:30:00 GMT-0500"`

	if err := ConvertTimeTo24h(store, model.KeyStartTime24h, 900); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	var got int
	ok, err := settings.GetJSON(store, model.KeyStartTime24h, &got)
	if err != nil || !ok {
		t.Fatalf("failed to read converted value: ok=%v err=%v", ok, err)
	}
	if got != 1530 {
		t.Errorf("converted value = %d, want 1530", got)
	}
}

func TestConvertTimeTo24hLegacyDateWithoutZone(t *testing.T) {
	store := newTrackingStore()
	store.data[model.KeyEndTime24h] = `"Tue Jan 01 2030 08:05:00"`

	if err := ConvertTimeTo24h(store, model.KeyEndTime24h, 2200); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	var got int
	if ok, _ := settings.GetJSON(store, model.KeyEndTime24h, &got); !ok {
		t.Fatal("converted value missing")
	}
	if got != 805 {
		t.Errorf("converted value = %d, want 805", got)
	}
}

func TestConvertTimeTo24hAlreadyMigrated(t *testing.T) {
	store := newTrackingStore()
	store.data[model.KeyStartTime24h] = "900"

	if err := ConvertTimeTo24h(store, model.KeyStartTime24h, 900); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	// A plain number is already in the target format; no write occurs.
	if store.writes != 0 {
		t.Errorf("expected no writes for migrated value, got %d", store.writes)
	}
	if store.data[model.KeyStartTime24h] != "900" {
		t.Errorf("stored value changed: %q", store.data[model.KeyStartTime24h])
	}
}

func TestConvertTimeTo24hNumericString(t *testing.T) {
	store := newTrackingStore()
	store.data[model.KeyStartTime24h] = `"2130"`

	if err := ConvertTimeTo24h(store, model.KeyStartTime24h, 900); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	var got int
	if ok, _ := settings.GetJSON(store, model.KeyStartTime24h, &got); !ok {
		t.Fatal("converted value missing")
	}
	if got != 2130 {
		t.Errorf("converted value = %d, want 2130", got)
	}
}

func TestConvertTimeTo24hAbsentGetsDefault(t *testing.T) {
	store := newTrackingStore()

	if err := ConvertTimeTo24h(store, model.KeyEndTime24h, 2200); err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	var got int
	if ok, _ := settings.GetJSON(store, model.KeyEndTime24h, &got); !ok {
		t.Fatal("default was not written")
	}
	if got != 2200 {
		t.Errorf("default = %d, want 2200", got)
	}
}

func TestConvertTimeTo24hMalformedLeftAlone(t *testing.T) {
	store := newTrackingStore()
	store.data[model.KeyStartTime24h] = `"complete nonsense"`

	if err := ConvertTimeTo24h(store, model.KeyStartTime24h, 900); err != nil {
		t.Fatalf("malformed value must not fail startup: %v", err)
	}

	if store.writes != 0 {
		t.Errorf("malformed value should be left alone, got %d writes", store.writes)
	}
	if store.data[model.KeyStartTime24h] != `"complete nonsense"` {
		t.Errorf("stored value changed: %q", store.data[model.KeyStartTime24h])
	}
}

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Init(); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCleanStoredSubjects(t *testing.T) {
	database := setupTestDB(t)

	// Insert raw rows bypassing SaveQuote's cleanup so dirty legacy
	// values actually reach the table.
	mustExec(t, database, `INSERT INTO quotations (quoteText, author, subjects) VALUES (?, ?, ?)`,
		"q1", "a1", ` "Freedom" ,(Hope)`)
	mustExec(t, database, `INSERT INTO quotations (quoteText, author, subjects) VALUES (?, ?, ?)`,
		"q2", "a2", "Balance, Wisdom")

	if err := CleanStoredSubjects(database); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	quote, err := database.GetQuoteByText("q1")
	if err != nil || quote == nil {
		t.Fatalf("failed to load q1: %v", err)
	}
	if quote.Subjects != "Freedom, Hope" {
		t.Errorf("q1 subjects = %q, want %q", quote.Subjects, "Freedom, Hope")
	}

	quote, err = database.GetQuoteByText("q2")
	if err != nil || quote == nil {
		t.Fatalf("failed to load q2: %v", err)
	}
	if quote.Subjects != "Balance, Wisdom" {
		t.Errorf("clean row was modified: %q", quote.Subjects)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	database := setupTestDB(t)
	store := newTrackingStore()
	store.data[model.KeyStartTime24h] = `"Tue Jan 01 2030 09:00:00"`

	for i := 0; i < 2; i++ {
		if err := Run(store, database); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	var start, end int
	if ok, _ := settings.GetJSON(store, model.KeyStartTime24h, &start); !ok || start != 900 {
		t.Errorf("start = %d, want 900", start)
	}
	if ok, _ := settings.GetJSON(store, model.KeyEndTime24h, &end); !ok || end != 2200 {
		t.Errorf("end default = %d, want 2200", end)
	}
}

func mustExec(t *testing.T, database *db.DB, query string, args ...any) {
	t.Helper()
	if _, err := database.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
}
