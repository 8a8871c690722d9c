package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/query"
	"tobewise-cli/internal/settings"
)

func setupExport(t *testing.T) (*Export, *db.DB) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Init(); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	engine := query.New(database, settings.NewSQLiteStore(database))
	return New(engine), database
}

func TestExportAllWritesMarkdownFiles(t *testing.T) {
	exp, database := setupExport(t)

	_, err := database.SaveQuote(model.Quotation{
		QuoteText: "Well begun is half done.",
		Author:    "Aristotle",
		Subjects:  "Beginnings, Top 100",
		Favorite:  true,
	})
	if err != nil {
		t.Fatalf("failed to save quote: %v", err)
	}
	if _, err := database.SaveQuote(model.Quotation{
		QuoteText: "Other quote.", Author: "Someone", Subjects: "Other",
	}); err != nil {
		t.Fatalf("failed to save quote: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	err = exp.ExportAll(Options{
		Directory: dir,
		Token:     model.TokenTop100,
		Filter:    model.FilterSubject,
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 exported file, got %d", len(entries))
	}

	name := entries[0].Name()
	if !strings.HasSuffix(name, ".md") {
		t.Errorf("exported file has no .md suffix: %q", name)
	}
	if !strings.Contains(name, "aristotle") {
		t.Errorf("filename should derive from the author, got %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read exported file: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Error("file does not start with YAML front matter")
	}
	if !strings.Contains(content, "author: Aristotle") {
		t.Errorf("front matter missing author:\n%s", content)
	}
	if !strings.Contains(content, "favorite: true") {
		t.Errorf("front matter missing favorite flag:\n%s", content)
	}
	if !strings.Contains(content, "> Well begun is half done.") {
		t.Errorf("body missing blockquote:\n%s", content)
	}
}

func TestExportAllEmptySelection(t *testing.T) {
	exp, _ := setupExport(t)

	dir := filepath.Join(t.TempDir(), "out")
	err := exp.ExportAll(Options{
		Directory: dir,
		Token:     "Nothing",
		Filter:    model.FilterSubject,
	})
	if err != nil {
		t.Fatalf("empty selection must not fail: %v", err)
	}

	// No matches, no directory.
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("export directory created despite empty selection")
	}
}

func TestSafeFilename(t *testing.T) {
	name := safeFilename(model.Quotation{
		ID:        7,
		Author:    "Ralph Waldo Emerson",
		QuoteText: "To be yourself in a world that is constantly trying to make you something else is the greatest accomplishment.",
	})

	if !strings.HasSuffix(name, "-7.md") {
		t.Errorf("filename should end with the id, got %q", name)
	}
	if len(name) > 60+len("-7.md") {
		t.Errorf("filename base not truncated: %q", name)
	}

	// Degenerate input still yields a usable name.
	name = safeFilename(model.Quotation{ID: 9})
	if name != "quotation-9.md" {
		t.Errorf("fallback filename = %q", name)
	}
}
