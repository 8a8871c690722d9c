package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"tobewise-cli/internal/compat"
	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/remote"
	"tobewise-cli/internal/settings"
	"tobewise-cli/internal/util"
)

// Syncer reconciles the local quotation table against the remote
// source-of-truth collection. Sync is at-least-once with no rollback:
// each insert/update is its own atomic unit and an abort keeps whatever
// already committed.
type Syncer struct {
	db         *db.DB
	store      settings.Store
	source     remote.Source
	collection string
}

func New(database *db.DB, store settings.Store, source remote.Source, collection string) *Syncer {
	return &Syncer{db: database, store: store, source: source, collection: collection}
}

// fixedFields maps remote field names that land in registry columns.
// Anything else becomes a dynamically added nullable text column.
var fixedFields = map[string]bool{
	"id": true, "quoteText": true, "author": true, "contributedBy": true,
	"subjects": true, "authorLink": true, "videoLink": true,
	"favorite": true, "deleted": true, "createdAt": true,
}

// Run performs a full sync: compat migration, fetch, schema growth,
// batch dedup, then per-record insert or field-level reconcile.
func (s *Syncer) Run(ctx context.Context) error {
	slog.Info("sync starting", "collection", s.collection)

	if err := compat.Run(s.store, s.db); err != nil {
		return fmt.Errorf("compat migration failed: %w", err)
	}

	docs, err := s.source.FetchAll(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to fetch remote collection: %w", err)
	}
	slog.Info("sync fetched remote collection", "documents", len(docs))

	existingColumns, err := s.db.TableColumns()
	if err != nil {
		return fmt.Errorf("failed to read local columns: %w", err)
	}
	known := make(map[string]bool, len(existingColumns))
	for _, c := range existingColumns {
		known[c] = true
	}

	var incoming []model.Quotation
	extras := make(map[string]map[string]any)

	for _, doc := range docs {
		// Grow the schema before any insert can trip over a missing
		// column. A failure here aborts the sync.
		for key := range doc.Fields {
			if known[key] {
				continue
			}
			if err := s.db.EnsureColumn(key); err != nil {
				return fmt.Errorf("schema evolution failed: %w", err)
			}
			known[key] = true
		}

		quote, extra := docToQuotation(doc)
		if quote.QuoteText == "" {
			slog.Warn("skipping remote document without quote text", "doc", doc.ID)
			continue
		}
		incoming = append(incoming, quote)
		if len(extra) > 0 {
			extras[dedupKey(quote)] = extra
		}
	}

	// Later duplicates in the same batch are dropped; identity is the
	// (quoteText, author) pair.
	deduped := util.DedupeQuotes(incoming)
	if dropped := len(incoming) - len(deduped); dropped > 0 {
		slog.Info("sync dropped in-batch duplicates", "dropped", dropped)
	}

	var inserted, updated, failed int
	for _, quote := range deduped {
		changed, err := s.reconcile(quote, extras[dedupKey(quote)])
		if err != nil {
			slog.Warn("failed to reconcile quotation", "author", quote.Author, "error", err)
			failed++
			continue
		}
		switch changed {
		case reconcileInserted:
			inserted++
		case reconcileUpdated:
			updated++
		}
	}

	slog.Info("sync completed",
		"incoming", len(deduped), "inserted", inserted, "updated", updated, "failed", failed)
	return nil
}

type reconcileResult int

const (
	reconcileUnchanged reconcileResult = iota
	reconcileInserted
	reconcileUpdated
)

// reconcile inserts a new row or diffs an existing one field by field,
// updating only what differs. Sync never overwrites the user-local
// favorite/deleted state of an existing row.
func (s *Syncer) reconcile(quote model.Quotation, extra map[string]any) (reconcileResult, error) {
	exists, err := s.db.QuoteExists(quote.QuoteText, quote.Author)
	if err != nil {
		return reconcileUnchanged, err
	}

	if !exists {
		if _, err := s.db.SaveQuote(quote); err != nil {
			return reconcileUnchanged, err
		}
		for column, value := range extra {
			if err := s.db.UpdateQuoteField(quote.QuoteText, column, value); err != nil {
				return reconcileInserted, err
			}
		}
		return reconcileInserted, nil
	}

	existing, err := s.db.GetQuoteRowByText(quote.QuoteText)
	if err != nil {
		return reconcileUnchanged, err
	}
	if existing == nil {
		// Matched on text+author but not on text alone; treat as
		// unchanged rather than guessing.
		return reconcileUnchanged, nil
	}

	desired := map[string]any{
		"author":        quote.Author,
		"contributedBy": quote.ContributedBy,
		"subjects":      quote.Subjects,
		"authorLink":    quote.AuthorLink,
		"videoLink":     quote.VideoLink,
	}
	if quote.CreatedAt != nil {
		desired["createdAt"] = *quote.CreatedAt
	}
	for column, value := range extra {
		desired[column] = value
	}

	result := reconcileUnchanged
	for column, value := range desired {
		if fieldEqual(existing[column], value) {
			continue
		}
		if err := s.db.UpdateQuoteField(quote.QuoteText, column, value); err != nil {
			return result, err
		}
		result = reconcileUpdated
	}
	return result, nil
}

// docToQuotation maps a remote document onto the fixed quotation
// fields, normalizing subjects and forcing the new-row defaults for
// favorite/deleted. Unmapped fields come back separately.
func docToQuotation(doc model.Document) (model.Quotation, map[string]any) {
	q := model.Quotation{
		QuoteText:     stringField(doc.Fields, "quoteText"),
		Author:        util.CleanString(stringField(doc.Fields, "author")),
		ContributedBy: stringField(doc.Fields, "contributedBy"),
		AuthorLink:    stringField(doc.Fields, "authorLink"),
		VideoLink:     stringField(doc.Fields, "videoLink"),
		Favorite:      false,
		Deleted:       false,
	}

	switch subjects := doc.Fields["subjects"].(type) {
	case []any:
		var tags []string
		for _, s := range subjects {
			tags = append(tags, fmt.Sprint(s))
		}
		q.Subjects = util.JoinSubjects(tags)
	case string:
		q.Subjects = util.NormalizeSubjects(subjects)
	}

	if created := stringField(doc.Fields, "createdAt"); created != "" {
		q.CreatedAt = &created
	}

	extra := make(map[string]any)
	for key, value := range doc.Fields {
		if !fixedFields[key] {
			extra[key] = fmt.Sprint(value)
		}
	}
	return q, extra
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func dedupKey(q model.Quotation) string {
	return q.QuoteText + "\x00" + q.Author
}

// fieldEqual compares a stored column value against the desired one.
// Stored values come back from SQLite with driver-dependent types, so
// both sides are compared in string form.
func fieldEqual(stored, desired any) bool {
	if stored == nil {
		return desired == nil || fmt.Sprint(desired) == ""
	}
	if b, ok := stored.([]byte); ok {
		stored = string(b)
	}
	return fmt.Sprint(stored) == fmt.Sprint(desired)
}
