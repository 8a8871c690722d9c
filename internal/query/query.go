package query

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/settings"
	"tobewise-cli/internal/util"
)

// Engine resolves query tokens and filter kinds into quotation result
// sets. It owns no state beyond the injected handles; every call is an
// independent unit of work.
type Engine struct {
	db    *db.DB
	store settings.Store
}

func New(database *db.DB, store settings.Store) *Engine {
	return &Engine{db: database, store: store}
}

// Shuffled resolves the token/filter pair and returns matching
// non-deleted rows in fresh random order. The Deleted reserved token
// inverts the soft-delete exclusion; Recently Added keeps descending
// creation order instead of shuffling.
func (e *Engine) Shuffled(token string, filter model.FilterKind) ([]model.Quotation, error) {
	quotes, ordered, err := e.resolve(token, filter)
	if err != nil {
		return nil, err
	}
	if !ordered {
		util.Shuffle(quotes)
	}
	return quotes, nil
}

// Count runs the identical predicate resolution and returns only the
// cardinality.
func (e *Engine) Count(token string, filter model.FilterKind) (int, error) {
	quotes, _, err := e.resolve(token, filter)
	if err != nil {
		return 0, err
	}
	return len(quotes), nil
}

// ListAll returns every non-deleted quotation in random order. The
// filter kind is validated but does not narrow the result.
func (e *Engine) ListAll(filter model.FilterKind) ([]model.Quotation, error) {
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFilter, filter)
	}
	return e.Shuffled(model.TokenShowAll, filter)
}

// ShuffledFromSettings resolves against the stored selection. The
// notification pair falls back to the browse pair; a missing selection
// is a hard ErrMissingSelection, never a guess.
func (e *Engine) ShuffledFromSettings(forNotifications bool) ([]model.Quotation, error) {
	token, filter, err := e.storedSelection(forNotifications)
	if err != nil {
		return nil, err
	}
	return e.Shuffled(token, filter)
}

// BrowseQuotes is the no-explicit-args browse path. It never returns an
// error: failures surface as a single diagnostic quotation whose text
// carries the error, so the calling UI always has something to render.
func (e *Engine) BrowseQuotes() []model.Quotation {
	quotes, err := e.ShuffledFromSettings(false)
	if err != nil {
		slog.Warn("browse query failed, returning diagnostic record", "error", err)
		return []model.Quotation{ErrorQuote(err)}
	}
	return quotes
}

// Distinct lists distinct authors or exploded subject tags, sorted
// ascending. Read failures degrade to an empty list with a logged
// warning; there is always a sensible empty fallback here.
func (e *Engine) Distinct(filter model.FilterKind) ([]string, error) {
	switch filter {
	case model.FilterAuthor:
		var authors []string
		if err := e.db.Select(&authors,
			"SELECT DISTINCT author FROM quotations WHERE deleted = 0 AND author IS NOT NULL AND author != '' ORDER BY author ASC"); err != nil {
			slog.Warn("failed to list distinct authors", "error", err)
			return []string{}, nil
		}
		return authors, nil
	case model.FilterSubject:
		var joined []string
		if err := e.db.Select(&joined,
			"SELECT subjects FROM quotations WHERE deleted = 0 AND subjects IS NOT NULL AND subjects != ''"); err != nil {
			slog.Warn("failed to list subjects", "error", err)
			return []string{}, nil
		}
		var tags []string
		for _, s := range joined {
			tags = append(tags, util.SplitSubjects(s)...)
		}
		tags = util.DedupeStrings(tags)
		sort.Strings(tags)
		return tags, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFilter, filter)
	}
}

// GetByID returns nil without error when no row matches.
func (e *Engine) GetByID(id int64) (*model.Quotation, error) {
	return e.db.GetQuoteByID(id)
}

// resolve maps the token/filter pair to matching rows. The second
// return reports whether the rows already carry a meaningful order.
func (e *Engine) resolve(token string, filter model.FilterKind) ([]model.Quotation, bool, error) {
	switch token {
	case model.TokenDeleted:
		quotes, err := e.selectWhere("deleted = 1")
		return quotes, false, err
	case model.TokenShowAll:
		quotes, err := e.selectWhere("deleted = 0")
		return quotes, false, err
	case model.TokenRecentlyAdded:
		quotes, err := e.selectWhere("deleted = 0 AND createdAt IS NOT NULL ORDER BY createdAt DESC")
		return quotes, true, err
	case model.TokenTop100:
		quotes, err := e.subjectMatches(model.CuratedSubjectMarker)
		return quotes, false, err
	case model.TokenFavorites:
		quotes, err := e.selectWhere("favorite = 1 AND deleted = 0")
		return quotes, false, err
	case model.TokenContributed:
		quotes, err := e.selectWhere("contributedBy = ? AND deleted = 0", model.DefaultUsername)
		return quotes, false, err
	}

	switch filter {
	case model.FilterAuthor:
		quotes, err := e.authorMatches(token)
		return quotes, false, err
	case model.FilterSubject:
		quotes, err := e.subjectMatches(token)
		return quotes, false, err
	default:
		return nil, false, fmt.Errorf("%w: %q", model.ErrInvalidFilter, filter)
	}
}

func (e *Engine) selectWhere(where string, args ...any) ([]model.Quotation, error) {
	query := "SELECT id, quoteText, author, contributedBy, subjects, authorLink, videoLink, favorite, deleted, createdAt FROM quotations WHERE " + where
	var quotes []model.Quotation
	if err := e.db.Select(&quotes, query, args...); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return quotes, nil
}

// authorMatches applies case-sensitive substring containment on the
// author column. Matching happens in process; SQLite LIKE folds ASCII
// case and would change semantics.
func (e *Engine) authorMatches(token string) ([]model.Quotation, error) {
	quotes, err := e.selectWhere("deleted = 0")
	if err != nil {
		return nil, err
	}
	var matched []model.Quotation
	for _, q := range quotes {
		if strings.Contains(q.Author, token) {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

// subjectMatches applies whole-tag membership on the comma-joined
// subjects column via split-trim-compare, so "Free" never matches
// "Freedom" and tags containing LIKE metacharacters behave.
func (e *Engine) subjectMatches(tag string) ([]model.Quotation, error) {
	quotes, err := e.selectWhere("deleted = 0")
	if err != nil {
		return nil, err
	}
	var matched []model.Quotation
	for _, q := range quotes {
		if util.HasSubject(q.Subjects, tag) {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

func (e *Engine) storedSelection(forNotifications bool) (string, model.FilterKind, error) {
	queryKey, filterKey := model.KeyQuery, model.KeyFilter
	if forNotifications {
		queryKey, filterKey = model.KeyNotificationQuery, model.KeyNotificationFilter
	}

	var token, filter string
	haveToken, err := settings.GetJSON(e.store, queryKey, &token)
	if err != nil {
		return "", "", err
	}
	haveFilter, err := settings.GetJSON(e.store, filterKey, &filter)
	if err != nil {
		return "", "", err
	}

	// The notification pair falls back to the general browse pair
	// before giving up.
	if forNotifications && (!haveToken || !haveFilter) {
		return e.storedSelection(false)
	}

	if !haveToken || !haveFilter {
		return "", "", fmt.Errorf("%w: no stored query/filter selection", model.ErrMissingSelection)
	}
	return token, model.FilterKind(filter), nil
}
