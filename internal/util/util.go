package util

import (
	"math/rand/v2"
	"strings"

	"tobewise-cli/internal/model"
)

// CleanString strips stray quote and parenthesis characters plus
// surrounding whitespace. Imported datasets carried these from their
// original CSV form.
func CleanString(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '"', '(', ')':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// SplitSubjects explodes a comma-joined subject string into trimmed,
// non-empty tags.
func SplitSubjects(subjects string) []string {
	parts := strings.Split(subjects, ",")
	var tags []string
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinSubjects cleans each tag and joins the survivors into the stored
// comma-separated form.
func JoinSubjects(tags []string) string {
	var cleaned []string
	for _, tag := range tags {
		if c := CleanString(tag); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, ", ")
}

// NormalizeSubjects reapplies the per-tag cleanup to an already-joined
// subject string. Used by insert and by the row migration.
func NormalizeSubjects(subjects string) string {
	return JoinSubjects(SplitSubjects(CleanString(subjects)))
}

// HasSubject reports whether a comma-joined subject string contains the
// given tag as a whole tag. Split-trim-compare instead of LIKE patterns
// so tags containing % or _ cannot mismatch, and "Free" never matches
// "Freedom".
func HasSubject(subjects, tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, s := range SplitSubjects(subjects) {
		if s == tag {
			return true
		}
	}
	return false
}

// Shuffle permutes quotations in place with a uniform Fisher-Yates
// pass; calls are independent, there is no fixed seed.
func Shuffle(quotes []model.Quotation) {
	rand.Shuffle(len(quotes), func(i, j int) {
		quotes[i], quotes[j] = quotes[j], quotes[i]
	})
}

// DedupeQuotes drops later entries whose (quoteText, author) pair was
// already seen. Identity for deduplication is the text+author pair, not
// the id.
func DedupeQuotes(quotes []model.Quotation) []model.Quotation {
	seen := make(map[string]bool)
	var result []model.Quotation
	for _, q := range quotes {
		key := strings.TrimSpace(q.QuoteText) + "\x00" + strings.TrimSpace(q.Author)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, q)
	}
	return result
}

// DedupeStrings removes duplicates and blanks while preserving order.
func DedupeStrings(slice []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, item := range slice {
		item = strings.TrimSpace(item)
		if item != "" && !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
