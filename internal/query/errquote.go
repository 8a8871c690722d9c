package query

import (
	"fmt"

	"tobewise-cli/internal/model"
)

// ErrorQuote wraps a failure in a placeholder quotation so the browse
// UI can render it inline like any other record. Crude, but the failure
// is always visible and the text reaches support verbatim. Keep every
// diagnostic-record construction behind this helper so the channel can
// later be swapped for a typed error path without touching call sites.
func ErrorQuote(err error) model.Quotation {
	return model.Quotation{
		ID:        -1,
		QuoteText: fmt.Sprintf("Something went wrong: %v. Please restart the app, and contact support if the problem persists.", err),
		Author:    "ToBeWise",
		Subjects:  "Error",
	}
}
