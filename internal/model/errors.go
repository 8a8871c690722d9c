package model

import "errors"

var (
	// ErrMissingSelection means the stored query token or filter kind
	// was absent when an operation was invoked without explicit
	// arguments and no default applies. The message text is load-bearing:
	// the diagnostic placeholder quotation carries it verbatim and
	// support staff grep for it.
	ErrMissingSelection = errors.New("Invalid userQuery or filter")

	// ErrInvalidFilter means the filter kind was outside the recognized
	// set for a non-reserved token.
	ErrInvalidFilter = errors.New("invalid filter provided")

	// ErrInvalidArgument means a required identifier was missing, e.g. a
	// favorite or delete toggle on a quotation with no id.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the targeted row does not exist.
	ErrNotFound = errors.New("quotation not found")
)
