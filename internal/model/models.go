package model

// DefaultUsername identifies locally contributed quotations. Rows whose
// contributedBy equals this value were added on this device.
const DefaultUsername = "DefaultUser"

// TableName is the single quotation table. The column set can grow at
// runtime (sync adds remote-discovered columns as nullable text), so the
// fixed columns below are a floor, not a ceiling.
const TableName = "quotations"

type Quotation struct {
	ID            int64   `db:"id" json:"id"`
	QuoteText     string  `db:"quoteText" json:"quoteText"`
	Author        string  `db:"author" json:"author"`
	ContributedBy string  `db:"contributedBy" json:"contributedBy"`
	Subjects      string  `db:"subjects" json:"subjects"`
	AuthorLink    string  `db:"authorLink" json:"authorLink"`
	VideoLink     string  `db:"videoLink" json:"videoLink"`
	Favorite      bool    `db:"favorite" json:"favorite"`
	Deleted       bool    `db:"deleted" json:"deleted"`
	CreatedAt     *string `db:"createdAt" json:"createdAt,omitempty"`
}

// FilterKind selects which field family a non-reserved query token
// matches against.
type FilterKind string

const (
	FilterAuthor  FilterKind = "Author"
	FilterSubject FilterKind = "Subject"
)

func (f FilterKind) Valid() bool {
	return f == FilterAuthor || f == FilterSubject
}

// Reserved query tokens bypass filter-kind matching and map to fixed
// predicates. They double as section headers in the browsing UI.
const (
	TokenShowAll       = "Show All"
	TokenContributed   = "Contributed By Me"
	TokenDeleted       = "Deleted"
	TokenFavorites     = "Favorite Quotations"
	TokenTop100        = "Top 100"
	TokenRecentlyAdded = "Recently Added"
)

// CuratedSubjectMarker tags rows belonging to the curated top set. The
// curated set is a subject tag, not a separate table.
const CuratedSubjectMarker = "Top 100"

// Hard defaults applied when neither a notification selection nor a
// browse selection is stored.
const (
	DefaultQuery  = TokenTop100
	DefaultFilter = FilterSubject
)

// Settings keys. Values are stored JSON-encoded as strings.
const (
	KeyAllowNotifications = "allowNotifications"
	KeyStartTime24h       = "startTime24h"
	KeyEndTime24h         = "endTime24h"
	KeySpacing            = "spacing"
	KeyQuery              = "query"
	KeyFilter             = "filter"
	KeyNotificationQuery  = "notificationQuery"
	KeyNotificationFilter = "notificationFilter"
)

// Settings is the typed view over the string-encoded settings store.
// Times are hour*100+minute in 24h form; Spacing is minutes between
// notifications.
type Settings struct {
	AllowNotifications bool       `json:"allowNotifications"`
	StartTime24h       int        `json:"startTime24h"`
	EndTime24h         int        `json:"endTime24h"`
	Spacing            int        `json:"spacing"`
	Query              string     `json:"query"`
	Filter             FilterKind `json:"filter"`
	NotificationQuery  string     `json:"notificationQuery"`
	NotificationFilter FilterKind `json:"notificationFilter"`
}

// DefaultSettings are substituted for missing or malformed stored
// values; loading settings never fails on bad data.
func DefaultSettings() Settings {
	return Settings{
		AllowNotifications: true,
		StartTime24h:       900,
		EndTime24h:         2200,
		Spacing:            30,
		Query:              DefaultQuery,
		Filter:             DefaultFilter,
		NotificationQuery:  DefaultQuery,
		NotificationFilter: DefaultFilter,
	}
}

// Document is one record from the remote source-of-truth collection.
// Its field set is uncontrolled; unknown fields become table columns.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}
