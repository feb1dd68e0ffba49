package logging

import "log/slog"

// Common field names for consistent logging across the pipeline stages.
const (
	FieldStage    = "stage"
	FieldUserID   = "user_id"
	FieldItemID   = "item_id"
	FieldURL      = "url"
	FieldSource   = "source"
	FieldAccount  = "account"
	FieldFeed     = "feed"
	FieldEndpoint = "endpoint"
	FieldImpact   = "impact_score"
	FieldCategory = "category"
	FieldCount    = "count"
	FieldError    = "error"
)

// Stage returns a slog attribute for the pipeline stage name.
func Stage(name string) slog.Attr {
	return slog.String(FieldStage, name)
}

// UserID returns a slog attribute for a subscriber's user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// ItemID returns a slog attribute for a news item ID.
func ItemID(id string) slog.Attr {
	return slog.String(FieldItemID, id)
}

// URL returns a slog attribute for an item or endpoint URL.
func URL(u string) slog.Attr {
	return slog.String(FieldURL, u)
}

// Source returns a slog attribute for a source type.
func Source(s string) slog.Attr {
	return slog.String(FieldSource, s)
}

// Account returns a slog attribute for a timeline account.
func Account(a string) slog.Attr {
	return slog.String(FieldAccount, a)
}

// Endpoint returns a slog attribute for a pool endpoint.
func Endpoint(e string) slog.Attr {
	return slog.String(FieldEndpoint, e)
}

// Impact returns a slog attribute for an impact score.
func Impact(score float64) slog.Attr {
	return slog.Float64(FieldImpact, score)
}

// Category returns a slog attribute for a classification category.
func Category(c string) slog.Attr {
	return slog.String(FieldCategory, c)
}

// Count returns a slog attribute for a generic count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
