// File: internal/domain/chat.go
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the timezone-naive ISO-8601 form written for new records.
const DateLayout = "2006-01-02T15:04:05.000000"

// dateLayouts are tried in order when reading a stored date back.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

// ChatRecord is a single entry of the chat list.
type ChatRecord struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// NewChatRecord stamps a record with the wall-clock time of at.
func NewChatRecord(title string, at time.Time) ChatRecord {
	return ChatRecord{Title: title, Date: FormatDate(at)}
}

// FormatDate drops the zone and keeps microsecond precision.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a stored date. Values carrying an offset keep the date as
// written; no conversion to another zone happens.
func ParseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q: %w", value, lastErr)
}
