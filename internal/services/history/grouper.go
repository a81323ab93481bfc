// File: internal/services/history/grouper.go
package history

import (
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// Bucket names a relative time window.
type Bucket string

const (
	Today      Bucket = "today"
	Yesterday  Bucket = "yesterday"
	Last7Days  Bucket = "last-7-days"
	Last30Days Bucket = "last-30-days"
	Older      Bucket = "older"
)

// Buckets lists every bucket from newest to oldest.
var Buckets = []Bucket{Today, Yesterday, Last7Days, Last30Days, Older}

const secondsPerDay = 24 * 60 * 60

// Grouped maps each bucket to its records. All five keys are always present.
type Grouped map[Bucket][]domain.ChatRecord

// NewGrouped returns a Grouped with every bucket set to an empty slice.
func NewGrouped() Grouped {
	g := make(Grouped, len(Buckets))
	for _, b := range Buckets {
		g[b] = []domain.ChatRecord{}
	}
	return g
}

// Len is the number of records across all buckets.
func (g Grouped) Len() int {
	n := 0
	for _, records := range g {
		n += len(records)
	}
	return n
}

// CalendarDelta counts whole calendar days from t to now, ignoring time of day
// and zone. Negative when t falls on a later date than now.
func CalendarDelta(now, t time.Time) int {
	return int((civilDay(now) - civilDay(t)) / secondsPerDay)
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// BucketFor classifies a calendar-day delta. Future dates land in Today.
func BucketFor(deltaDays int) Bucket {
	switch {
	case deltaDays <= 0:
		return Today
	case deltaDays == 1:
		return Yesterday
	case deltaDays <= 7:
		return Last7Days
	case deltaDays <= 30:
		return Last30Days
	default:
		return Older
	}
}

// Group partitions records into buckets relative to now, keeping input order
// inside each bucket. The first unreadable date aborts the call.
func Group(now time.Time, records []domain.ChatRecord) (Grouped, error) {
	grouped := NewGrouped()
	for i, rec := range records {
		date, err := domain.ParseDate(rec.Date)
		if err != nil {
			return nil, &ParseError{Index: i, Title: rec.Title, Value: rec.Date, Cause: err}
		}
		b := BucketFor(CalendarDelta(now, date))
		grouped[b] = append(grouped[b], rec)
	}
	return grouped, nil
}
