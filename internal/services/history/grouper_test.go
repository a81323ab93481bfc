package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-gemchat/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestBucketFor_Boundaries(t *testing.T) {
	cases := []struct {
		delta int
		want  Bucket
	}{
		{-3, Today},
		{0, Today},
		{1, Yesterday},
		{2, Last7Days},
		{7, Last7Days},
		{8, Last30Days},
		{30, Last30Days},
		{31, Older},
		{400, Older},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BucketFor(tc.delta), "delta=%d", tc.delta)
	}
}

func TestCalendarDelta_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 1, 0, time.UTC)
	late := time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC)
	require.Equal(t, 1, CalendarDelta(now, late))

	early := time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)
	require.Equal(t, 0, CalendarDelta(now, early))
}

func TestCalendarDelta_AcrossYearsAndFuture(t *testing.T) {
	require.Equal(t, 366, CalendarDelta(day(2024, 12, 31), day(2023, 12, 31)))
	require.Equal(t, -2, CalendarDelta(day(2024, 6, 10), day(2024, 6, 12)))
	require.Positive(t, CalendarDelta(day(2024, 6, 10), time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGroup_Scenario(t *testing.T) {
	now := day(2024, 6, 10)
	records := []domain.ChatRecord{
		{Title: "a", Date: "2024-06-10T08:00:00"},
		{Title: "b", Date: "2024-06-09T23:59:59.000001"},
		{Title: "c", Date: "2024-06-05"},
		{Title: "d", Date: "2024-05-15T10:00:00"},
		{Title: "e", Date: "2024-01-01T00:00:00"},
	}

	grouped, err := Group(now, records)
	require.NoError(t, err)
	require.Equal(t, []domain.ChatRecord{records[0]}, grouped[Today])
	require.Equal(t, []domain.ChatRecord{records[1]}, grouped[Yesterday])
	require.Equal(t, []domain.ChatRecord{records[2]}, grouped[Last7Days])
	require.Equal(t, []domain.ChatRecord{records[3]}, grouped[Last30Days])
	require.Equal(t, []domain.ChatRecord{records[4]}, grouped[Older])
}

func TestGroup_SwitchesAtBucketEdges(t *testing.T) {
	now := day(2024, 6, 10)
	at := func(daysAgo int) domain.ChatRecord {
		return domain.NewChatRecord(fmt.Sprintf("%d", daysAgo), now.AddDate(0, 0, -daysAgo))
	}

	grouped, err := Group(now, []domain.ChatRecord{at(7), at(8), at(30), at(31)})
	require.NoError(t, err)
	require.Equal(t, []domain.ChatRecord{at(7)}, grouped[Last7Days])
	require.Equal(t, []domain.ChatRecord{at(8), at(30)}, grouped[Last30Days])
	require.Equal(t, []domain.ChatRecord{at(31)}, grouped[Older])
}

func TestGroup_PreservesOrderAndCount(t *testing.T) {
	now := day(2024, 6, 10)
	var records []domain.ChatRecord
	for i := 0; i < 90; i++ {
		records = append(records, domain.NewChatRecord(fmt.Sprintf("chat-%d", i), now.AddDate(0, 0, -(i%45))))
	}

	grouped, err := Group(now, records)
	require.NoError(t, err)
	require.Equal(t, len(records), grouped.Len())

	for _, b := range Buckets {
		last := -1
		for _, rec := range grouped[b] {
			var idx int
			_, err := fmt.Sscanf(rec.Title, "chat-%d", &idx)
			require.NoError(t, err)
			require.Greater(t, idx, last, "bucket %s out of order", b)
			last = idx
		}
	}
}

func TestGroup_EmptyInputHasAllKeys(t *testing.T) {
	grouped, err := Group(day(2024, 6, 10), nil)
	require.NoError(t, err)
	require.Len(t, grouped, len(Buckets))
	for _, b := range Buckets {
		require.NotNil(t, grouped[b], "bucket %s", b)
		require.Empty(t, grouped[b])
	}
}

func TestGroup_FutureDateClampsToToday(t *testing.T) {
	grouped, err := Group(day(2024, 6, 10), []domain.ChatRecord{{Title: "x", Date: "2024-07-01"}})
	require.NoError(t, err)
	require.Len(t, grouped[Today], 1)
}

func TestGroup_MalformedDate(t *testing.T) {
	records := []domain.ChatRecord{
		{Title: "ok", Date: "2024-06-10"},
		{Title: "broken", Date: "not a date"},
	}

	grouped, err := Group(day(2024, 6, 10), records)
	require.Nil(t, grouped)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 1, perr.Index)
	require.Equal(t, "broken", perr.Title)
	require.Equal(t, "not a date", perr.Value)
	require.Contains(t, err.Error(), "malformed date")
}
