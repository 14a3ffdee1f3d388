package timeutil

import (
	"errors"
	"time"
)

var ErrEmptyRange = errors.New("empty day range")

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// EnsureLocation returns UTC when loc is nil.
func EnsureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// TruncateToDay normalizes the timestamp to midnight in the provided zone.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	loc = EnsureLocation(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayStartMS returns the UTC day start of the timestamp as epoch milliseconds.
func DayStartMS(t time.Time) int64 {
	return TruncateToDay(t, time.UTC).UnixMilli()
}

// DayEndMS returns the inclusive end of the day that starts at startMS.
func DayEndMS(startMS int64) int64 {
	return startMS + dayMillis - 1
}

// DayStarts returns the UTC day-start epoch milliseconds for the trailing
// `days` days ending at now, oldest first.
func DayStarts(days int, now time.Time) ([]int64, error) {
	if days <= 0 {
		return nil, ErrEmptyRange
	}
	end := TruncateToDay(now, time.UTC)
	starts := make([]int64, 0, days)
	for i := days - 1; i >= 0; i-- {
		starts = append(starts, end.AddDate(0, 0, -i).UnixMilli())
	}
	return starts, nil
}

// DayStartsBetween returns the UTC day-start epoch milliseconds for every day
// in [start, end], both given as YYYY-MM-DD date strings, oldest first.
func DayStartsBetween(start, end string) ([]int64, error) {
	from, err := time.ParseInLocation(time.DateOnly, start, time.UTC)
	if err != nil {
		return nil, err
	}
	to, err := time.ParseInLocation(time.DateOnly, end, time.UTC)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrEmptyRange
	}
	var starts []int64
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		starts = append(starts, cur.UnixMilli())
	}
	return starts, nil
}
