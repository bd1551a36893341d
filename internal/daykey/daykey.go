// Package daykey buckets instants into calendar days.
//
// A day-key is the "yyyy-MM-dd" representation of the calendar day an instant
// falls on in a reference zone (UTC unless told otherwise). Keys sort
// lexicographically in chronological order.
package daykey

import (
	"fmt"
	"time"
)

// Layout is the day-key format
const Layout = "2006-01-02"

type options struct {
	at  time.Time
	loc *time.Location
}

// Option customises Key
type Option func(*options)

// At keys the given instant instead of the current time.
func At(t time.Time) Option {
	return func(o *options) { o.at = t }
}

// In keys the day as seen in loc instead of UTC. A nil loc keeps UTC.
func In(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// Key returns the day-key of an instant, by default now in UTC.
func Key(opts ...Option) string {
	o := options{loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	if o.at.IsZero() {
		o.at = time.Now()
	}
	return StartOfDay(o.at, o.loc).Format(Layout)
}

// StartOfDay truncates t to midnight of its calendar day in loc.
// time.Truncate is not used because it works on absolute time, not on the wall clock of loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Range returns n consecutive day-keys ending with the day of end, oldest first.
func Range(end time.Time, n int, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	last := StartOfDay(end, loc)
	keys := make([]string, 0, n)
	for offset := n - 1; offset >= 0; offset-- {
		keys = append(keys, last.AddDate(0, 0, -offset).Format(Layout))
	}
	return keys
}

// Parse returns midnight UTC of a day-key.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day-key %q want format %q: %w", key, Layout, err)
	}
	return t, nil
}
