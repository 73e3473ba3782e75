package dateutil

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Interval groups start and end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders an interval.
func (iv Interval) String() string {
	return fmt.Sprintf("%s %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// Validate checks if the interval is valid (end after start)
func (iv Interval) Validate() error {
	if iv.End.Before(iv.Start) {
		return fmt.Errorf("invalid interval: end %v before start %v", iv.End, iv.Start)
	}
	return nil
}

// Years returns the interval from the beginning of year from to the end of
// year to, in UTC.
func Years(from, to int) Interval {
	return Interval{
		Start: now.With(time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC)).BeginningOfYear(),
		End:   now.With(time.Date(to, time.January, 1, 0, 0, 0, 0, time.UTC)).EndOfYear(),
	}
}

// DefaultWindow is the inclusion window of the review.
var DefaultWindow = Years(2012, 2023)

// Contains reports whether a date falls into the interval. Partial dates
// are compared by the start of their period.
func (iv Interval) Contains(d Date) bool {
	return !d.Time.Before(iv.Start) && !d.Time.After(iv.End)
}

// ContainsString parses s and reports whether it falls into the interval.
// Unparseable dates are not contained.
func (iv Interval) ContainsString(s string) bool {
	d, err := ParseDate(s)
	if err != nil {
		return false
	}
	return iv.Contains(d)
}
