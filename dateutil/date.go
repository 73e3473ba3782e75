// Package dateutil parses the partial dates found in repository metadata and
// picks a single publication date per record.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoDate is returned, when neither an issue nor an online date is
	// available.
	ErrNoDate = errors.New("no date")
	// ErrMalformedDate is returned for values not in YYYY, YYYY-MM or
	// YYYY-MM-DD form.
	ErrMalformedDate = errors.New("malformed date")
)

// Precision of a partial date.
type Precision int

const (
	Year Precision = iota + 1
	Month
	Day
)

// layouts by number of dash separated components.
var layouts = map[int]string{
	1: "2006",
	2: "2006-01",
	3: "2006-01-02",
}

// Date is a partial date. Time is set to the first instant of the period,
// e.g. "2014-06" is June 1st, 2014.
type Date struct {
	Raw       string
	Time      time.Time
	Precision Precision
}

// String returns the date as it was given.
func (d Date) String() string {
	return d.Raw
}

// ParseDate parses YYYY, YYYY-MM or YYYY-MM-DD. Anything else is an
// ErrMalformedDate; no guessing.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	n := len(strings.Split(s, "-"))
	layout, ok := layouts[n]
	if !ok || len(s) != len(layout) {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return Date{Raw: s, Time: t, Precision: Precision(n)}, nil
}

// ResolvePublicationDate picks the earlier of an issue and an online date.
// If the online date falls into 2011, the issue date is used regardless,
// since many articles are published online in the year before the print
// issue. If only one date is given, it is returned. Empty strings are
// absent dates.
func ResolvePublicationDate(issue, online string) (string, error) {
	issue, online = strings.TrimSpace(issue), strings.TrimSpace(online)
	switch {
	case issue == "" && online == "":
		return "", ErrNoDate
	case online == "":
		d, err := ParseDate(issue)
		if err != nil {
			return "", err
		}
		return d.Raw, nil
	case issue == "":
		d, err := ParseDate(online)
		if err != nil {
			return "", err
		}
		return d.Raw, nil
	}
	i, err := ParseDate(issue)
	if err != nil {
		return "", err
	}
	o, err := ParseDate(online)
	if err != nil {
		return "", err
	}
	switch {
	case i.Time.Before(o.Time):
		return i.Raw, nil
	case o.Time.Year() == 2011:
		return i.Raw, nil
	default:
		return o.Raw, nil
	}
}

// YearOf returns the first four characters of a date, or the empty string.
func YearOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return ""
	}
	return s[:4]
}
