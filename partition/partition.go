// Package partition selects named subsets of the final dataset by DOI list
// membership, and the diagnostic subsets of rows without DOI or PDF.
package partition

import (
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/canonical"
)

// List is a named set of DOIs.
type List struct {
	Name string
	dois map[string]bool
}

// NewList creates a list from raw DOI values, which are normalized.
func NewList(name string, dois []string) *List {
	l := &List{Name: name, dois: make(map[string]bool)}
	for _, v := range dois {
		if v = normal.NormalizeDOI(v); v != "" {
			l.dois[v] = true
		}
	}
	return l
}

// Len returns the number of distinct DOIs.
func (l *List) Len() int {
	return len(l.dois)
}

// Contains reports whether a row's DOI is in the list.
func (l *List) Contains(row *canonical.Row) bool {
	v, ok := row.Get(canonical.DOI)
	return ok && l.dois[v]
}

// Subset is a named selection of rows, in dataset order.
type Subset struct {
	Name string
	Rows []*canonical.Row
}

// Select returns the rows contained in a list.
func Select(rows []*canonical.Row, l *List) Subset {
	return filter(l.Name, rows, l.Contains)
}

// Partition selects one subset per list. A row may be part of any number of
// subsets.
func Partition(rows []*canonical.Row, lists []*List) []Subset {
	result := make([]Subset, 0, len(lists))
	for _, l := range lists {
		result = append(result, Select(rows, l))
	}
	return result
}

// MissingDOI returns rows without a canonical DOI.
func MissingDOI(rows []*canonical.Row) Subset {
	return filter("missing-dois", rows, func(r *canonical.Row) bool {
		return !normal.IsCanonicalDOI(r.Value(canonical.DOI))
	})
}

// WithDOI returns rows with a canonical DOI.
func WithDOI(rows []*canonical.Row) Subset {
	return filter("with-dois", rows, func(r *canonical.Row) bool {
		return normal.IsCanonicalDOI(r.Value(canonical.DOI))
	})
}

// MissingPDF returns rows without a local full text.
func MissingPDF(rows []*canonical.Row) Subset {
	return filter("missing-pdfs", rows, func(r *canonical.Row) bool {
		return !r.Has(canonical.PDF)
	})
}

// OutsideWindow returns rows whose publication date is not within the
// interval. Rows without a usable date are reported separately and are not
// part of this subset.
func OutsideWindow(rows []*canonical.Row, window dateutil.Interval) Subset {
	return filter("outside-window", rows, func(r *canonical.Row) bool {
		d, err := dateutil.ParseDate(r.Value(canonical.PublicationDate))
		if err != nil {
			return false
		}
		return !window.Contains(d)
	})
}

// Flag sets column to "Yes" for rows in the list and to "No" otherwise.
func Flag(rows []*canonical.Row, l *List, column string) int {
	var n int
	for _, r := range rows {
		if l.Contains(r) {
			r.Set(column, "Yes")
			n++
		} else {
			r.Set(column, "No")
		}
	}
	return n
}

func filter(name string, rows []*canonical.Row, f func(*canonical.Row) bool) Subset {
	s := Subset{Name: name}
	for _, r := range rows {
		if f(r) {
			s.Rows = append(s.Rows, r)
		}
	}
	return s
}
