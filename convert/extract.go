// Package convert turns raw repository records into canonical rows. A single
// generic extractor is driven by per-source mapping tables; source quirks
// are expressed as named adjustments that run after extraction.
package convert

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/canonical"
)

// Raw is a record from any source, that can list the values of a field.
// Implementations return nil for missing fields.
type Raw interface {
	Values(field string) []string
}

// Skip marks a row, that has been extracted, but is not usable downstream.
type Skip struct {
	err error
}

func (s Skip) Error() string {
	return s.err.Error()
}

var ErrSkipNoTitle = Skip{err: errors.New("no title")}

// ErrUnknownAdjustment is returned when a mapping refers to an adjustment,
// that is not registered.
var ErrUnknownAdjustment = errors.New("unknown adjustment")

// Rule resolves one canonical column from an ordered list of candidate
// fields. The first candidate with a value wins and all its values are
// joined. With Concat set, the values of all candidates are joined instead.
type Rule struct {
	Column     string
	Candidates []string
	Concat     bool
	Lower      bool
}

// Resolve returns the joined values for this rule, or the empty string.
func (r Rule) Resolve(raw Raw) string {
	var values []string
	for _, c := range r.Candidates {
		var found bool
		for _, v := range raw.Values(c) {
			if v = normal.CleanString(v); v != "" {
				values = append(values, v)
				found = true
			}
		}
		if found && !r.Concat {
			break
		}
	}
	s := normal.Join(values)
	if r.Lower {
		s = strings.ToLower(s)
	}
	return s
}

// Mapping describes how to get from a raw record of a source to a row.
type Mapping struct {
	Source      canonical.Source
	Rules       []Rule
	Adjustments []string
}

// Validate checks, that all adjustments exist and columns are known.
func (m *Mapping) Validate() error {
	for _, r := range m.Rules {
		if !canonical.IsColumn(r.Column) {
			return fmt.Errorf("%s: unknown column %q", m.Source, r.Column)
		}
		if len(r.Candidates) == 0 {
			return fmt.Errorf("%s: no candidates for %q", m.Source, r.Column)
		}
	}
	for _, name := range m.Adjustments {
		if _, ok := adjustments[name]; !ok {
			return fmt.Errorf("%s: %w: %s", m.Source, ErrUnknownAdjustment, name)
		}
	}
	return nil
}

// Extract creates a row from a raw record. Missing fields yield absent
// values, never an error. The row is tagged with the mapping source.
func (m *Mapping) Extract(raw Raw) *canonical.Row {
	row := canonical.NewRow()
	for _, r := range m.Rules {
		row.Set(r.Column, r.Resolve(raw))
	}
	for _, name := range m.Adjustments {
		if f, ok := adjustments[name]; ok {
			f(raw, row)
		}
	}
	row.SetSource(m.Source)
	return row
}

// Check reports rows that are not usable downstream.
func Check(row *canonical.Row) error {
	if !row.Has(canonical.Title) {
		return ErrSkipNoTitle
	}
	return nil
}

// Identity returns a mapping for records that already use canonical column
// names, e.g. CSV files written by an earlier run.
func Identity(source canonical.Source) *Mapping {
	m := &Mapping{Source: source, Adjustments: []string{"iso-dates"}}
	for _, c := range canonical.AllColumns() {
		if c == canonical.SourceColumn {
			continue
		}
		m.Rules = append(m.Rules, Rule{Column: c, Candidates: []string{c}})
	}
	return m
}

// Lookup returns the mapping for a source.
func Lookup(source canonical.Source) (*Mapping, error) {
	m, ok := mappings[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", canonical.ErrUnknownSource, source)
	}
	return m, nil
}

// AdjustmentNames returns the names of all registered adjustments.
func AdjustmentNames() []string {
	var names []string
	for k := range adjustments {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CSVRecord is a row of a CSV export keyed by header. DSpace CSV exports
// separate multiple values in a cell with "||".
type CSVRecord map[string]string

func (r CSVRecord) Values(field string) (result []string) {
	v, ok := r[field]
	if !ok {
		return nil
	}
	for _, s := range strings.Split(v, "||") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}
