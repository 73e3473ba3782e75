// Package countries standardizes country names and maps them to UN regions
// and continents. It also contains a naive detector for country names in
// free text.
package countries

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ilri/cgmerge/normal"
)

//go:embed countries.csv
var embeddedTable string

// Country is a single entry of the table.
type Country struct {
	Name      string // common short name, used for output
	Official  string
	ISO3      string
	Aliases   []string
	Region    string // UN geoscheme subregion
	Continent string
}

// Table allows to look up countries by any of their names.
type Table struct {
	countries []Country
	index     map[string]int
}

var (
	defaultTable *Table
	once         sync.Once
)

// Default returns the embedded table.
func Default() *Table {
	once.Do(func() {
		t, err := Load(strings.NewReader(embeddedTable))
		if err != nil {
			panic(fmt.Sprintf("countries: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Load reads a table from CSV with a header row and columns name_short,
// name_official, iso3, aliases (separated by "|"), region and continent.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty country table")
	}
	t := &Table{index: make(map[string]int)}
	for i, rec := range records[1:] {
		c := Country{
			Name:      rec[0],
			Official:  rec[1],
			ISO3:      rec[2],
			Region:    rec[4],
			Continent: rec[5],
		}
		if c.Name == "" {
			return nil, fmt.Errorf("line %d: missing name", i+2)
		}
		if rec[3] != "" {
			c.Aliases = strings.Split(rec[3], "|")
		}
		t.countries = append(t.countries, c)
		idx := len(t.countries) - 1
		for _, k := range append([]string{c.Name, c.Official, c.ISO3}, c.Aliases...) {
			if k == "" {
				continue
			}
			t.index[strings.ToLower(k)] = idx
		}
	}
	return t, nil
}

// Len returns the number of countries in the table.
func (t *Table) Len() int {
	return len(t.countries)
}

// Lookup finds a country by short name, official name, ISO3 code or alias,
// case insensitively.
func (t *Table) Lookup(name string) (Country, bool) {
	idx, ok := t.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Country{}, false
	}
	return t.countries[idx], true
}

// Standardize maps each value of a joined field to its short name. Values
// that are not in the table are dropped.
func (t *Table) Standardize(s string) string {
	var result []string
	for _, v := range normal.Split(s) {
		if c, ok := t.Lookup(v); ok {
			result = append(result, c.Name)
		}
	}
	return normal.Join(normal.Unique(result))
}

// Regions returns the regions of a joined list of countries.
func (t *Table) Regions(s string) string {
	return t.derive(s, func(c Country) string { return c.Region })
}

// Continents returns the continents of a joined list of countries.
func (t *Table) Continents(s string) string {
	return t.derive(s, func(c Country) string { return c.Continent })
}

func (t *Table) derive(s string, f func(Country) string) string {
	var result []string
	for _, v := range normal.Split(s) {
		if c, ok := t.Lookup(v); ok {
			result = append(result, f(c))
		}
	}
	return normal.Join(normal.Unique(result))
}

type span struct {
	start, end int
	country    int
}

// Detect finds short and official country names in text and returns the
// short names in order of first appearance. Matching is case sensitive and
// requires word boundaries; on overlap the longer name wins, so "Papua New
// Guinea" does not also yield "Guinea". This is a heuristic, e.g. "Georgia"
// may well be the US state.
func (t *Table) Detect(text string) []string {
	if text == "" {
		return nil
	}
	var spans []span
	for i, c := range t.countries {
		for _, name := range []string{c.Name, c.Official} {
			for _, start := range findWords(text, name) {
				spans = append(spans, span{start: start, end: start + len(name), country: i})
			}
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].end-spans[i].start > spans[j].end-spans[j].start
	})
	var accepted []span
	for _, s := range spans {
		var overlap bool
		for _, a := range accepted {
			if s.start < a.end && a.start < s.end {
				overlap = true
				break
			}
		}
		if !overlap {
			accepted = append(accepted, s)
		}
	}
	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].start < accepted[j].start
	})
	var names []string
	for _, a := range accepted {
		names = append(names, t.countries[a.country].Name)
	}
	return normal.Unique(names)
}

// findWords returns the byte offsets of all occurrences of word in text, that
// are not part of a longer word.
func findWords(text, word string) (result []int) {
	if word == "" {
		return nil
	}
	var offset int
	for {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return result
		}
		start := offset + i
		end := start + len(word)
		if isBoundary(text, start, end) {
			result = append(result, start)
		}
		offset = start + 1
	}
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Standardize uses the default table.
func Standardize(s string) string { return Default().Standardize(s) }

// Regions uses the default table.
func Regions(s string) string { return Default().Regions(s) }

// Continents uses the default table.
func Continents(s string) string { return Default().Continents(s) }

// Detect uses the default table.
func Detect(text string) []string { return Default().Detect(text) }
