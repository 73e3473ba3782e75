// Package canonical contains the flat row shape all sources are converted
// into, and the fixed set of column and source names.
package canonical

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Separator joins multiple values in a single column.
const Separator = "; "

// Column names, in output order.
const (
	Title            = "Title"
	Authors          = "Authors"
	Affiliations     = "Author affiliations"
	Abstract         = "Abstract"
	Funders          = "Funders"
	Language         = "Language"
	DOI              = "DOI"
	AccessRights     = "Access rights"
	UsageRights      = "Usage rights"
	RepositoryLink   = "Repository link"
	PublicationDate  = "Publication date"
	OnlineDate       = "Publication date (Online)"
	Journal          = "Journal"
	ISSN             = "ISSN"
	Publisher        = "Publisher"
	Volume           = "Volume"
	Issue            = "Issue"
	Pages            = "Pages"
	Subjects         = "Subjects"
	Countries        = "Countries"
	SourceColumn     = "Source"
	Regions          = "Regions"
	Continents       = "Continents"
	PDF              = "PDF"
	OriginalResearch = "Original research"
)

// Columns lists the columns produced by extraction.
var Columns = []string{
	Title,
	Authors,
	Affiliations,
	Abstract,
	Funders,
	Language,
	DOI,
	AccessRights,
	UsageRights,
	RepositoryLink,
	PublicationDate,
	OnlineDate,
	Journal,
	ISSN,
	Publisher,
	Volume,
	Issue,
	Pages,
	Subjects,
	Countries,
	SourceColumn,
}

// EnrichedColumns are only populated after enrichment.
var EnrichedColumns = []string{
	Regions,
	Continents,
	PDF,
	OriginalResearch,
}

// AllColumns returns extraction and enrichment columns, in output order.
func AllColumns() []string {
	result := make([]string, 0, len(Columns)+len(EnrichedColumns))
	result = append(result, Columns...)
	return append(result, EnrichedColumns...)
}

// IsColumn returns true, if name is a known column.
func IsColumn(name string) bool {
	for _, c := range AllColumns() {
		if c == name {
			return true
		}
	}
	return false
}

// Source names the repository or catalog a row was harvested from.
type Source string

const (
	CGSpace   Source = "CGSpace DSpace"
	MELSpace  Source = "MELSpace DSpace"
	WorldFish Source = "WorldFish DSpace"
	CIFOR     Source = "CIFOR DSpace"
	IFPRI     Source = "IFPRI Library"
	IRRI      Source = "IRRI Library"
	ICRISAT   Source = "ICRISAT OAR"
	CIMMYT    Source = "CIMMYT DSpace"
)

// Sources in merge order. Earlier sources win ties during deduplication.
var Sources = []Source{
	CGSpace,
	MELSpace,
	WorldFish,
	CIFOR,
	IFPRI,
	IRRI,
	ICRISAT,
	CIMMYT,
}

var sourceKeys = map[string]Source{
	"cgspace":   CGSpace,
	"melspace":  MELSpace,
	"worldfish": WorldFish,
	"cifor":     CIFOR,
	"ifpri":     IFPRI,
	"irri":      IRRI,
	"icrisat":   ICRISAT,
	"cimmyt":    CIMMYT,
}

// ErrUnknownSource is returned for a source key we do not have a mapping for.
var ErrUnknownSource = errors.New("unknown source")

// ParseSource returns the source for a short key, like "cgspace", or a full
// source name, like "CGSpace DSpace".
func ParseSource(s string) (Source, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if src, ok := sourceKeys[k]; ok {
		return src, nil
	}
	for _, src := range Sources {
		if strings.ToLower(string(src)) == k {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// Key returns the short lowercase key of a source.
func (s Source) Key() string {
	for k, v := range sourceKeys {
		if v == s {
			return k
		}
	}
	return ""
}

// SourceKeys returns all short source keys, sorted.
func SourceKeys() []string {
	var keys []string
	for k := range sourceKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Row is a single record with optional values per column. A column is either
// absent or holds a non-empty, trimmed string; there is no third state.
type Row struct {
	fields map[string]string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{fields: make(map[string]string)}
}

// RowFromMap creates a row from a column to value mapping, e.g. a CSV record.
// Empty values are treated as absent.
func RowFromMap(m map[string]string) *Row {
	r := NewRow()
	for k, v := range m {
		r.Set(k, v)
	}
	return r
}

// Get returns the value of a column and whether it is present.
func (r *Row) Get(col string) (string, bool) {
	v, ok := r.fields[col]
	return v, ok
}

// Value returns the column value or the empty string, if absent.
func (r *Row) Value(col string) string {
	return r.fields[col]
}

// Has returns true, if the column is present.
func (r *Row) Has(col string) bool {
	_, ok := r.fields[col]
	return ok
}

// Set a column value. Setting a blank value removes the column.
func (r *Row) Set(col, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(r.fields, col)
		return
	}
	r.fields[col] = value
}

// Delete removes a column.
func (r *Row) Delete(col string) {
	delete(r.fields, col)
}

// Source returns the source tag of this row.
func (r *Row) Source() Source {
	return Source(r.fields[SourceColumn])
}

// SetSource tags the row with a source.
func (r *Row) SetSource(s Source) {
	r.Set(SourceColumn, string(s))
}

// Len returns the number of present columns.
func (r *Row) Len() int {
	return len(r.fields)
}

// Columns returns the names of all present columns, sorted.
func (r *Row) Columns() []string {
	var cols []string
	for k := range r.fields {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := NewRow()
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return c
}

// Map returns a copy of the present values.
func (r *Row) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		m[k] = v
	}
	return m
}

// String is used for logging.
func (r *Row) String() string {
	return fmt.Sprintf("%s [%s] %s", r.Value(DOI), r.Source(), r.Value(Title))
}
