// Package csvio reads source CSV exports and DOI lists and writes the output
// datasets. Inputs may be compressed with gzip or zstd.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilri/cgmerge/atomicfile"
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/schema/canonical"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// MissingColumnError is returned, when an input file lacks a required
// column. This usually means a broken upstream export.
type MissingColumnError struct {
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing column %q", e.Path, e.Column)
}

// ErrEmpty is returned for files without a header row.
var ErrEmpty = errors.New("empty file")

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var err error
	for _, f := range m.closers {
		if cerr := f(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a file for reading and decompresses it, if its name ends with
// .gz or .zst.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(filename) {
	case ".gz":
		zr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return &multiCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return &multiCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// ReadRecords reads a CSV with a header row into header keyed records. A
// leading byte order mark is ignored and header names are trimmed. Short
// records leave the trailing columns empty.
func ReadRecords(r io.Reader) (header []string, records []map[string]string, err error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err = cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmpty
	}
	if err != nil {
		return nil, nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				m[h] = rec[i]
			}
		}
		records = append(records, m)
	}
	return header, records, nil
}

// ReadSource reads a source export and fails, if any of the required
// columns is missing.
func ReadSource(filename string, required []string) ([]map[string]string, error) {
	rc, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	header, records, err := ReadRecords(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, c := range required {
		if !have[c] {
			return nil, &MissingColumnError{Path: filename, Column: c}
		}
	}
	return records, nil
}

// ReadList reads the values of a single column list, with a header of "doi"
// or "url".
func ReadList(filename string) ([]string, error) {
	rc, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	header, records, err := ReadRecords(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	var column string
	for _, h := range header {
		if k := strings.ToLower(h); k == "doi" || k == "url" {
			column = h
			break
		}
	}
	if column == "" {
		return nil, &MissingColumnError{Path: filename, Column: "doi"}
	}
	var result []string
	for _, rec := range records {
		if v := strings.TrimSpace(rec[column]); v != "" {
			result = append(result, v)
		}
	}
	return result, nil
}

// Field is an output column, taken from a row column and written under a
// header. With Year set, only the year of a date is written.
type Field struct {
	Column string `yaml:"column"`
	Header string `yaml:"header,omitempty"`
	Year   bool   `yaml:"year,omitempty"`
}

// Layout is the ordered list of output columns.
type Layout []Field

// FullLayout writes all columns under their own name.
func FullLayout() Layout {
	var l Layout
	for _, c := range canonical.AllColumns() {
		l = append(l, Field{Column: c})
	}
	return l
}

// RayyanLayout is the layout expected by the Rayyan screening tool, with a
// Year and a Keywords column.
func RayyanLayout() Layout {
	return Layout{
		{Column: canonical.Title},
		{Column: canonical.Authors},
		{Column: canonical.Affiliations},
		{Column: canonical.Abstract},
		{Column: canonical.Funders},
		{Column: canonical.DOI},
		{Column: canonical.PublicationDate, Header: "Year", Year: true},
		{Column: canonical.Journal},
		{Column: canonical.ISSN},
		{Column: canonical.Volume},
		{Column: canonical.Issue},
		{Column: canonical.Pages},
		{Column: canonical.Publisher},
		{Column: canonical.Subjects, Header: "Keywords"},
		{Column: canonical.Countries},
		{Column: canonical.Regions},
		{Column: canonical.Continents},
		{Column: canonical.AccessRights},
		{Column: canonical.UsageRights},
		{Column: canonical.PDF},
		{Column: canonical.RepositoryLink},
		{Column: canonical.SourceColumn},
		{Column: canonical.OriginalResearch},
	}
}

// Validate checks, that all columns are known and headers are unique.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return errors.New("empty layout")
	}
	seen := make(map[string]bool)
	for _, f := range l {
		if !canonical.IsColumn(f.Column) {
			return fmt.Errorf("layout: unknown column %q", f.Column)
		}
		h := f.header()
		if seen[h] {
			return fmt.Errorf("layout: duplicate header %q", h)
		}
		seen[h] = true
	}
	return nil
}

func (f Field) header() string {
	if f.Header != "" {
		return f.Header
	}
	return f.Column
}

// Header returns the header row.
func (l Layout) Header() []string {
	result := make([]string, len(l))
	for i, f := range l {
		result[i] = f.header()
	}
	return result
}

// Record returns the values of a row in layout order.
func (l Layout) Record(row *canonical.Row) []string {
	result := make([]string, len(l))
	for i, f := range l {
		v := row.Value(f.Column)
		if f.Year {
			v = dateutil.YearOf(v)
		}
		result[i] = v
	}
	return result
}

// Write writes a header and all rows.
func Write(w io.Writer, rows []*canonical.Row, layout Layout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(layout.Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(layout.Record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRows writes rows to a file atomically.
func WriteRows(filename string, rows []*canonical.Row, layout Layout) error {
	f, err := atomicfile.New(filename)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, rows, layout); err != nil {
		_ = f.Abort()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Abort()
		return err
	}
	return f.Close()
}

// WriteLines writes one value per line, e.g. a list of DOIs.
func WriteLines(filename string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return atomicfile.WriteFile(filename, []byte(sb.String()), 0644)
}
