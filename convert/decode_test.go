package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilri/cgmerge/schema/canonical"
	"github.com/ilri/cgmerge/schema/contentdm"
	"github.com/ilri/cgmerge/schema/dspace"
)

func TestDecodeRecordsLines(t *testing.T) {
	data := `{"uuid": "a", "metadata": {"dc.title": [{"value": "First"}]}}

{"uuid": "b", "metadata": {"dc.title": [{"value": "Second"}]}}
`
	records, err := DecodeRecords(strings.NewReader(data), canonical.CGSpace)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	item, ok := records[1].(*dspace.Item)
	if !ok {
		t.Fatalf("got %T, want *dspace.Item", records[1])
	}
	if got := item.Values("dc.title"); len(got) != 1 || got[0] != "Second" {
		t.Errorf("got %v", got)
	}
}

func TestDecodeRecordsDiscoverPage(t *testing.T) {
	data := `{"_embedded": {"searchResult": {"_embedded": {"objects": [` +
		`{"_embedded": {"indexableObject": {"uuid": "a", "metadata": {"dc.title": [{"value": "First"}]}}}},` +
		`{"_embedded": {"indexableObject": {"uuid": "b", "metadata": {"dc.title": [{"value": "Second"}]}}}}]}}}}
{"_embedded": {"searchResult": {"_embedded": {"objects": []}}}}
{"uuid": "c", "metadata": {"dc.title": [{"value": "Parsing \"searchResult\" pages"}]}}
`
	records, err := DecodeRecords(strings.NewReader(data), canonical.CGSpace)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, r := range records {
		if _, ok := r.(*dspace.Item); !ok {
			t.Fatalf("got %T, want *dspace.Item", r)
		}
		titles = append(titles, r.Values("dc.title")...)
	}
	want := []string{"First", "Second", `Parsing "searchResult" pages`}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRecordsArray(t *testing.T) {
	data := `  [{"title": "Rice yields", "creato": "Doe, A.", "descri": {}},
	{"title": "Wheat"}]`
	records, err := DecodeRecords(strings.NewReader(data), canonical.IFPRI)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if _, ok := records[0].(*contentdm.Item); !ok {
		t.Fatalf("got %T", records[0])
	}
	if got := records[0].Values("descri"); got != nil {
		t.Errorf("expected empty placeholder to be dropped, got %v", got)
	}
	row := mappings[canonical.IFPRI].Extract(records[0])
	if got := row.Value(canonical.Authors); got != "Doe, A." {
		t.Errorf("got authors %q", got)
	}
}

func TestDecodeRecordsIRRI(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(`{"title": "Upland rice", "doi": "10.1/x"}`), canonical.IRRI)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Values("doi")[0] != "10.1/x" {
		t.Errorf("got %v", records)
	}
}

func TestDecodeRecordsErrors(t *testing.T) {
	if _, err := DecodeRecords(strings.NewReader("{}"), canonical.Source("Nowhere")); !errors.Is(err, canonical.ErrUnknownSource) {
		t.Errorf("got %v, want ErrUnknownSource", err)
	}
	if _, err := DecodeRecords(strings.NewReader("{}\n{oops\n"), canonical.CGSpace); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("got %v, want error on line 2", err)
	}
	records, err := DecodeRecords(strings.NewReader("  \n"), canonical.CGSpace)
	if err != nil || len(records) != 0 {
		t.Errorf("got %v, %v", records, err)
	}
}
