package partition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/schema/canonical"
)

func row(kv ...string) *canonical.Row {
	r := canonical.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

func titles(s Subset) (result []string) {
	for _, r := range s.Rows {
		result = append(result, r.Value(canonical.Title))
	}
	return result
}

var rows = []*canonical.Row{
	row(canonical.Title, "a", canonical.DOI, "https://doi.org/10.1/a", canonical.PDF, "10.1-a.pdf", canonical.PublicationDate, "2015"),
	row(canonical.Title, "b", canonical.DOI, "https://doi.org/10.1/b", canonical.PublicationDate, "2011-12"),
	row(canonical.Title, "c", canonical.DOI, "https://hdl.handle.net/10568/1", canonical.PublicationDate, "2024-01-01"),
	row(canonical.Title, "d"),
}

func TestPartition(t *testing.T) {
	lists := []*List{
		NewList("used-in-review", []string{"10.1/A", "https://doi.org/10.1/b", ""}),
		NewList("drought", []string{"doi:10.1/b", "10.1/zzz"}),
		NewList("empty", nil),
	}
	if lists[0].Len() != 2 {
		t.Errorf("got %d dois, want 2", lists[0].Len())
	}
	subsets := Partition(rows, lists)
	want := map[string][]string{
		"used-in-review": {"a", "b"},
		"drought":        {"b"},
		"empty":          nil,
	}
	for _, s := range subsets {
		if diff := cmp.Diff(want[s.Name], titles(s)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", s.Name, diff)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	if diff := cmp.Diff([]string{"c", "d"}, titles(MissingDOI(rows))); diff != "" {
		t.Errorf("missing doi mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, titles(WithDOI(rows))); diff != "" {
		t.Errorf("with doi mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c", "d"}, titles(MissingPDF(rows))); diff != "" {
		t.Errorf("missing pdf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, titles(OutsideWindow(rows, dateutil.DefaultWindow))); diff != "" {
		t.Errorf("outside window mismatch (-want +got):\n%s", diff)
	}
}

func TestFlag(t *testing.T) {
	rs := []*canonical.Row{
		row(canonical.DOI, "https://doi.org/10.1/a"),
		row(canonical.DOI, "https://doi.org/10.1/b"),
		row(canonical.Title, "no doi"),
	}
	n := Flag(rs, NewList("original", []string{"10.1/a"}), canonical.OriginalResearch)
	if n != 1 {
		t.Errorf("got %d flagged, want 1", n)
	}
	var got []string
	for _, r := range rs {
		got = append(got, r.Value(canonical.OriginalResearch))
	}
	if diff := cmp.Diff([]string{"Yes", "No", "No"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
