package canonical

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowSetBlankIsAbsent(t *testing.T) {
	r := NewRow()
	r.Set(Title, "  Climate smart rice  ")
	if v, ok := r.Get(Title); !ok || v != "Climate smart rice" {
		t.Fatalf("got %q (%v), want trimmed title", v, ok)
	}
	r.Set(Title, "   ")
	if _, ok := r.Get(Title); ok {
		t.Fatalf("blank value should remove column")
	}
	r.Set(DOI, "")
	if r.Has(DOI) {
		t.Fatalf("empty value should be absent")
	}
	if r.Value(DOI) != "" {
		t.Fatalf("absent value should render as empty string")
	}
}

func TestRowFromMap(t *testing.T) {
	r := RowFromMap(map[string]string{
		Title:    "A",
		DOI:      "",
		Subjects: "maize; drought",
	})
	want := []string{Subjects, Title}
	if diff := cmp.Diff(want, r.Columns()); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestRowClone(t *testing.T) {
	r := NewRow()
	r.Set(Title, "A")
	c := r.Clone()
	c.Set(Title, "B")
	if r.Value(Title) != "A" {
		t.Fatalf("clone shares state with original")
	}
}

func TestParseSource(t *testing.T) {
	var cases = []struct {
		in   string
		want Source
		err  error
	}{
		{"cgspace", CGSpace, nil},
		{" IFPRI ", IFPRI, nil},
		{"ICRISAT OAR", ICRISAT, nil},
		{"cimmyt dspace", CIMMYT, nil},
		{"scopus", "", ErrUnknownSource},
	}
	for _, c := range cases {
		got, err := ParseSource(c.in)
		if !errors.Is(err, c.err) {
			t.Fatalf("ParseSource(%q) err = %v, want %v", c.in, err, c.err)
		}
		if got != c.want {
			t.Fatalf("ParseSource(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSourceKeyRoundtrip(t *testing.T) {
	for _, s := range Sources {
		got, err := ParseSource(s.Key())
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("got %v, want %v", got, s)
		}
	}
}
