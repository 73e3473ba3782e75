package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/lookup"
	"github.com/ilri/cgmerge/schema/canonical"
)

// registry is a fake for all lookups, keyed by DOI.
type registry struct {
	mu           sync.Mutex
	calls        map[string]int
	licenses     map[string]string
	access       map[string]string
	abstracts    map[string]string
	publishers   map[string]string
	affiliations map[string][]string
	pdfs         map[string]string
	fail         map[string]bool
}

func (r *registry) call(kind, doi string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[kind]++
	if r.fail[doi] {
		return fmt.Errorf("connection reset")
	}
	return nil
}

func (r *registry) License(_ context.Context, doi string) (string, error) {
	if err := r.call("license", doi); err != nil {
		return "", err
	}
	return r.licenses[doi], nil
}

func (r *registry) AccessRights(_ context.Context, doi string) (string, error) {
	if err := r.call("access", doi); err != nil {
		return "", err
	}
	v, ok := r.access[doi]
	if !ok {
		return "", lookup.ErrNotFound
	}
	return v, nil
}

func (r *registry) Abstract(_ context.Context, doi string) (string, error) {
	if err := r.call("abstract", doi); err != nil {
		return "", err
	}
	return r.abstracts[doi], nil
}

func (r *registry) HasAbstract(_ context.Context, doi string) (bool, error) {
	if err := r.call("has-abstract", doi); err != nil {
		return false, err
	}
	_, ok := r.abstracts[doi]
	return ok, nil
}

func (r *registry) Publisher(_ context.Context, doi string) (string, error) {
	if err := r.call("publisher", doi); err != nil {
		return "", err
	}
	return r.publishers[doi], nil
}

func (r *registry) Affiliations(_ context.Context, doi string) ([]string, error) {
	if err := r.call("affiliations", doi); err != nil {
		return nil, err
	}
	return r.affiliations[doi], nil
}

func (r *registry) PDF(doi string) (string, bool) {
	v, ok := r.pdfs[doi]
	return v, ok
}

func newEnricher(r *registry, opts ...Option) *Enricher {
	opts = append([]Option{
		WithLicenses(r),
		WithAccess(r),
		WithWorks(r),
		WithAffiliations(r),
		WithPDFs(r),
	}, opts...)
	return New(opts...)
}

func row(kv ...string) *canonical.Row {
	r := canonical.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

const doi1 = "https://doi.org/10.1016/j.gfs.2019.100306"

func TestRowFillsMissingFields(t *testing.T) {
	reg := &registry{
		licenses:     map[string]string{doi1: "CC-BY-4.0"},
		access:       map[string]string{doi1: "Gold Open Access"},
		abstracts:    map[string]string{doi1: "Drought in Kenya and Ethiopia."},
		publishers:   map[string]string{doi1: "Elsevier BV"},
		affiliations: map[string][]string{doi1: {"ILRI, Nairobi", "Cornell University; Ithaca", "ILRI, Nairobi"}},
		pdfs:         map[string]string{doi1: "10.1016-j.gfs.2019.100306.pdf"},
	}
	r := row(
		canonical.Title, "Maize under drought",
		canonical.DOI, doi1,
		canonical.UsageRights, "Copyrighted; all rights reserved",
		canonical.AccessRights, "Closed access",
		canonical.PublicationDate, "2015",
		canonical.OnlineDate, "2014-06",
	)
	if err := newEnricher(reg).Row(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		canonical.Title:           "Maize under drought",
		canonical.DOI:             doi1,
		canonical.UsageRights:     "CC-BY-4.0",
		canonical.AccessRights:    "Gold Open Access",
		canonical.Abstract:        "Drought in Kenya and Ethiopia.",
		canonical.Publisher:       "Elsevier",
		canonical.Affiliations:    "International Livestock Research Institute; Cornell University, Ithaca",
		canonical.PDF:             "10.1016-j.gfs.2019.100306.pdf",
		canonical.PublicationDate: "2014-06",
		canonical.OnlineDate:      "2014-06",
		canonical.Countries:       "Kenya; Ethiopia",
		canonical.Regions:         "Eastern Africa",
		canonical.Continents:      "Africa",
	}
	if diff := cmp.Diff(want, r.Map()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRowKeepsRepositoryValues(t *testing.T) {
	reg := &registry{
		licenses:   map[string]string{},
		publishers: map[string]string{doi1: "Elsevier BV"},
	}
	r := row(
		canonical.Title, "T",
		canonical.DOI, doi1,
		canonical.UsageRights, "Attribution 4.0 International",
		canonical.AccessRights, "Open access",
		canonical.Publisher, "Informa UK Limited",
		canonical.Abstract, "Kept, since the license is CC.",
		canonical.Countries, "Tanzania, United Republic of",
		canonical.PublicationDate, "2016",
	)
	if err := newEnricher(reg).Row(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	for col, want := range map[string]string{
		canonical.UsageRights:  "CC-BY-4.0",
		canonical.AccessRights: "Open Access",
		canonical.Publisher:    "Taylor & Francis",
		canonical.Abstract:     "Kept, since the license is CC.",
		canonical.Countries:    "Tanzania",
		canonical.Regions:      "Eastern Africa",
	} {
		if got := r.Value(col); got != want {
			t.Errorf("%s: got %q, want %q", col, got, want)
		}
	}
	if reg.calls["publisher"] != 0 || reg.calls["abstract"] != 0 || reg.calls["has-abstract"] != 0 {
		t.Errorf("unexpected lookups: %v", reg.calls)
	}
}

func TestFilterAbstract(t *testing.T) {
	const doi2 = "https://doi.org/10.1/closed"
	reg := &registry{
		abstracts: map[string]string{doi1: "On file."},
		fail:      map[string]bool{"https://doi.org/10.1/flaky": true},
	}
	testCases := []struct {
		about string
		row   *canonical.Row
		want  string
	}{
		{"cc license keeps abstract", row(canonical.DOI, doi2, canonical.Abstract, "A", canonical.UsageRights, "CC-BY-NC-4.0"), "A"},
		{"abstract on file", row(canonical.DOI, doi1, canonical.Abstract, "A"), "A"},
		{"no abstract on file", row(canonical.DOI, doi2, canonical.Abstract, "A"), ""},
		{"copyrighted", row(canonical.DOI, doi2, canonical.Abstract, "A", canonical.UsageRights, "Copyrighted; all rights reserved"), ""},
		{"lookup failure", row(canonical.DOI, "https://doi.org/10.1/flaky", canonical.Abstract, "A"), ""},
		{"no doi", row(canonical.Abstract, "A"), ""},
		{"no abstract", row(canonical.DOI, doi1), ""},
	}
	e := New(WithWorks(reg))
	for _, tc := range testCases {
		t.Run(tc.about, func(t *testing.T) {
			e.filterAbstract(context.Background(), tc.row)
			if got := tc.row.Value(canonical.Abstract); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFilterAbstractOffline(t *testing.T) {
	r := row(canonical.DOI, doi1, canonical.Abstract, "A")
	New().filterAbstract(context.Background(), r)
	if r.Has(canonical.Abstract) {
		t.Errorf("abstract should be removed without a registry")
	}
}

func TestLookupFailuresAreNotFatal(t *testing.T) {
	const flaky = "https://doi.org/10.1/flaky"
	reg := &registry{fail: map[string]bool{flaky: true}}
	r := row(
		canonical.Title, "T",
		canonical.DOI, flaky,
		canonical.UsageRights, "CC-BY-4.0",
		canonical.AccessRights, "Limited Access",
		canonical.PublicationDate, "2020",
	)
	if err := newEnricher(reg).Row(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if got := r.Value(canonical.UsageRights); got != "CC-BY-4.0" {
		t.Errorf("got %q", got)
	}
	if got := r.Value(canonical.AccessRights); got != "Limited Access" {
		t.Errorf("got %q", got)
	}
	if r.Has(canonical.PDF) {
		t.Errorf("unexpected pdf")
	}
}

func TestAffiliationFallback(t *testing.T) {
	const flaky = "https://doi.org/10.1/flaky"
	primary := &registry{
		affiliations: map[string][]string{doi1: {" "}},
		fail:         map[string]bool{flaky: true},
	}
	fallback := &registry{affiliations: map[string][]string{
		doi1:  {"Cornell University", "CIMMYT"},
		flaky: {"Cornell University"},
	}}
	testCases := []struct {
		doi    string
		result string
	}{
		{doi1, "Cornell University; International Maize and Wheat Improvement Center"},
		{flaky, "Cornell University"},
	}
	for _, tc := range testCases {
		r := row(canonical.Title, "T", canonical.DOI, tc.doi, canonical.PublicationDate, "2020")
		e := newEnricher(primary, WithAffiliations(primary, fallback))
		if err := e.Row(context.Background(), r); err != nil {
			t.Fatal(err)
		}
		if got := r.Value(canonical.Affiliations); got != tc.result {
			t.Errorf("%s: got %q, want %q", tc.doi, got, tc.result)
		}
	}
	if n := fallback.calls["affiliations"]; n != 2 {
		t.Errorf("got %d fallback lookups, want 2", n)
	}

	// The fallback is not asked, once the first lookup found affiliations.
	primary = &registry{affiliations: map[string][]string{doi1: {"Cornell University"}}}
	fallback = &registry{}
	r := row(canonical.Title, "T", canonical.DOI, doi1, canonical.PublicationDate, "2020")
	if err := newEnricher(primary, WithAffiliations(primary, fallback)).Row(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if len(fallback.calls) != 0 {
		t.Errorf("unexpected fallback lookups: %v", fallback.calls)
	}
}

func TestNonCanonicalDOIsAreNotLookedUp(t *testing.T) {
	reg := &registry{}
	r := row(canonical.Title, "T", canonical.DOI, "https://hdl.handle.net/10568/1", canonical.PublicationDate, "2020")
	if err := newEnricher(reg).Row(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if len(reg.calls) != 0 {
		t.Errorf("unexpected lookups: %v", reg.calls)
	}
}

func TestRunDateErrors(t *testing.T) {
	rows := []*canonical.Row{
		row(canonical.Title, "a", canonical.PublicationDate, "2015"),
		row(canonical.Title, "b"),
		row(canonical.Title, "c", canonical.PublicationDate, "15/03/2016"),
	}
	result, err := New().Run(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DateErrors) != 2 {
		t.Fatalf("got %d date errors, want 2", len(result.DateErrors))
	}
	if !errors.Is(result.DateErrors[0].Err, dateutil.ErrNoDate) {
		t.Errorf("got %v, want ErrNoDate", result.DateErrors[0].Err)
	}
	if !errors.Is(result.DateErrors[1].Err, dateutil.ErrMalformedDate) {
		t.Errorf("got %v, want ErrMalformedDate", result.DateErrors[1].Err)
	}
	if rows[2].Has(canonical.PublicationDate) {
		t.Errorf("malformed date should be removed")
	}
	if got := result.DateErrors[1].Issue; got != "15/03/2016" {
		t.Errorf("got issue %q, want original value", got)
	}
	if got := rows[0].Value(canonical.PublicationDate); got != "2015" {
		t.Errorf("got %q", got)
	}
}

func TestRunPreservesOrder(t *testing.T) {
	reg := &registry{publishers: make(map[string]string)}
	var rows []*canonical.Row
	var want []string
	for i := 0; i < 50; i++ {
		doi := fmt.Sprintf("https://doi.org/10.1/%d", i)
		reg.publishers[doi] = fmt.Sprintf("Publisher %d", i)
		rows = append(rows, row(canonical.DOI, doi, canonical.PublicationDate, "2020"))
		want = append(want, doi)
	}
	result, err := newEnricher(reg, WithWorkers(8)).Run(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for i, r := range result.Rows {
		got = append(got, r.Value(canonical.DOI))
		if p := r.Value(canonical.Publisher); p != fmt.Sprintf("Publisher %d", i) {
			t.Errorf("row %d: got publisher %q", i, p)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows := []*canonical.Row{row(canonical.Title, "a", canonical.PublicationDate, "2015")}
	if _, err := New().Run(ctx, rows); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
