package dspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"
)

const discoverPage = `{
  "_embedded": {
    "searchResult": {
      "_embedded": {
        "objects": [
          {
            "_embedded": {
              "indexableObject": {
                "uuid": "4d5b0c36-6b71-4bf0-9a3f-0e0b1f6f3a11",
                "handle": "10568/113511",
                "metadata": {
                  "dc.title": [{"value": "Climate risk profiles", "language": "en_US"}],
                  "dc.contributor.author": [{"value": "Doe, J."}, {"value": " "}, {"value": "Roe, R."}]
                }
              }
            }
          }
        ]
      },
      "_links": {"next": {"href": "https://cgspace.cgiar.org/server/api/discover/search/objects?page=1"}},
      "page": {"number": 0, "size": 1, "totalElements": 2, "totalPages": 2}
    }
  }
}`

func TestDiscoverResponse(t *testing.T) {
	var resp DiscoverResponse
	if err := json.Unmarshal([]byte(discoverPage), &resp); err != nil {
		t.Fatal(err)
	}
	items := resp.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if got := items[0].Values("dc.title"); !cmp.Equal(got, []string{"Climate risk profiles"}) {
		t.Fatalf("unexpected title: %v", got)
	}
	want := []string{"Doe, J.", "Roe, R."}
	if diff := cmp.Diff(want, items[0].Values("dc.contributor.author")); diff != "" {
		t.Fatalf("authors mismatch (-want +got):\n%s", diff)
	}
	if got := items[0].Values("dc.identifier.doi"); len(got) != 0 {
		t.Fatalf("missing field should yield no values, got %v", got)
	}
	if !resp.IsSearchResult() {
		t.Fatalf("expected search result")
	}
	var item DiscoverResponse
	if err := json.Unmarshal([]byte(`{"uuid": "x", "metadata": {}}`), &item); err != nil {
		t.Fatal(err)
	}
	if item.IsSearchResult() || len(item.Items()) != 0 {
		t.Fatalf("single item mistaken for a search result")
	}
}

func TestLegacyItemValues(t *testing.T) {
	doc := `{"uuid": "x", "handle": "10883/1234", "metadata": [
		{"key": "dc.subject", "value": "Maize"},
		{"key": "dc.title", "value": "Heat tolerance"},
		{"key": "dc.subject", "value": "Drought"}
	]}`
	var item LegacyItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		t.Fatal(err)
	}
	want := []string{"Maize", "Drought"}
	if diff := cmp.Diff(want, item.Values("dc.subject")); diff != "" {
		t.Fatalf("subjects mismatch (-want +got):\n%s", diff)
	}
}
