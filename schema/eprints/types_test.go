package eprints

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"
)

func TestItemAuthors(t *testing.T) {
	doc := `{
		"eprintid": 11904,
		"title": "Pearl millet hybrids under terminal drought",
		"creators": [
			{"name": {"family": "Vadez", "given": "V"}},
			{"name": {"family": "Kholova", "given": "J"}},
			{"name": {"family": "Vadez", "given": "V"}},
			{"name": {"family": "Anonymous"}}
		],
		"subjects": ["s1.2", "s2.8"],
		"keywords": "Drought; Pearl millet, Transpiration"
	}`
	var item Item
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		t.Fatal(err)
	}
	want := []string{"Vadez, V", "Kholova, J"}
	if diff := cmp.Diff(want, item.Values("authors")); diff != "" {
		t.Fatalf("authors mismatch (-want +got):\n%s", diff)
	}
	if got := item.Values("abstract"); got != nil {
		t.Fatalf("missing abstract should be nil, got %v", got)
	}
	if got := item.Values("subjects"); len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got := item.Values("no-such-field"); got != nil {
		t.Fatalf("unknown field should be nil")
	}
}
