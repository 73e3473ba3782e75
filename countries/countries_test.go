package countries

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTable(t *testing.T) {
	table := Default()
	if table.Len() < 249 {
		t.Fatalf("embedded table too small: %d", table.Len())
	}
	c, ok := table.Lookup("united republic of tanzania")
	if !ok {
		t.Fatalf("lookup by official name failed")
	}
	if c.Name != "Tanzania" || c.Region != "Eastern Africa" || c.Continent != "Africa" {
		t.Fatalf("unexpected country: %+v", c)
	}
	if c, ok := table.Lookup("KEN"); !ok || c.Name != "Kenya" {
		t.Fatalf("lookup by iso3 failed: %+v", c)
	}
}

func TestStandardize(t *testing.T) {
	testCases := []struct {
		raw    string
		result string
	}{
		{"", ""},
		{"Kenya; Tanzania, United Republic of", "Kenya; Tanzania"},
		{"Viet Nam; Vietnam", "Vietnam"},
		{"Tibet; Ethiopia", "Ethiopia"},
		{"Congo, The Democratic Republic of the", "DR Congo"},
		{"Atlantis", ""},
		{"Maldives; Samoa; Greece; Iceland; Taiwan; Kenya", "Maldives; Samoa; Greece; Iceland; Taiwan; Kenya"},
		{"Korea, Democratic People's Republic of; Korea", "North Korea; South Korea"},
		{"Hong Kong SAR; Curacao; Kosovo", "Hong Kong; Curaçao; Kosovo"},
	}
	for _, tc := range testCases {
		if got := Standardize(tc.raw); got != tc.result {
			t.Errorf("Standardize(%q) = %q, want %q", tc.raw, got, tc.result)
		}
	}
}

func TestRegionsAndContinents(t *testing.T) {
	s := "Kenya; Uganda; India; Peru"
	if got, want := Regions(s), "Eastern Africa; Southern Asia; South America"; got != want {
		t.Errorf("Regions = %q, want %q", got, want)
	}
	if got, want := Continents(s), "Africa; Asia; Americas"; got != want {
		t.Errorf("Continents = %q, want %q", got, want)
	}
	s = "Maldives; Samoa; Greece; Puerto Rico"
	if got, want := Regions(s), "Southern Asia; Polynesia; Southern Europe; Caribbean"; got != want {
		t.Errorf("Regions = %q, want %q", got, want)
	}
	if got, want := Continents(s), "Asia; Oceania; Europe; Americas"; got != want {
		t.Errorf("Continents = %q, want %q", got, want)
	}
	if got := Regions(""); got != "" {
		t.Errorf("Regions of nothing should be empty, got %q", got)
	}
}

func TestDetect(t *testing.T) {
	testCases := []struct {
		text   string
		result []string
	}{
		{"", nil},
		{"Maize yields in Kenya and Ethiopia under drought", []string{"Kenya", "Ethiopia"}},
		{"Smallholders in Nigeria", []string{"Nigeria"}},
		{"Sweet potato in Papua New Guinea", []string{"Papua New Guinea"}},
		{"Rice in the Lao People's Democratic Republic and Laos", []string{"Laos"}},
		{"Evidence from the Niger basin and Niger", []string{"Niger"}},
		{"kenya in lowercase is not matched", nil},
		{"Sea level rise in the Maldives and Samoa", []string{"Maldives", "Samoa"}},
		{"Reef fisheries of American Samoa and Samoa", []string{"American Samoa", "Samoa"}},
		{"Trade between the Dominican Republic and Dominica", []string{"Dominican Republic", "Dominica"}},
		{"Famine in the Democratic People's Republic of Korea", []string{"North Korea"}},
	}
	for _, tc := range testCases {
		got := Detect(tc.text)
		if diff := cmp.Diff(tc.result, got); diff != "" {
			t.Errorf("Detect(%q) mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestLoad(t *testing.T) {
	doc := `name_short,name_official,iso3,aliases,region,continent
Atlantis,Kingdom of Atlantis,ATL,Poseidonis|Atlantica,Lost Lands,Oceania
`
	table, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Standardize("atlantica"); got != "Atlantis" {
		t.Errorf("got %q", got)
	}
	if _, err := Load(strings.NewReader("a,b\n")); err == nil {
		t.Errorf("expected error for wrong number of fields")
	}
}
