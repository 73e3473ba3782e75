package openalex

import "strings"

// Authorship links an author to a work, with the affiliation strings as
// printed on the paper.
type Authorship struct {
	RawAffiliationStrings []string `json:"raw_affiliation_strings"`
}

// Work entity in OpenAlex, reduced to the fields used for enrichment.
type Work struct {
	Authorships []Authorship `json:"authorships"`
}

// RawAffiliations returns all raw affiliation strings of all authorships, in
// order of appearance and without exact duplicates.
func (w *Work) RawAffiliations() (result []string) {
	seen := make(map[string]bool)
	for _, a := range w.Authorships {
		for _, s := range a.RawAffiliationStrings {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
