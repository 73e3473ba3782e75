// Package eprints contains the EPrints JSON export format, as used by the
// ICRISAT open access repository.
package eprints

import (
	"fmt"
	"strings"
)

// Name of a creator.
type Name struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

// Creator is an author of an eprint.
type Creator struct {
	Name Name `json:"name"`
}

// Item is a single eprint. Only fields we map are included.
type Item struct {
	Title       string    `json:"title"`
	Creators    []Creator `json:"creators"`
	Affiliation []string  `json:"affiliation"`
	Funders     []string  `json:"funders"`
	Abstract    string    `json:"abstract"`
	IDNumber    string    `json:"id_number"`
	OfficialURL string    `json:"official_url"`
	URI         string    `json:"uri"`
	Date        string    `json:"date"`
	Publication string    `json:"publication"`
	ISSN        string    `json:"issn"`
	Publisher   string    `json:"publisher"`
	Volume      string    `json:"volume"`
	Number      string    `json:"number"`
	PageRange   string    `json:"pagerange"`
	Keywords    string    `json:"keywords"`
	Subjects    []string  `json:"subjects"`
	Language    string    `json:"language"`
	Type        string    `json:"type"`
}

// Authors returns creator names as "family, given", without duplicates.
// Creators missing either part are skipped.
func (it *Item) Authors() (result []string) {
	seen := make(map[string]bool)
	for _, c := range it.Creators {
		if c.Name.Family == "" || c.Name.Given == "" {
			continue
		}
		name := fmt.Sprintf("%s, %s", c.Name.Family, c.Name.Given)
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}

// Values exposes the fields of an eprint by their export name. The derived
// field "authors" holds the formatted creator names.
func (it *Item) Values(field string) []string {
	switch field {
	case "title":
		return single(it.Title)
	case "authors":
		return it.Authors()
	case "affiliation":
		return it.Affiliation
	case "funders":
		return it.Funders
	case "abstract":
		return single(it.Abstract)
	case "id_number":
		return single(it.IDNumber)
	case "official_url":
		return single(it.OfficialURL)
	case "uri":
		return single(it.URI)
	case "date":
		return single(it.Date)
	case "publication":
		return single(it.Publication)
	case "issn":
		return single(it.ISSN)
	case "publisher":
		return single(it.Publisher)
	case "volume":
		return single(it.Volume)
	case "number":
		return single(it.Number)
	case "pagerange":
		return single(it.PageRange)
	case "keywords":
		return single(it.Keywords)
	case "subjects":
		return it.Subjects
	case "language":
		return single(it.Language)
	case "type":
		return single(it.Type)
	}
	return nil
}

func single(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}
