package crossref

import "github.com/segmentio/encoding/json"

// Affiliation of an author.
type Affiliation struct {
	Name string `json:"name"`
}

// Author is a crossref author, reduced to its affiliations.
type Author struct {
	Affiliation []Affiliation `json:"affiliation,omitempty"`
}

// License is a license assertion for one content version of a work, e.g.
// "vor" (version of record), "am" (accepted manuscript), "tdm" (text and
// data mining) or "unspecified".
type License struct {
	ContentVersion string `json:"content-version,omitempty"`
	URL            string
}

// Work is a crossref API works document, as documented in
// https://www.crossref.org/documentation/retrieve-metadata/rest-api/. This
// struct only contains the message part and only fields we use for
// enrichment.
type Work struct {
	Abstract  string          `json:"abstract"`
	Author    json.RawMessage `json:"author"` // some deposits have malformed authors
	License   []License       `json:"license,omitempty"`
	Publisher string          `json:"publisher,omitempty"`
}

// Authors decodes the author list, if it is well formed.
func (w *Work) Authors() ([]Author, error) {
	if len(w.Author) == 0 {
		return nil, nil
	}
	var authors []Author
	if err := json.Unmarshal(w.Author, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// WorkResponse wraps a single work, as returned by /works/{doi}.
type WorkResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// LicenseURLs returns license URLs keyed by content version.
func (w *Work) LicenseURLs() map[string]string {
	m := make(map[string]string)
	for _, l := range w.License {
		m[l.ContentVersion] = l.URL
	}
	return m
}
