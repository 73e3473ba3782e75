package lookup

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/crossref"
)

// Copyrighted is the usage rights value for works, whose publisher only
// grants a text and data mining license.
const Copyrighted = "Copyrighted; all rights reserved"

// publisherLicenses are license URLs of large publishers, which do not grant
// reuse rights.
var publisherLicenses = []string{
	"https://www.elsevier.com/tdm/userlicense/1.0/",
	"http://www.springer.com/tdm",
	"https://www.springer.com/tdm",
	"http://onlinelibrary.wiley.com/termsAndConditions#vor",
	"http://www.elsevier.com/open-access/userlicense/1.0/",
	"https://www.springernature.com/gp/researchers/text-and-data-mining",
	"https://www.cambridge.org/core/terms",
	"https://academic.oup.com/pages/standard-publication-reuse-rights",
	"https://www.elsevier.com/legal/tdmrep-license",
	"http://doi.wiley.com/10.1002/tdm_license_1.1",
}

// licensePreference lists content versions in the order we trust them.
var licensePreference = []string{"am", "vor", "tdm", "unspecified"}

// Crossref looks up works in the Crossref REST API.
type Crossref struct {
	base
	Endpoint string
	Email    string // sent as mailto, for the polite pool
}

// NewCrossref returns a client for api.crossref.org.
func NewCrossref(client Doer, email string) *Crossref {
	return &Crossref{
		base:     newBase(client),
		Endpoint: "https://api.crossref.org/works",
		Email:    email,
	}
}

// Work fetches the work for a canonical DOI.
func (c *Crossref) Work(ctx context.Context, doi string) (*crossref.Work, error) {
	if err := checkDOI(doi); err != nil {
		return nil, err
	}
	link := workLink(c.Endpoint, normal.BareDOI(doi), "mailto", c.Email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	var wr crossref.WorkResponse
	if err := c.getJSON(req, &wr); err != nil {
		return nil, err
	}
	if wr.Status != "ok" {
		return nil, &StatusError{URL: link, StatusCode: http.StatusOK}
	}
	return &wr.Message, nil
}

// License returns the usage rights for a DOI, like "CC-BY-4.0" or
// Copyrighted, or the empty string, if they cannot be determined.
func (c *Crossref) License(ctx context.Context, doi string) (string, error) {
	w, err := c.Work(ctx, doi)
	if err != nil {
		return "", err
	}
	return ParseLicense(w.LicenseURLs()), nil
}

// Abstract returns the abstract of a work as plain text.
func (c *Crossref) Abstract(ctx context.Context, doi string) (string, error) {
	w, err := c.Work(ctx, doi)
	if err != nil {
		return "", err
	}
	return StripJATS(w.Abstract), nil
}

// HasAbstract reports whether Crossref has an abstract on file for a DOI.
func (c *Crossref) HasAbstract(ctx context.Context, doi string) (bool, error) {
	w, err := c.Work(ctx, doi)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(w.Abstract) != "", nil
}

// Publisher returns the publisher name as registered with Crossref.
func (c *Crossref) Publisher(ctx context.Context, doi string) (string, error) {
	w, err := c.Work(ctx, doi)
	if err != nil {
		return "", err
	}
	return normal.CleanString(w.Publisher), nil
}

// Affiliations returns the distinct affiliation names of all authors. A
// malformed author list is reported as an error.
func (c *Crossref) Affiliations(ctx context.Context, doi string) ([]string, error) {
	w, err := c.Work(ctx, doi)
	if err != nil {
		return nil, err
	}
	authors, err := w.Authors()
	if err != nil {
		return nil, fmt.Errorf("%s: authors: %w", doi, err)
	}
	var (
		seen   = make(map[string]bool)
		result []string
	)
	for _, a := range authors {
		for _, aff := range a.Affiliation {
			name := normal.CleanString(aff.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			result = append(result, name)
		}
	}
	return result, nil
}

// ParseLicense picks a license URL by content version and maps it to a short
// identifier. Creative Commons URLs become e.g. "CC-BY-4.0", CC0-1.0 or
// "CC-BY-3.0-IGO", known publisher licenses become Copyrighted. Anything else
// is unknown and yields the empty string.
func ParseLicense(urls map[string]string) string {
	var license string
	for _, v := range licensePreference {
		if u, ok := urls[v]; ok {
			license = strings.TrimSpace(u)
			break
		}
	}
	if license == "" {
		return ""
	}
	if strings.Contains(license, "creativecommons.org") {
		license = creativeCommons(license)
	}
	for _, prefix := range publisherLicenses {
		if strings.HasPrefix(license, prefix) {
			return Copyrighted
		}
	}
	if strings.Contains(license, "http") {
		return ""
	}
	return license
}

// creativeCommons turns a license URL into an identifier, or returns it
// unchanged, if it cannot be parsed.
func creativeCommons(u string) string {
	if strings.Contains(u, "publicdomain/zero/1.0") {
		return "CC0-1.0"
	}
	u = strings.Replace(u, "/legalcode", "", 1)
	u = strings.Replace(u, "/deed.en_GB", "", 1)
	u = strings.TrimRight(u, "/")
	parts := strings.Split(u, "/")
	n := 2
	if strings.Contains(u, "igo") {
		n = 3
	}
	if len(parts) < n+3 {
		return u
	}
	return strings.ToUpper("CC-" + strings.Join(parts[len(parts)-n:], "-"))
}

// StripJATS removes JATS markup from an abstract. Titles, like "Abstract",
// are dropped and paragraphs separated by a space.
func StripJATS(s string) string {
	if !strings.Contains(s, "<") {
		return normal.CleanString(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return normal.CleanString(s)
	}
	doc.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return goquery.NodeName(sel) == "jats:title"
	}).Remove()
	var paragraphs []string
	doc.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		name := goquery.NodeName(sel)
		return name == "jats:p" || name == "p"
	}).Each(func(_ int, sel *goquery.Selection) {
		if t := normal.CleanString(sel.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) == 0 {
		return normal.CleanString(doc.Text())
	}
	return strings.Join(paragraphs, " ")
}
