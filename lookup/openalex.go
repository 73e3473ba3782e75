package lookup

import (
	"context"
	"net/http"

	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/openalex"
)

// OpenAlex looks up works in the OpenAlex API.
type OpenAlex struct {
	base
	Endpoint string
	Email    string
}

// NewOpenAlex returns a client for api.openalex.org.
func NewOpenAlex(client Doer, email string) *OpenAlex {
	return &OpenAlex{
		base:     newBase(client),
		Endpoint: "https://api.openalex.org/works",
		Email:    email,
	}
}

// Work fetches a work by DOI, using the doi: namespace of the API.
func (o *OpenAlex) Work(ctx context.Context, doi string) (*openalex.Work, error) {
	if err := checkDOI(doi); err != nil {
		return nil, err
	}
	link := workLink(o.Endpoint, "doi:"+normal.BareDOI(doi), "mailto", o.Email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	var w openalex.Work
	if err := o.getJSON(req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Affiliations returns the raw affiliation strings of all authors.
func (o *OpenAlex) Affiliations(ctx context.Context, doi string) ([]string, error) {
	w, err := o.Work(ctx, doi)
	if err != nil {
		return nil, err
	}
	return w.RawAffiliations(), nil
}
