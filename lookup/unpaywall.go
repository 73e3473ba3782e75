package lookup

import (
	"context"
	"net/http"

	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/unpaywall"
)

// Unpaywall looks up the open access status of a DOI.
type Unpaywall struct {
	base
	Endpoint string
	Email    string
}

// NewUnpaywall returns a client for api.unpaywall.org. Unpaywall asks for an
// email with every request.
func NewUnpaywall(client Doer, email string) *Unpaywall {
	return &Unpaywall{
		base:     newBase(client),
		Endpoint: "https://api.unpaywall.org/v2",
		Email:    email,
	}
}

// Work fetches the unpaywall record of a canonical DOI.
func (u *Unpaywall) Work(ctx context.Context, doi string) (*unpaywall.Work, error) {
	if err := checkDOI(doi); err != nil {
		return nil, err
	}
	link := workLink(u.Endpoint, normal.BareDOI(doi), "email", u.Email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	var w unpaywall.Work
	if err := u.getJSON(req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// AccessRights returns e.g. "Gold Open Access" or "Limited Access".
func (u *Unpaywall) AccessRights(ctx context.Context, doi string) (string, error) {
	w, err := u.Work(ctx, doi)
	if err != nil {
		return "", err
	}
	return w.AccessRights(), nil
}
