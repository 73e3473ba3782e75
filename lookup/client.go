// Package lookup queries external registries for a single DOI: Crossref for
// licenses, abstracts and publishers, Unpaywall for open access status and
// OpenAlex for raw affiliation strings. All lookups go through a Doer, which
// is usually a CachedClient wrapping a retrying HTTP client.
package lookup

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ilri/cgmerge"
	"github.com/ilri/cgmerge/normal"
	"github.com/segmentio/encoding/json"
	"github.com/sethgrid/pester"
)

// ErrNotFound is returned, when a registry does not know a DOI.
var ErrNotFound = errors.New("not found")

// ErrNoDOI is returned for values, that are not a canonical DOI. We do not
// send those to any registry.
var ErrNoDOI = errors.New("not a canonical doi")

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options for the HTTP client.
type Options struct {
	MaxRetries int
	Timeout    time.Duration
	UserAgent  string
}

// DefaultOptions are used, when no explicit options are given.
var DefaultOptions = Options{
	MaxRetries: 3,
	Timeout:    30 * time.Second,
	UserAgent:  fmt.Sprintf("%s/%s", cgmerge.AppName, cgmerge.Version),
}

// NewHTTPClient returns a retrying client with exponential backoff.
func NewHTTPClient(opts Options) *pester.Client {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = opts.MaxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = opts.Timeout
	return client
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d while fetching %s", e.StatusCode, e.URL)
}

// base holds what all registry clients share.
type base struct {
	client    Doer
	userAgent string
}

func newBase(client Doer) base {
	if client == nil {
		client = http.DefaultClient
	}
	return base{client: client, userAgent: DefaultOptions.UserAgent}
}

// getJSON fetches a link and decodes the JSON body into v. HTTP 404 yields
// ErrNotFound, other non-200 codes a *StatusError.
func (b *base) getJSON(req *http.Request, v any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", b.userAgent)
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL, err)
	}
	return nil
}

// checkDOI returns ErrNoDOI for values, that are not canonical DOIs.
func checkDOI(doi string) error {
	if !normal.IsCanonicalDOI(doi) {
		return fmt.Errorf("%w: %q", ErrNoDOI, doi)
	}
	return nil
}

// workLink builds {endpoint}/{id}, with an optional contact email parameter.
func workLink(endpoint, id, param, email string) string {
	link := endpoint + "/" + id
	if email != "" {
		vs := url.Values{}
		vs.Add(param, email)
		link = link + "?" + vs.Encode()
	}
	return link
}
