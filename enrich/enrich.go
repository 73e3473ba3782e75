// Package enrich fills in missing fields of rows from external registries,
// resolves publication dates and derives regions and continents from
// countries. Rows are independent; a failed lookup only affects the field
// it was meant to fill.
package enrich

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"github.com/ilri/cgmerge/countries"
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/lookup"
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/canonical"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LicenseLookup returns a usage rights value for a DOI, or the empty string.
type LicenseLookup interface {
	License(ctx context.Context, doi string) (string, error)
}

// AccessLookup returns an access rights value for a DOI.
type AccessLookup interface {
	AccessRights(ctx context.Context, doi string) (string, error)
}

// WorkLookup returns work level metadata for a DOI.
type WorkLookup interface {
	Abstract(ctx context.Context, doi string) (string, error)
	Publisher(ctx context.Context, doi string) (string, error)
	HasAbstract(ctx context.Context, doi string) (bool, error)
}

// AffiliationLookup returns raw affiliation strings for a DOI.
type AffiliationLookup interface {
	Affiliations(ctx context.Context, doi string) ([]string, error)
}

// PDFChecker reports the file name of a local full text for a DOI.
type PDFChecker interface {
	PDF(doi string) (string, bool)
}

// Enricher runs all enrichment steps on rows. Any lookup may be nil, in
// which case the corresponding field is left as is.
type Enricher struct {
	licenses     LicenseLookup
	access       AccessLookup
	works        WorkLookup
	affiliations []AffiliationLookup
	pdfs         PDFChecker

	publisherRules    normal.Rules
	affiliationRules  normal.Rules
	usageRightsRules  normal.Rules
	accessRightsRules normal.Rules
	countries         *countries.Table
	numWorkers        int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLicenses sets the usage rights lookup.
func WithLicenses(l LicenseLookup) Option {
	return func(e *Enricher) { e.licenses = l }
}

// WithAccess sets the access rights lookup.
func WithAccess(l AccessLookup) Option {
	return func(e *Enricher) { e.access = l }
}

// WithWorks sets the abstract and publisher lookup.
func WithWorks(l WorkLookup) Option {
	return func(e *Enricher) { e.works = l }
}

// WithAffiliations sets the affiliation lookups. They are tried in order,
// until one returns affiliations.
func WithAffiliations(l ...AffiliationLookup) Option {
	return func(e *Enricher) { e.affiliations = l }
}

// WithPDFs sets the full text checker.
func WithPDFs(p PDFChecker) Option {
	return func(e *Enricher) { e.pdfs = p }
}

// WithPublisherRules appends rules to the built-in publisher rules.
func WithPublisherRules(rules normal.Rules) Option {
	return func(e *Enricher) { e.publisherRules = rules.Concat(e.publisherRules) }
}

// WithAffiliationRules appends rules to the built-in affiliation rules.
func WithAffiliationRules(rules normal.Rules) Option {
	return func(e *Enricher) { e.affiliationRules = rules.Concat(e.affiliationRules) }
}

// WithCountries sets the country table.
func WithCountries(t *countries.Table) Option {
	return func(e *Enricher) {
		if t != nil {
			e.countries = t
		}
	}
}

// WithWorkers sets the number of rows processed in parallel. A value of
// zero or less means one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Enricher) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		e.numWorkers = n
	}
}

// New creates an Enricher with built-in rules and the default country table,
// using a single worker.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		publisherRules:    normal.PublisherRules,
		affiliationRules:  normal.AffiliationRules,
		usageRightsRules:  normal.UsageRightsRules,
		accessRightsRules: normal.AccessRightsRules,
		countries:         countries.Default(),
		numWorkers:        1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DateError is a row, whose publication date could not be resolved. Issue
// is the publication date value before resolution.
type DateError struct {
	Row   *canonical.Row
	Issue string
	Err   error
}

// Result of an enrichment run. Rows are the input rows, in input order.
type Result struct {
	Rows       []*canonical.Row
	DateErrors []DateError
}

// Run enriches all rows in place. Only context cancellation is an error.
func (e *Enricher) Run(ctx context.Context, rows []*canonical.Row) (*Result, error) {
	var (
		g, gctx  = errgroup.WithContext(ctx)
		dateErrs = make([]error, len(rows))
		issues   = make([]string, len(rows))
	)
	g.SetLimit(e.numWorkers)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues[i] = row.Value(canonical.PublicationDate)
			dateErrs[i] = e.Row(gctx, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result := &Result{Rows: rows}
	for i, err := range dateErrs {
		if err != nil {
			result.DateErrors = append(result.DateErrors, DateError{Row: rows[i], Issue: issues[i], Err: err})
		}
	}
	log.WithFields(log.Fields{
		"rows":        len(rows),
		"date_errors": len(result.DateErrors),
		"workers":     e.numWorkers,
	}).Info("enrichment done")
	return result, nil
}

// Row runs all steps on a single row. The abstract filter runs last, after
// every step that may fill in an abstract. The returned error is the date
// resolution error, if any; the date is left absent in that case.
func (e *Enricher) Row(ctx context.Context, row *canonical.Row) error {
	e.usageRights(ctx, row)
	e.accessRights(ctx, row)
	e.abstract(ctx, row)
	e.publisher(ctx, row)
	e.authorAffiliations(ctx, row)
	e.pdf(row)
	err := e.publicationDate(row)
	e.locations(row)
	e.filterAbstract(ctx, row)
	return err
}

// doi returns the DOI of a row, if it is worth a lookup.
func doi(row *canonical.Row) (string, bool) {
	v, ok := row.Get(canonical.DOI)
	if !ok || !normal.IsCanonicalDOI(v) {
		return "", false
	}
	return v, true
}

// warn logs a failed lookup. Unknown DOIs are expected and only logged at
// debug level.
func warn(row *canonical.Row, step string, err error) {
	entry := log.WithFields(log.Fields{
		"doi":    row.Value(canonical.DOI),
		"source": row.Source(),
		"stage":  step,
	})
	if errors.Is(err, lookup.ErrNotFound) {
		entry.Debug("not found")
		return
	}
	entry.Warnf("lookup failed: %v", err)
}

// usageRights prefers a definite license from the registry over the
// repository value.
func (e *Enricher) usageRights(ctx context.Context, row *canonical.Row) {
	if v, ok := doi(row); ok && e.licenses != nil {
		license, err := e.licenses.License(ctx, v)
		if err != nil {
			warn(row, "license", err)
		} else if license != "" {
			row.Set(canonical.UsageRights, license)
		}
	}
	if v, ok := row.Get(canonical.UsageRights); ok {
		row.Set(canonical.UsageRights, e.usageRightsRules.Apply(v))
	}
}

func (e *Enricher) accessRights(ctx context.Context, row *canonical.Row) {
	if v, ok := doi(row); ok && e.access != nil {
		rights, err := e.access.AccessRights(ctx, v)
		if err != nil {
			warn(row, "access", err)
		} else if rights != "" {
			row.Set(canonical.AccessRights, rights)
		}
	}
	if v, ok := row.Get(canonical.AccessRights); ok {
		row.Set(canonical.AccessRights, e.accessRightsRules.Apply(v))
	}
}

func (e *Enricher) abstract(ctx context.Context, row *canonical.Row) {
	if row.Has(canonical.Abstract) || e.works == nil {
		return
	}
	v, ok := doi(row)
	if !ok {
		return
	}
	abstract, err := e.works.Abstract(ctx, v)
	if err != nil {
		warn(row, "abstract", err)
		return
	}
	row.Set(canonical.Abstract, abstract)
}

func (e *Enricher) publisher(ctx context.Context, row *canonical.Row) {
	if v, ok := doi(row); ok && !row.Has(canonical.Publisher) && e.works != nil {
		publisher, err := e.works.Publisher(ctx, v)
		if err != nil {
			warn(row, "publisher", err)
		} else {
			row.Set(canonical.Publisher, publisher)
		}
	}
	if v, ok := row.Get(canonical.Publisher); ok {
		row.Set(canonical.Publisher, e.publisherRules.Apply(v))
	}
}

func (e *Enricher) authorAffiliations(ctx context.Context, row *canonical.Row) {
	if v, ok := doi(row); ok && !row.Has(canonical.Affiliations) {
		for _, l := range e.affiliations {
			affs, err := l.Affiliations(ctx, v)
			if err != nil {
				warn(row, "affiliations", err)
				continue
			}
			var cleaned []string
			for _, a := range affs {
				// raw strings may contain the separator themselves
				if a = strings.ReplaceAll(normal.CleanString(a), ";", ","); a != "" {
					cleaned = append(cleaned, a)
				}
			}
			if len(cleaned) > 0 {
				row.Set(canonical.Affiliations, normal.Join(normal.Unique(cleaned)))
				break
			}
		}
	}
	if v, ok := row.Get(canonical.Affiliations); ok {
		row.Set(canonical.Affiliations, e.affiliationRules.Apply(v))
	}
}

func (e *Enricher) pdf(row *canonical.Row) {
	if e.pdfs == nil {
		return
	}
	v, ok := doi(row)
	if !ok {
		return
	}
	if name, ok := e.pdfs.PDF(v); ok {
		row.Set(canonical.PDF, name)
	} else {
		row.Delete(canonical.PDF)
	}
}

// publicationDate replaces the issue date with the resolved date. On error
// the date is removed, never guessed.
func (e *Enricher) publicationDate(row *canonical.Row) error {
	date, err := dateutil.ResolvePublicationDate(
		row.Value(canonical.PublicationDate),
		row.Value(canonical.OnlineDate))
	if err != nil {
		log.WithFields(log.Fields{
			"doi":    row.Value(canonical.DOI),
			"source": row.Source(),
			"issue":  row.Value(canonical.PublicationDate),
			"online": row.Value(canonical.OnlineDate),
		}).Warnf("cannot resolve publication date: %v", err)
		row.Delete(canonical.PublicationDate)
		return err
	}
	row.Set(canonical.PublicationDate, date)
	return nil
}

// locations detects countries in title and abstract, if none are given, and
// derives regions and continents from the standardized list.
func (e *Enricher) locations(row *canonical.Row) {
	if !row.Has(canonical.Countries) {
		text := row.Value(canonical.Title) + " " + row.Value(canonical.Abstract)
		row.Set(canonical.Countries, normal.Join(e.countries.Detect(text)))
	}
	v := e.countries.Standardize(row.Value(canonical.Countries))
	row.Set(canonical.Countries, v)
	row.Set(canonical.Regions, e.countries.Regions(v))
	row.Set(canonical.Continents, e.countries.Continents(v))
}

// filterAbstract removes abstracts we may not redistribute: we keep them for
// Creative Commons works, or if Crossref has an abstract on file. Without a
// way to check, the abstract is removed.
func (e *Enricher) filterAbstract(ctx context.Context, row *canonical.Row) {
	if !row.Has(canonical.Abstract) {
		return
	}
	if strings.Contains(row.Value(canonical.UsageRights), "CC-") {
		return
	}
	v, ok := doi(row)
	if !ok || e.works == nil {
		row.Delete(canonical.Abstract)
		return
	}
	has, err := e.works.HasAbstract(ctx, v)
	if err != nil {
		warn(row, "abstract-filter", err)
	}
	if err != nil || !has {
		row.Delete(canonical.Abstract)
	}
}
