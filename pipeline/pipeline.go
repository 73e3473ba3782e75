// Package pipeline runs all stages of a merge: read and extract sources,
// merge, deduplicate, exclude, enrich, partition and write the output files.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ilri/cgmerge/config"
	"github.com/ilri/cgmerge/convert"
	"github.com/ilri/cgmerge/csvio"
	"github.com/ilri/cgmerge/enrich"
	"github.com/ilri/cgmerge/lookup"
	"github.com/ilri/cgmerge/merge"
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/partition"
	"github.com/ilri/cgmerge/schema/canonical"
	log "github.com/sirupsen/logrus"
)

// Output file names, relative to the output directory.
const (
	OutputFile        = "output.csv"
	MissingDOIsFile   = "output-missing-dois.csv"
	MissingPDFsFile   = "output-missing-pdfs.csv"
	DateErrorsFile    = "output-date-errors.csv"
	OutsideWindowFile = "output-outside-window.csv"
	DOIsFile          = "dois.txt"
)

// SourceStats counts rows read from a single source.
type SourceStats struct {
	Source  canonical.Source
	Path    string
	Rows    int
	NoTitle int
}

// SubsetStats is the size of a written subset.
type SubsetStats struct {
	Name string
	Path string
	Rows int
}

// Report summarizes a run.
type Report struct {
	RunID            string
	Sources          []SourceStats
	Merged           int
	Dedupe           merge.Stats
	Exclude          merge.ExcludeStats
	MissingDOI       int
	Output           int
	DateErrors       int
	MissingPDF       int
	OutsideWindow    int
	OriginalResearch int
	Partitions       []SubsetStats
	Cache            lookup.CacheStats
	Files            []string
}

// Pipeline is a configured merge run.
type Pipeline struct {
	Config *config.Config
	// Client performs registry requests. If nil, a retrying HTTP client is
	// used. Responses are cached in either case.
	Client lookup.Doer

	runID  string
	logger *log.Entry
	report *Report
}

// New creates a pipeline with a fresh run id.
func New(cfg *config.Config) *Pipeline {
	id := uuid.New().String()
	return &Pipeline{
		Config: cfg,
		runID:  id,
		logger: log.WithField("run", id),
		report: &Report{RunID: id},
	}
}

// Run executes a pipeline with the given configuration.
func Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	return New(cfg).Run(ctx)
}

// Run executes all stages. A failing stage aborts the run, failures of a
// single row or lookup do not.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	cfg := p.Config
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, err
	}
	collections, err := p.readSources(ctx)
	if err != nil {
		return nil, err
	}
	rows := merge.Merge(collections)
	p.report.Merged = len(rows)
	p.stage("merge").WithField("rows", len(rows)).Info("merged sources")

	rows, p.report.Dedupe = merge.Dedupe(rows)
	p.stage("dedupe").WithFields(log.Fields{
		"duplicate_doi":   p.report.Dedupe.DuplicateDOI,
		"duplicate_title": p.report.Dedupe.DuplicateTitle,
		"rows":            len(rows),
	}).Info("removed duplicates")
	for _, row := range rows {
		merge.Normalize(row)
	}

	excludeDOIs, err := readLists(cfg.ExcludeDOIs)
	if err != nil {
		return nil, err
	}
	excludeURLs, err := readLists(cfg.ExcludeURLs)
	if err != nil {
		return nil, err
	}
	rows, p.report.Exclude = merge.Exclude(rows, excludeDOIs, excludeURLs)
	p.stage("exclude").WithFields(log.Fields{
		"by_doi":  p.report.Exclude.ByDOI,
		"by_link": p.report.Exclude.ByLink,
		"rows":    len(rows),
	}).Info("removed excluded rows")

	missing := partition.MissingDOI(rows)
	p.report.MissingDOI = len(missing.Rows)
	if err := p.write(MissingDOIsFile, missing.Rows, csvio.FullLayout()); err != nil {
		return nil, err
	}
	if cfg.RequireDOI {
		rows = partition.WithDOI(rows).Rows
	}
	if err := p.writeDOIs(rows); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enricher, closer, err := p.enricher()
	if err != nil {
		return nil, err
	}
	result, err := enricher.Run(ctx, rows)
	if closer != nil {
		if cerr := closer(); err == nil && cerr != nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	rows = result.Rows

	if cfg.OriginalResearch != "" {
		dois, err := csvio.ReadList(cfg.OriginalResearch)
		if err != nil {
			return nil, err
		}
		list := partition.NewList("original research", dois)
		p.report.OriginalResearch = partition.Flag(rows, list, canonical.OriginalResearch)
	}

	layout := cfg.OutputLayout()
	if err := p.writePartitions(rows, layout); err != nil {
		return nil, err
	}
	p.report.Output = len(rows)
	if err := p.write(OutputFile, rows, layout); err != nil {
		return nil, err
	}
	if err := p.writeDiagnostics(rows, result.DateErrors, layout); err != nil {
		return nil, err
	}
	p.logger.WithFields(log.Fields{
		"rows":  len(rows),
		"files": len(p.report.Files),
	}).Info("done")
	return p.report, nil
}

func (p *Pipeline) stage(name string) *log.Entry {
	return p.logger.WithField("stage", name)
}

// readSources reads and extracts all configured sources, in order.
func (p *Pipeline) readSources(ctx context.Context) ([]merge.Collection, error) {
	var result []merge.Collection
	for _, s := range p.Config.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := canonical.ParseSource(s.Key)
		if err != nil {
			return nil, err
		}
		rows, err := ReadSource(src, s)
		if err != nil {
			return nil, err
		}
		stats := SourceStats{Source: src, Path: s.Path, Rows: len(rows)}
		for _, row := range rows {
			if err := convert.Check(row); err != nil {
				stats.NoTitle++
				p.stage("extract").WithFields(log.Fields{
					"source": src,
					"doi":    row.Value(canonical.DOI),
					"link":   row.Value(canonical.RepositoryLink),
				}).Warnf("row check: %v", err)
			}
		}
		p.report.Sources = append(p.report.Sources, stats)
		p.stage("extract").WithFields(log.Fields{
			"source":   src,
			"rows":     stats.Rows,
			"no_title": stats.NoTitle,
		}).Info("read source")
		result = append(result, merge.Collection{Source: src, Rows: rows})
	}
	return result, nil
}

// ReadSource reads a single source file and extracts canonical rows.
func ReadSource(src canonical.Source, s config.Source) ([]*canonical.Row, error) {
	var (
		mapping *convert.Mapping
		err     error
	)
	switch s.Format {
	case config.FormatCanonical:
		mapping = convert.Identity(src)
	case config.FormatExport, config.FormatRaw:
		if mapping, err = convert.Lookup(src); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: unknown format %q", s.Path, s.Format)
	}
	var records []convert.Raw
	if s.Format == config.FormatRaw {
		rc, err := csvio.Open(s.Path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		if records, err = convert.DecodeRecords(rc, src); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
	} else {
		required := s.Required
		if len(required) == 0 && s.Format == config.FormatCanonical {
			required = []string{canonical.Title}
		}
		recs, err := csvio.ReadSource(s.Path, required)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			records = append(records, convert.CSVRecord(rec))
		}
	}
	rows := make([]*canonical.Row, 0, len(records))
	for _, raw := range records {
		rows = append(rows, mapping.Extract(raw))
	}
	return rows, nil
}

func readLists(filenames []string) ([]string, error) {
	var result []string
	for _, f := range filenames {
		vs, err := csvio.ReadList(f)
		if err != nil {
			return nil, err
		}
		result = append(result, vs...)
	}
	return result, nil
}

// enricher sets up lookups. The returned function, if not nil, must be
// called after enrichment.
func (p *Pipeline) enricher() (*enrich.Enricher, func() error, error) {
	cfg := p.Config
	publisherRules, err := loadRules(normal.PublisherRules, cfg.PublisherRules)
	if err != nil {
		return nil, nil, err
	}
	affiliationRules, err := loadRules(normal.AffiliationRules, cfg.AffiliationRules)
	if err != nil {
		return nil, nil, err
	}
	opts := []enrich.Option{
		enrich.WithPublisherRules(publisherRules),
		enrich.WithAffiliationRules(affiliationRules),
		enrich.WithWorkers(cfg.Workers),
	}
	if cfg.PDFDir != "" {
		opts = append(opts, enrich.WithPDFs(lookup.PDFDir{Dir: cfg.PDFDir}))
	}
	if cfg.Offline {
		p.stage("enrich").Info("offline, skipping registry lookups")
		return enrich.New(opts...), nil, nil
	}
	client := p.Client
	if client == nil {
		client = lookup.NewHTTPClient(cfg.HTTPOptions())
	}
	cached, err := lookup.NewCachedClient(client, cfg.CacheDir, cfg.CacheTTL, cfg.RateLimit)
	if err != nil {
		return nil, nil, err
	}
	if n, err := cached.Prune(); err != nil {
		p.stage("enrich").Warnf("cache prune: %v", err)
	} else if n > 0 {
		p.stage("enrich").WithField("removed", n).Info("pruned expired cache entries")
	}
	crossref := lookup.NewCrossref(cached, cfg.Email)
	opts = append(opts,
		enrich.WithLicenses(crossref),
		enrich.WithWorks(crossref),
		enrich.WithAccess(lookup.NewUnpaywall(cached, cfg.Email)),
		enrich.WithAffiliations(lookup.NewOpenAlex(cached, cfg.Email), crossref),
	)
	closer := func() error {
		p.report.Cache = cached.Stats()
		return cached.Close()
	}
	return enrich.New(opts...), closer, nil
}

func loadRules(builtin normal.Rules, filenames []string) (normal.Rules, error) {
	rules := builtin
	for _, f := range filenames {
		extra, err := normal.LoadRulesFile(f)
		if err != nil {
			return nil, err
		}
		rules = rules.Concat(extra)
	}
	return rules, nil
}

func (p *Pipeline) path(name string) string {
	return filepath.Join(p.Config.OutputDir, name)
}

func (p *Pipeline) write(name string, rows []*canonical.Row, layout csvio.Layout) error {
	filename := p.path(name)
	if err := csvio.WriteRows(filename, rows, layout); err != nil {
		return err
	}
	p.report.Files = append(p.report.Files, filename)
	p.stage("write").WithFields(log.Fields{
		"file": filename,
		"rows": len(rows),
	}).Info("wrote file")
	return nil
}

func (p *Pipeline) writeDOIs(rows []*canonical.Row) error {
	var dois []string
	for _, row := range rows {
		if v, ok := row.Get(canonical.DOI); ok {
			dois = append(dois, v)
		}
	}
	filename := p.path(DOIsFile)
	if err := csvio.WriteLines(filename, dois); err != nil {
		return err
	}
	p.report.Files = append(p.report.Files, filename)
	return nil
}

func (p *Pipeline) writePartitions(rows []*canonical.Row, layout csvio.Layout) error {
	var lists []*partition.List
	for _, c := range p.Config.Partitions {
		dois, err := csvio.ReadList(c.List)
		if err != nil {
			return err
		}
		l := partition.NewList(c.Name, dois)
		p.stage("partition").WithFields(log.Fields{
			"name": c.Name,
			"dois": l.Len(),
		}).Debug("loaded list")
		lists = append(lists, l)
	}
	for i, subset := range partition.Partition(rows, lists) {
		name := p.Config.Partitions[i].Output
		if err := p.write(name, subset.Rows, layout); err != nil {
			return err
		}
		p.report.Partitions = append(p.report.Partitions, SubsetStats{
			Name: subset.Name,
			Path: p.path(name),
			Rows: len(subset.Rows),
		})
	}
	return nil
}

func (p *Pipeline) writeDiagnostics(rows []*canonical.Row, dateErrors []enrich.DateError, layout csvio.Layout) error {
	missing := partition.MissingPDF(rows)
	p.report.MissingPDF = len(missing.Rows)
	if err := p.write(MissingPDFsFile, missing.Rows, layout); err != nil {
		return err
	}
	var errRows []*canonical.Row
	for _, de := range dateErrors {
		row := de.Row.Clone()
		row.Set(canonical.PublicationDate, de.Issue)
		errRows = append(errRows, row)
	}
	p.report.DateErrors = len(errRows)
	if err := p.write(DateErrorsFile, errRows, csvio.FullLayout()); err != nil {
		return err
	}
	outside := partition.OutsideWindow(rows, p.Config.Window.Interval())
	p.report.OutsideWindow = len(outside.Rows)
	return p.write(OutsideWindowFile, outside.Rows, layout)
}
