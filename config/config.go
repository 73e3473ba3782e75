// Package config contains the run configuration of the merge pipeline. A
// configuration is read from a YAML file; fields left out keep the values
// of Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ilri/cgmerge/csvio"
	"github.com/ilri/cgmerge/dateutil"
	"github.com/ilri/cgmerge/lookup"
	"github.com/ilri/cgmerge/schema/canonical"
	"gopkg.in/yaml.v3"
)

// Formats of a source file.
const (
	// FormatCanonical is a CSV with canonical column names.
	FormatCanonical = "canonical"
	// FormatExport is a CSV export with the field names of the repository,
	// e.g. "dc.title".
	FormatExport = "export"
	// FormatRaw is JSON, one harvested record per line or a single array.
	FormatRaw = "raw"
)

// Source is a single input file.
type Source struct {
	// Key is the short source name, e.g. "cgspace".
	Key    string `yaml:"key"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	// Required columns; reading fails, if any is missing. Only applies to
	// CSV formats.
	Required []string `yaml:"required,omitempty"`
}

// Partition writes the rows whose DOI is in List to Output.
type Partition struct {
	Name   string `yaml:"name"`
	List   string `yaml:"list"`
	Output string `yaml:"output"`
}

// Window is the range of publication years considered in scope.
type Window struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Interval returns the window as a time interval.
func (w Window) Interval() dateutil.Interval {
	return dateutil.Years(w.From, w.To)
}

// Config for a merge run.
type Config struct {
	// Sources in merge order. Earlier sources win during deduplication.
	Sources []Source `yaml:"sources"`
	// ExcludeDOIs and ExcludeURLs are lists of DOIs and repository links to
	// remove after deduplication, with a "doi" or "url" header.
	ExcludeDOIs []string `yaml:"exclude_dois"`
	ExcludeURLs []string `yaml:"exclude_urls"`
	// Partitions are written in addition to the full output.
	Partitions []Partition `yaml:"partitions"`
	// OriginalResearch is a DOI list; rows in it are flagged in the
	// "Original research" column.
	OriginalResearch string `yaml:"original_research"`
	// OutputDir for all written files.
	OutputDir string `yaml:"output_dir"`
	// Layout of output CSV files. Empty means the Rayyan layout.
	Layout csvio.Layout `yaml:"layout,omitempty"`
	// RequireDOI drops rows without a canonical DOI after writing them to
	// the missing DOI report.
	RequireDOI bool `yaml:"require_doi"`
	// Window for the outside window report.
	Window Window `yaml:"window"`
	// PDFDir contains full texts named after their DOI.
	PDFDir string `yaml:"pdf_dir"`
	// PublisherRules and AffiliationRules are YAML rule files appended to
	// the built-in rules.
	PublisherRules   []string `yaml:"publisher_rules,omitempty"`
	AffiliationRules []string `yaml:"affiliation_rules,omitempty"`
	// Offline disables all registry lookups.
	Offline bool `yaml:"offline"`
	// Email is sent along with registry requests, as asked for by Crossref,
	// Unpaywall and OpenAlex.
	Email      string        `yaml:"email"`
	CacheDir   string        `yaml:"cache_dir"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
	// RateLimit in requests per second for uncached requests, zero means
	// no limit.
	RateLimit float64 `yaml:"rate_limit"`
	Workers   int     `yaml:"workers"`
}

// Default returns the configuration of the climate change review dataset.
func Default() *Config {
	return &Config{
		Sources: []Source{
			{Key: "cgspace", Path: "data/cgspace-filtered.csv", Format: FormatCanonical},
			{Key: "melspace", Path: "data/melspace-filtered.csv", Format: FormatCanonical},
			{Key: "worldfish", Path: "data/worldfish-filtered.csv", Format: FormatExport, Required: []string{
				"dc.title", "dc.creator", "cg.contributor.affiliation", "dc.description.abstract",
				"cg.contributor.funder", "dc.date.issued", "dc.subject", "cg.subject.agrovoc",
				"dc.identifier.uri", "dc.identifier.doi", "cg.identifier.status", "dc.rights",
				"dc.source", "dc.identifier.issn", "dc.publisher", "cg.coverage.country",
			}},
			{Key: "cifor", Path: "data/cifor-filtered.csv", Format: FormatExport, Required: []string{
				"dc.title", "dc.contributor.author", "dc.date.issued", "dc.identifier.uri",
				"dc.identifier.doi", "dc.subject", "cg.subject.cifor", "cg.contributor.affiliation",
				"cg.contributor.center", "dc.description.abstract", "cg.contributor.donor",
				"cifor.source.title", "dc.identifier.issn", "cifor.source.volume",
				"cifor.source.numbers", "dc.publisher", "cifor.type.oa", "dc.rights",
				"cifor.source.page", "cg.coverage.country",
			}},
			{Key: "ifpri", Path: "data/ifpri-filtered.csv", Format: FormatCanonical, Required: []string{
				canonical.Title, canonical.Authors, canonical.PublicationDate, canonical.Journal,
				canonical.Pages, canonical.Publisher, canonical.Abstract, canonical.Funders,
				canonical.ISSN, canonical.DOI, canonical.Subjects, canonical.AccessRights,
				canonical.UsageRights, canonical.RepositoryLink,
			}},
			{Key: "irri", Path: "data/2023-10-16-IRRI-Climate-Change-fixed-filtered.csv", Format: FormatExport, Required: []string{
				"title", "issn", "first author", "other authors", "publisher", "journal",
				"date issued", "extent", "abstract", "subjects", "doi",
			}},
			{Key: "icrisat", Path: "data/icrisat-filtered.csv", Format: FormatCanonical},
			{Key: "cimmyt", Path: "data/cimmyt-filtered.csv", Format: FormatCanonical},
		},
		ExcludeDOIs: []string{"data/dois-to-remove.csv"},
		ExcludeURLs: []string{"data/urls-to-remove.csv"},
		Partitions: []Partition{
			{Name: "used in review", List: "data/included-in-review.csv", Output: "output-used-in-review.csv"},
			{Name: "combined", List: "data/dois-for-combined-dataset.csv", Output: "output-combined.csv"},
			{Name: "drought", List: "data/dois-thematic-analysis-drought.csv", Output: "output-drought.csv"},
			{Name: "rainfall", List: "data/dois-thematic-analysis-rainfall.csv", Output: "output-rainfall.csv"},
			{Name: "adaptation", List: "data/dois-thematic-analysis-adaptation.csv", Output: "output-adaptation.csv"},
		},
		OutputDir:  "/tmp",
		RequireDOI: true,
		Window:     Window{From: 2012, To: 2023},
		PDFDir:     "data/pdf",
		CacheDir:   lookup.DefaultCacheDir(),
		CacheTTL:   lookup.DefaultTTL,
		MaxRetries: lookup.DefaultOptions.MaxRetries,
		Timeout:    lookup.DefaultOptions.Timeout,
		RateLimit:  10,
		Workers:    1,
	}
}

// Load reads a YAML configuration on top of the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML configuration file. Relative paths in the file are
// resolved against the directory of the file.
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	c.resolve(filepath.Dir(filename))
	return c, nil
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Sources {
		c.Sources[i].Path = abs(c.Sources[i].Path)
	}
	for i := range c.ExcludeDOIs {
		c.ExcludeDOIs[i] = abs(c.ExcludeDOIs[i])
	}
	for i := range c.ExcludeURLs {
		c.ExcludeURLs[i] = abs(c.ExcludeURLs[i])
	}
	for i := range c.Partitions {
		c.Partitions[i].List = abs(c.Partitions[i].List)
	}
	for i := range c.PublisherRules {
		c.PublisherRules[i] = abs(c.PublisherRules[i])
	}
	for i := range c.AffiliationRules {
		c.AffiliationRules[i] = abs(c.AffiliationRules[i])
	}
	c.OriginalResearch = abs(c.OriginalResearch)
	c.OutputDir = abs(c.OutputDir)
	c.PDFDir = abs(c.PDFDir)
}

// OutputLayout returns the configured layout or the Rayyan layout.
func (c *Config) OutputLayout() csvio.Layout {
	if len(c.Layout) == 0 {
		return csvio.RayyanLayout()
	}
	return c.Layout
}

// HTTPOptions returns the options for the registry HTTP client.
func (c *Config) HTTPOptions() lookup.Options {
	opts := lookup.DefaultOptions
	opts.MaxRetries = c.MaxRetries
	opts.Timeout = c.Timeout
	return opts
}

// Validate checks values and the existence of all input files. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("no sources"))
	}
	seen := make(map[canonical.Source]bool)
	for i, s := range c.Sources {
		src, err := canonical.ParseSource(s.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
		} else if seen[src] {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate source %q", i, s.Key))
		}
		seen[src] = true
		switch s.Format {
		case FormatCanonical, FormatExport, FormatRaw:
		default:
			errs = append(errs, fmt.Errorf("sources[%d]: unknown format %q", i, s.Format))
		}
		errs = append(errs, checkFile(s.Path))
	}
	for _, p := range c.ExcludeDOIs {
		errs = append(errs, checkFile(p))
	}
	for _, p := range c.ExcludeURLs {
		errs = append(errs, checkFile(p))
	}
	names := make(map[string]bool)
	for i, p := range c.Partitions {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("partitions[%d]: missing name", i))
		case names[p.Name]:
			errs = append(errs, fmt.Errorf("partitions[%d]: duplicate name %q", i, p.Name))
		}
		names[p.Name] = true
		if p.Output == "" {
			errs = append(errs, fmt.Errorf("partitions[%d]: missing output", i))
		}
		errs = append(errs, checkFile(p.List))
	}
	if c.OriginalResearch != "" {
		errs = append(errs, checkFile(c.OriginalResearch))
	}
	for _, p := range append(c.PublisherRules, c.AffiliationRules...) {
		errs = append(errs, checkFile(p))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("missing output_dir"))
	}
	if len(c.Layout) > 0 {
		errs = append(errs, c.Layout.Validate())
	}
	if c.Window.From > c.Window.To {
		errs = append(errs, fmt.Errorf("window: from %d after to %d", c.Window.From, c.Window.To))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: negative value %d", c.Workers))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit: negative value %v", c.RateLimit))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries: negative value %d", c.MaxRetries))
	}
	if !c.Offline && c.CacheDir == "" {
		errs = append(errs, errors.New("missing cache_dir"))
	}
	return errors.Join(errs...)
}

func checkFile(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	fi, err := os.Stat(p)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s: is a directory", p)
	}
	return nil
}
