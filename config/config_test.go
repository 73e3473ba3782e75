package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ilri/cgmerge/csvio"
	"github.com/ilri/cgmerge/schema/canonical"
)

func TestDefault(t *testing.T) {
	c := Default()
	if len(c.Sources) != len(canonical.Sources) {
		t.Fatalf("got %d sources, want %d", len(c.Sources), len(canonical.Sources))
	}
	for i, s := range c.Sources {
		src, err := canonical.ParseSource(s.Key)
		if err != nil {
			t.Fatal(err)
		}
		if src != canonical.Sources[i] {
			t.Errorf("source %d: got %s, want %s", i, src, canonical.Sources[i])
		}
	}
	if !c.RequireDOI {
		t.Errorf("expected doi to be required by default")
	}
	if c.Workers != 1 {
		t.Errorf("got %d workers, want 1", c.Workers)
	}
	if c.Window != (Window{From: 2012, To: 2023}) {
		t.Errorf("got window %v", c.Window)
	}
	if diff := cmp.Diff(csvio.RayyanLayout().Header(), c.OutputLayout().Header()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	data := `
sources:
  - key: cgspace
    path: cgspace.csv
    format: canonical
  - key: icrisat
    path: icrisat.jsonl
    format: raw
exclude_dois: [remove.csv]
output_dir: out
cache_ttl: 48h
timeout: 5s
workers: 4
rate_limit: 2.5
layout:
  - column: Title
  - column: Publication date
    header: Year
    year: true
`
	c, err := Load(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	want := []Source{
		{Key: "cgspace", Path: "cgspace.csv", Format: FormatCanonical},
		{Key: "icrisat", Path: "icrisat.jsonl", Format: FormatRaw},
	}
	if diff := cmp.Diff(want, c.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
	if c.CacheTTL != 48*time.Hour || c.Timeout != 5*time.Second {
		t.Errorf("got ttl %v, timeout %v", c.CacheTTL, c.Timeout)
	}
	if c.Workers != 4 || c.RateLimit != 2.5 {
		t.Errorf("got workers %d, rate limit %v", c.Workers, c.RateLimit)
	}
	if diff := cmp.Diff([]string{"Title", "Year"}, c.OutputLayout().Header()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	// Unset fields keep their defaults.
	if !c.RequireDOI || c.Window.From != 2012 || len(c.Partitions) != 5 {
		t.Errorf("defaults not kept: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(strings.NewReader("colour: blue\n")); err == nil {
		t.Errorf("expected error for unknown field")
	}
	if _, err := Load(strings.NewReader("workers: many\n")); err == nil {
		t.Errorf("expected error for bad value")
	}
	c, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("empty config should be default (-want +got):\n%s", diff)
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("doi\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadFileValidate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "cgspace.csv", "remove.csv", "review.csv")
	data := `
sources:
  - {key: cgspace, path: cgspace.csv, format: canonical}
exclude_dois: [remove.csv]
exclude_urls: []
partitions:
  - {name: review, list: review.csv, output: output-review.csv}
output_dir: out
offline: true
`
	p := filepath.Join(dir, "cgmerge.yaml")
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.Sources[0].Path, filepath.Join(dir, "cgspace.csv"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := c.OutputDir, filepath.Join(dir, "out"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	c.PDFDir = ""
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	var cases = []struct {
		about string
		f     func(c *Config)
		msg   string
	}{
		{"unknown source", func(c *Config) { c.Sources[0].Key = "agrisearch" }, "unknown source"},
		{"duplicate source", func(c *Config) { c.Sources = append(c.Sources, c.Sources[0]) }, "duplicate source"},
		{"bad format", func(c *Config) { c.Sources[0].Format = "xml" }, "unknown format"},
		{"missing file", func(c *Config) { c.Sources[0].Path = filepath.Join(dir, "nope.csv") }, "no such file"},
		{"directory", func(c *Config) { c.ExcludeDOIs = []string{dir} }, "is a directory"},
		{"window", func(c *Config) { c.Window = Window{From: 2023, To: 2012} }, "window"},
		{"workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"layout", func(c *Config) { c.Layout = csvio.Layout{{Column: "Colour"}} }, "unknown column"},
		{"cache dir", func(c *Config) { c.Offline = false; c.CacheDir = "" }, "cache_dir"},
		{"partition name", func(c *Config) { c.Partitions = []Partition{{List: filepath.Join(dir, "a.csv"), Output: "x.csv"}} }, "missing name"},
	}
	for _, tc := range cases {
		t.Run(tc.about, func(t *testing.T) {
			c := &Config{
				Sources:   []Source{{Key: "cgspace", Path: filepath.Join(dir, "a.csv"), Format: FormatCanonical}},
				OutputDir: dir,
				Window:    Window{From: 2012, To: 2023},
				Offline:   true,
			}
			if err := c.Validate(); err != nil {
				t.Fatalf("base config invalid: %v", err)
			}
			tc.f(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("got %v, want error containing %q", err, tc.msg)
			}
		})
	}
}
