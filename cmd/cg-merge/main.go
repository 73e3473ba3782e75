// cg-merge merges repository exports into a single, deduplicated and
// enriched dataset and writes the review subsets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ilri/cgmerge"
	"github.com/ilri/cgmerge/config"
	"github.com/ilri/cgmerge/pipeline"
	log "github.com/sirupsen/logrus"
)

var docs = strings.TrimLeft(`
# cg-merge - merge CGIAR repository exports

Reads the configured source files, merges and deduplicates them by DOI and
title, removes excluded items, looks up licenses, access rights, abstracts
and affiliations on Crossref, Unpaywall and OpenAlex and writes the final
dataset together with a number of subsets and reports.

Registry responses are cached, a second run only requests what is new.

## run with defaults

	$ cg-merge

## run with a config file, without registry lookups

	$ cg-merge -c cgmerge.yaml -offline -o /tmp/out

## flags

`, "\n")

var (
	configFile  = flag.String("c", "", "path to YAML config file, defaults are used when empty")
	outputDir   = flag.String("o", "", "output directory, overrides config")
	offline     = flag.Bool("offline", false, "do not look up registries")
	numWorkers  = flag.Int("w", 0, "number of rows enriched in parallel, overrides config")
	email       = flag.String("email", "", "contact email sent along with registry requests, overrides config")
	cacheDir    = flag.String("cache-dir", "", "http cache directory, overrides config")
	verbose     = flag.Bool("verbose", false, "verbose output")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, docs)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s\n", cgmerge.AppName, cgmerge.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	var (
		cfg = config.Default()
		err error
	)
	if *configFile != "" {
		if cfg, err = config.LoadFile(*configFile); err != nil {
			log.Fatal(err)
		}
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *offline {
		cfg.Offline = true
	}
	if *numWorkers > 0 {
		cfg.Workers = *numWorkers
	}
	if *email != "" {
		cfg.Email = *email
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	report, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"run":            report.RunID,
		"rows":           report.Output,
		"missing_doi":    report.MissingDOI,
		"missing_pdf":    report.MissingPDF,
		"date_errors":    report.DateErrors,
		"outside_window": report.OutsideWindow,
	}).Info("merge finished")
	for _, p := range report.Partitions {
		log.WithFields(log.Fields{"rows": p.Rows, "file": p.Path}).Info(p.Name)
	}
}
