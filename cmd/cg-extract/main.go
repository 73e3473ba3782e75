// cg-extract converts harvested records of a single repository into a CSV
// file with canonical columns.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ilri/cgmerge"
	"github.com/ilri/cgmerge/convert"
	"github.com/ilri/cgmerge/csvio"
	"github.com/ilri/cgmerge/schema/canonical"
	log "github.com/sirupsen/logrus"
)

var docs = strings.TrimLeft(fmt.Sprintf(`
# cg-extract - harvested records to canonical CSV

Reads JSON records, one per line or as a single array, from a file or stdin.
Compressed files (.gz, .zst) are decompressed on the fly.

	$ cg-extract -s cgspace cgspace.jsonl.zst > cgspace.csv
	$ cat icrisat.json | cg-extract -s icrisat -skip-untitled

Sources: %s

## flags

`, strings.Join(canonical.SourceKeys(), ", ")), "\n")

var (
	sourceName   = flag.String("s", "", "source key, e.g. cgspace")
	skipUntitled = flag.Bool("skip-untitled", false, "do not write rows without title")
	listAdjust   = flag.Bool("list-adjustments", false, "list available adjustments and exit")
	verbose      = flag.Bool("verbose", false, "verbose output")
	showVersion  = flag.Bool("version", false, "show version")
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
	if *listAdjust {
		for _, name := range convert.AdjustmentNames() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	source, err := canonical.ParseSource(*sourceName)
	if err != nil {
		log.Fatal(err)
	}
	mapping, err := convert.Lookup(source)
	if err != nil {
		log.Fatal(err)
	}
	var r io.Reader = os.Stdin
	if flag.NArg() > 0 {
		rc, err := csvio.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer rc.Close()
		r = rc
	}
	records, err := convert.DecodeRecords(r, source)
	if err != nil {
		log.Fatal(err)
	}
	var (
		rows    []*canonical.Row
		skipped int
	)
	for _, raw := range records {
		row := mapping.Extract(raw)
		if err := convert.Check(row); err != nil {
			log.WithFields(log.Fields{
				"source": source,
				"doi":    row.Value(canonical.DOI),
				"link":   row.Value(canonical.RepositoryLink),
			}).Warn(err)
			if *skipUntitled {
				skipped++
				continue
			}
		}
		rows = append(rows, row)
	}
	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	if err := csvio.Write(bw, rows, csvio.FullLayout()); err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"source":  source,
		"records": len(records),
		"rows":    len(rows),
		"skipped": skipped,
	}).Info("extracted")
}
