// cg-doi normalizes values line by line, by default DOIs.
//
//	$ printf 'doi:10.1016/J.GFS.2019.100306\n' | cg-doi
//	https://doi.org/10.1016/j.gfs.2019.100306
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ilri/cgmerge"
	"github.com/ilri/cgmerge/normal"
	log "github.com/sirupsen/logrus"
)

var (
	names       = flag.String("n", "doi", "comma separated list of normalizers, applied in order")
	skipEmpty   = flag.Bool("skip-empty", false, "do not print lines, that normalize to the empty string")
	listNames   = flag.Bool("l", false, "list normalizers")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s\n", cgmerge.AppName, cgmerge.Version)
		os.Exit(0)
	}
	if *listNames {
		var keys []string
		for k := range normal.Named {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println(strings.Join(keys, "\n"))
		os.Exit(0)
	}
	pipeline := &normal.Pipeline{}
	for _, name := range strings.Split(*names, ",") {
		n, ok := normal.Named[strings.TrimSpace(name)]
		if !ok {
			log.Fatalf("invalid normalizer name: %s", name)
		}
		pipeline.Normalizer = append(pipeline.Normalizer, n)
	}
	var (
		scanner = bufio.NewScanner(os.Stdin)
		bw      = bufio.NewWriter(os.Stdout)
	)
	defer bw.Flush()
	for scanner.Scan() {
		v := pipeline.Normalize(scanner.Text())
		if v == "" && *skipEmpty {
			continue
		}
		fmt.Fprintln(bw, v)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}
