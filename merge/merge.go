// Package merge combines rows from all sources into one collection and
// selects a single row per publication.
//
// Order matters throughout: the first row of a DOI or title wins, and rows
// are considered in source order, then harvest order.
package merge

import (
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/canonical"
	log "github.com/sirupsen/logrus"
)

// Collection are the rows harvested from a single source.
type Collection struct {
	Source canonical.Source
	Rows   []*canonical.Row
}

// Merge tags each row with the source of its collection and concatenates
// all collections in order. Rows are not validated here.
func Merge(collections []Collection) []*canonical.Row {
	var n int
	for _, c := range collections {
		n += len(c.Rows)
	}
	result := make([]*canonical.Row, 0, n)
	for _, c := range collections {
		for _, row := range c.Rows {
			row.SetSource(c.Source)
			result = append(result, row)
		}
		log.WithFields(log.Fields{
			"source": c.Source,
			"rows":   len(c.Rows),
		}).Debug("merged collection")
	}
	return result
}

// Stats about a deduplication run.
type Stats struct {
	Input          int
	DuplicateDOI   int
	DuplicateTitle int
}

// Output returns the number of rows kept.
func (s Stats) Output() int {
	return s.Input - s.DuplicateDOI - s.DuplicateTitle
}

// Dedupe normalizes DOIs, then keeps the first row per DOI and after that
// the first row per exact title. Rows without a DOI are never duplicates by
// DOI, rows without a title never duplicates by title. Input rows are only
// modified by DOI normalization.
func Dedupe(rows []*canonical.Row) ([]*canonical.Row, Stats) {
	stats := Stats{Input: len(rows)}
	var (
		seenDOI = make(map[string]bool)
		byDOI   = make([]*canonical.Row, 0, len(rows))
	)
	for _, row := range rows {
		NormalizeDOI(row)
		doi, ok := row.Get(canonical.DOI)
		if !ok {
			byDOI = append(byDOI, row)
			continue
		}
		if seenDOI[doi] {
			stats.DuplicateDOI++
			log.WithFields(log.Fields{
				"doi":    doi,
				"source": row.Source(),
			}).Debug("dropping duplicate doi")
			continue
		}
		seenDOI[doi] = true
		byDOI = append(byDOI, row)
	}
	var (
		seenTitle = make(map[string]bool)
		result    = make([]*canonical.Row, 0, len(byDOI))
	)
	for _, row := range byDOI {
		title, ok := row.Get(canonical.Title)
		if !ok {
			result = append(result, row)
			continue
		}
		if seenTitle[title] {
			stats.DuplicateTitle++
			log.WithFields(log.Fields{
				"title":  title,
				"source": row.Source(),
			}).Debug("dropping duplicate title")
			continue
		}
		seenTitle[title] = true
		result = append(result, row)
	}
	return result, stats
}

// ExcludeStats counts rows removed by each exclusion list.
type ExcludeStats struct {
	Input  int
	ByDOI  int
	ByLink int
}

// Exclude drops rows whose DOI is in dois or whose repository link is in
// links. Entries of dois are normalized before comparison, row DOIs are
// expected to be normalized already.
func Exclude(rows []*canonical.Row, dois, links []string) ([]*canonical.Row, ExcludeStats) {
	var (
		stats      = ExcludeStats{Input: len(rows)}
		excludeDOI = make(map[string]bool)
		excludeURL = make(map[string]bool)
		result     = make([]*canonical.Row, 0, len(rows))
	)
	for _, v := range dois {
		if v = normal.NormalizeDOI(v); v != "" {
			excludeDOI[v] = true
		}
	}
	for _, v := range links {
		if v = normal.CleanString(v); v != "" {
			excludeURL[v] = true
		}
	}
	for _, row := range rows {
		if doi, ok := row.Get(canonical.DOI); ok && excludeDOI[doi] {
			stats.ByDOI++
			continue
		}
		if link, ok := row.Get(canonical.RepositoryLink); ok && excludeURL[link] {
			stats.ByLink++
			continue
		}
		result = append(result, row)
	}
	return result, stats
}

// NormalizeDOI rewrites the DOI of a row into canonical form. A DOI that
// normalizes to nothing is removed.
func NormalizeDOI(row *canonical.Row) {
	if v, ok := row.Get(canonical.DOI); ok {
		row.Set(canonical.DOI, normal.NormalizeDOI(v))
	}
}

// Normalize applies the list level cleanups to a row: subjects are
// lowercased and, like authors, affiliations and countries, deduplicated.
func Normalize(row *canonical.Row) {
	NormalizeDOI(row)
	for _, col := range []string{canonical.Authors, canonical.Affiliations, canonical.Countries} {
		if v, ok := row.Get(col); ok {
			row.Set(col, normal.DeduplicateList(v))
		}
	}
	if v, ok := row.Get(canonical.Subjects); ok {
		row.Set(canonical.Subjects, normal.DeduplicateSubjects(v))
	}
}
