// Package cgmerge merges bibliographic records harvested from CGIAR
// repositories into one deduplicated, enriched dataset.
package cgmerge

const (
	AppName = "cgmerge"
	Version = "0.3.1"
)
