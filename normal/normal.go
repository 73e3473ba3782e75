// Package normal contains string level normalizations for canonical rows,
// like DOI canonicalization, list deduplication and name alias rules.
package normal

import (
	"strings"
	"unicode"
)

type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

type Normalizer interface {
	Normalize(string) string
}

// NormalizerFunc turns a plain function into a Normalizer.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(s string) string {
	return f(s)
}

// Named normalizers, e.g. for command line selection.
var Named = map[string]Normalizer{
	"doi":      NormalizerFunc(NormalizeDOI),
	"clean":    NormalizerFunc(CleanString),
	"lower":    NormalizerFunc(strings.ToLower),
	"dedup":    NormalizerFunc(DeduplicateList),
	"subjects": NormalizerFunc(DeduplicateSubjects),
}

// ReplaceNewlineAndTab replaces CR, LF and TAB with a single space each.
func ReplaceNewlineAndTab(s string) string {
	var sb strings.Builder
	for _, c := range s {
		if c == '\n' || c == '\r' || c == '\t' {
			sb.WriteString(" ")
		} else {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CleanString replaces line breaks with spaces, collapses runs of spaces and
// trims the result. Some titles and subjects contain literal newlines.
func CleanString(s string) string {
	s = ReplaceNewlineAndTab(s)
	var (
		sb   strings.Builder
		last rune
	)
	for _, c := range s {
		if c == ' ' && last == ' ' {
			continue
		}
		sb.WriteRune(c)
		last = c
	}
	return strings.TrimFunc(sb.String(), unicode.IsSpace)
}
