package normal

import (
	"regexp"
	"strings"
)

// DOIPrefix is the canonical form prefix of every DOI we emit.
const DOIPrefix = "https://doi.org/"

var (
	// doiResolverRegex matches legacy and current resolver prefixes.
	doiResolverRegex = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)
	// doiStraySpaceRegex matches typos like "https:// doi.org/".
	doiStraySpaceRegex = regexp.MustCompile(`(?i)^https?://\s+doi\.org/`)
	doiSchemeRegex     = regexp.MustCompile(`(?i)doi:\s*`)
	// Publisher landing pages that were cataloged instead of the DOI. The
	// first matching prefix is removed, so more specific paths come first.
	fullTextPrefixes = []string{
		"https://www.tandfonline.com/doi/full/",
		"https://www.tandfonline.com/doi/abs/",
		"https://onlinelibrary.wiley.com/doi/full/",
		"https://onlinelibrary.wiley.com/doi/abs/",
		"https://onlinelibrary.wiley.com/doi/epdf/",
		"https://onlinelibrary.wiley.com/doi/pdf/",
		"https://onlinelibrary.wiley.com/doi/",
		"https://link.springer.com/article/",
	}
)

// NormalizeDOI returns a DOI in lowercase https://doi.org/10.x form. It fixes
// a number of cataloging errors seen in repository metadata. The empty string
// stays empty. NormalizeDOI(NormalizeDOI(s)) == NormalizeDOI(s).
func NormalizeDOI(s string) string {
	s = strings.Replace(s, "\u200b", "", -1) // zero width space
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// doi:10.1088/1748-9326/ac413a, http://dx.doi.org/DOI:10.1016/...
	s = doiSchemeRegex.ReplaceAllString(s, "")
	for {
		t := doiResolverRegex.ReplaceAllString(s, "")
		t = doiStraySpaceRegex.ReplaceAllString(t, "")
		for _, p := range fullTextPrefixes {
			if len(t) >= len(p) && strings.EqualFold(t[:len(p)], p) {
				t = t[len(p):]
				break
			}
		}
		t = strings.TrimSpace(t)
		if t == s {
			break
		}
		s = t
	}
	// 0.1002/2014WR016668
	if strings.HasPrefix(s, "0.") {
		s = "1" + s
	}
	s = strings.ToLower(s)
	if s == "" {
		return ""
	}
	return DOIPrefix + s
}

// IsCanonicalDOI returns true, if s looks like a normalized DOI. Only these
// DOIs are looked up in external registries.
func IsCanonicalDOI(s string) bool {
	return strings.HasPrefix(s, DOIPrefix+"10.")
}

// BareDOI strips the resolver prefix, e.g. for building file names.
func BareDOI(s string) string {
	return strings.TrimPrefix(s, DOIPrefix)
}
