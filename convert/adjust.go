package convert

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ilri/cgmerge/normal"
	"github.com/ilri/cgmerge/schema/canonical"
	"github.com/ilri/cgmerge/schema/contentdm"
)

// AdjustFunc modifies a row after generic extraction. It may consult the raw
// record for fields, that are not mapped to a column directly.
type AdjustFunc func(raw Raw, row *canonical.Row)

// adjustments by name; mappings refer to them by name.
var adjustments = map[string]AdjustFunc{
	"https-handles":           httpsHandles,
	"cifor-handles":           ciforHandles,
	"fix-ifpri-doi":           fixIfpriDOI,
	"ifpri-funders":           ifpriFunders,
	"ifpri-link":              ifpriLink,
	"semicolon-spacing":       semicolonSpacing,
	"irri-subjects":           irriSubjects,
	"icrisat-doi":             icrisatDOI,
	"icrisat-keywords":        icrisatKeywords,
	"icrisat-climate-subject": icrisatClimateSubject,
	"iso-dates":               isoDates,
}

const (
	ifpriCollectionLink = "https://ebrary.ifpri.org/digital/collection/p15738coll5/id/"
	ciforHandlePrefix   = "https://data.cifor.org/dspace/handle"
	// ifpriBadDOI is a publisher internal identifier cataloged as DOI.
	ifpriBadDOI   = "00000034/00000004/art00015"
	ifpriFixedDOI = "10.1177/156482651303400415"
)

var (
	funderRegistryRegex    = regexp.MustCompile(`http://dx\.doi\.org/10\.13039/\d+ `)
	missingSpaceRegex      = regexp.MustCompile(`;(\S)`)
	irriSubjectSepRegex    = regexp.MustCompile(`\.?;`)
	irriTrailingDotRegex   = regexp.MustCompile(`\.$`)
	isoDateRegex           = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)
	isoDatetimePrefixRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]`)
	digitGroupRegex        = regexp.MustCompile(`\d+`)
	monthNameRegex         = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

// httpsHandles upgrades handle links, e.g. http://hdl.handle.net/10883/1234.
func httpsHandles(_ Raw, row *canonical.Row) {
	if v, ok := row.Get(canonical.RepositoryLink); ok {
		row.Set(canonical.RepositoryLink, strings.Replace(v, "http://hdl.handle.net", "https://hdl.handle.net", 1))
	}
}

// ciforHandles makes relative CIFOR links absolute, since their handle
// resolver is not working.
func ciforHandles(_ Raw, row *canonical.Row) {
	if v, ok := row.Get(canonical.RepositoryLink); ok && strings.HasPrefix(v, "#") {
		row.Set(canonical.RepositoryLink, ciforHandlePrefix+v[1:])
	}
}

func fixIfpriDOI(_ Raw, row *canonical.Row) {
	if v, ok := row.Get(canonical.DOI); ok && v == ifpriBadDOI {
		row.Set(canonical.DOI, ifpriFixedDOI)
	}
}

// ifpriFunders removes funder registry identifiers, that precede the name.
func ifpriFunders(_ Raw, row *canonical.Row) {
	if v, ok := row.Get(canonical.Funders); ok {
		row.Set(canonical.Funders, funderRegistryRegex.ReplaceAllString(v, ""))
	}
}

// ifpriLink builds the repository link from the CONTENTdm record pointer.
func ifpriLink(raw Raw, row *canonical.Row) {
	if row.Has(canonical.RepositoryLink) {
		return
	}
	var pointer string
	if it, ok := raw.(*contentdm.Item); ok {
		pointer = it.Pointer()
	} else if vs := raw.Values("dmrecord"); len(vs) > 0 {
		pointer = vs[0]
	}
	if pointer != "" {
		row.Set(canonical.RepositoryLink, ifpriCollectionLink+pointer)
	}
}

// semicolonSpacing adds missing spaces after separators in author lists.
func semicolonSpacing(_ Raw, row *canonical.Row) {
	if v, ok := row.Get(canonical.Authors); ok {
		row.Set(canonical.Authors, missingSpaceRegex.ReplaceAllString(v, "; $1"))
	}
}

// irriSubjects fixes "backcrossing.;climatic change." style subject lists.
func irriSubjects(_ Raw, row *canonical.Row) {
	v, ok := row.Get(canonical.Subjects)
	if !ok {
		return
	}
	v = irriSubjectSepRegex.ReplaceAllString(v, "; ")
	var result []string
	for _, s := range normal.Split(v) {
		result = append(result, irriTrailingDotRegex.ReplaceAllString(s, ""))
	}
	row.Set(canonical.Subjects, normal.Join(result))
}

// icrisatDOI takes the DOI from the identifier field, if it looks like one,
// otherwise from the official URL.
func icrisatDOI(raw Raw, row *canonical.Row) {
	for _, v := range raw.Values("id_number") {
		if strings.Contains(v, "http") || strings.Contains(v, "10.") {
			row.Set(canonical.DOI, v)
			return
		}
	}
	if vs := raw.Values("official_url"); len(vs) > 0 {
		row.Set(canonical.DOI, vs[0])
	}
}

// icrisatKeywords splits the free text keyword field, which uses commas and
// semicolons interchangeably.
func icrisatKeywords(raw Raw, row *canonical.Row) {
	var subjects []string
	for _, v := range raw.Values("keywords") {
		v = strings.ToLower(strings.Replace(v, ";", ",", -1))
		for _, s := range strings.Split(v, ",") {
			if s = normal.CleanString(s); s != "" {
				subjects = append(subjects, s)
			}
		}
	}
	row.Set(canonical.Subjects, normal.Join(normal.Unique(subjects)))
}

// icrisatClimateSubject adds "climate change" for items in the subject
// category s2.8, which is climate change in the ICRISAT classification.
func icrisatClimateSubject(raw Raw, row *canonical.Row) {
	for _, v := range raw.Values("subjects") {
		if v != "s2.8" {
			continue
		}
		subjects := normal.Split(row.Value(canonical.Subjects))
		for _, s := range subjects {
			if s == "climate change" {
				return
			}
		}
		row.Set(canonical.Subjects, normal.Join(append(subjects, "climate change")))
		return
	}
}

// isoDates coerces issue and online dates into YYYY, YYYY-MM or YYYY-MM-DD,
// keeping the precision of the original value. Values that cannot be parsed
// are kept, so that date resolution can flag them.
func isoDates(_ Raw, row *canonical.Row) {
	for _, col := range []string{canonical.PublicationDate, canonical.OnlineDate} {
		if v, ok := row.Get(col); ok {
			if s, ok := ISODate(v); ok {
				row.Set(col, s)
			}
		}
	}
}

// ISODate converts a date string to YYYY, YYYY-MM or YYYY-MM-DD form.
func ISODate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if isoDateRegex.MatchString(s) {
		return s, true
	}
	if m := isoDatetimePrefixRegex.FindString(s); m != "" {
		return m[:10], true
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return s, false
	}
	return t.Format(layoutFor(s)), true
}

// layoutFor guesses the precision of a date string from its digit groups and
// month names, so that "May 2019" does not turn into "2019-05-01".
func layoutFor(s string) string {
	var (
		groups    = len(digitGroupRegex.FindAllString(s, -1))
		monthName = monthNameRegex.MatchString(s)
	)
	switch {
	case groups >= 3 || (groups == 2 && monthName):
		return time.DateOnly
	case groups == 2 || monthName:
		return "2006-01"
	default:
		return "2006"
	}
}
