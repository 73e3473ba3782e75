package convert

import (
	"github.com/ilri/cgmerge/schema/canonical"
)

// c is a shorthand for a rule with a fallback chain.
func c(column string, candidates ...string) Rule {
	return Rule{Column: column, Candidates: candidates}
}

// mappings contains one mapping per source. Field names are those of the
// harvested records of each repository.
var mappings = map[canonical.Source]*Mapping{
	canonical.CGSpace: {
		Source: canonical.CGSpace,
		Rules: []Rule{
			c(canonical.Title, "dc.title"),
			c(canonical.Authors, "dc.contributor.author"),
			c(canonical.Affiliations, "cg.contributor.affiliation"),
			c(canonical.Abstract, "dcterms.abstract"),
			c(canonical.Funders, "cg.contributor.donor"),
			c(canonical.Language, "dcterms.language"),
			c(canonical.DOI, "cg.identifier.doi"),
			c(canonical.AccessRights, "dcterms.accessRights"),
			c(canonical.UsageRights, "dcterms.license"),
			c(canonical.RepositoryLink, "dc.identifier.uri"),
			c(canonical.PublicationDate, "dcterms.issued"),
			c(canonical.OnlineDate, "dcterms.available"),
			c(canonical.Journal, "cg.journal"),
			c(canonical.ISSN, "cg.issn"),
			c(canonical.Publisher, "dcterms.publisher"),
			c(canonical.Volume, "cg.volume"),
			c(canonical.Issue, "cg.issue"),
			c(canonical.Pages, "dcterms.extent"),
			{Column: canonical.Subjects, Candidates: []string{"dcterms.subject"}, Lower: true},
			c(canonical.Countries, "cg.coverage.country"),
		},
		Adjustments: []string{"iso-dates"},
	},
	canonical.MELSpace: {
		Source: canonical.MELSpace,
		Rules: []Rule{
			c(canonical.Title, "dc.title"),
			{Column: canonical.Authors, Candidates: []string{"dc.creator", "dc.contributor"}, Concat: true},
			c(canonical.Affiliations, "cg.contributor.center"),
			c(canonical.Abstract, "dc.description.abstract"),
			c(canonical.Funders, "cg.contributor.funder"),
			c(canonical.Language, "dc.language"),
			c(canonical.DOI, "cg.identifier.doi"),
			c(canonical.AccessRights, "dc.identifier.status"),
			c(canonical.UsageRights, "dc.rights"),
			c(canonical.RepositoryLink, "dc.identifier.uri"),
			c(canonical.PublicationDate, "dcterms.issued", "dc.date.issued"),
			c(canonical.OnlineDate, "dcterms.available"),
			c(canonical.Journal, "cg.journal"),
			c(canonical.ISSN, "cg.issn"),
			c(canonical.Publisher, "dc.publisher"),
			c(canonical.Volume, "cg.volume"),
			c(canonical.Issue, "cg.issue"),
			c(canonical.Pages, "dcterms.extent"),
			{Column: canonical.Subjects, Candidates: []string{"cg.subject.agrovoc", "dc.subject"}, Concat: true, Lower: true},
			c(canonical.Countries, "cg.coverage.country"),
		},
		Adjustments: []string{"iso-dates"},
	},
	canonical.WorldFish: {
		Source: canonical.WorldFish,
		Rules: []Rule{
			c(canonical.Title, "dc.title"),
			c(canonical.Authors, "dc.creator", "dc.contributor.author"),
			c(canonical.Affiliations, "cg.contributor.affiliation"),
			c(canonical.Abstract, "dc.description.abstract"),
			c(canonical.Funders, "cg.contributor.funder"),
			c(canonical.Language, "dc.language.iso", "dc.language"),
			c(canonical.DOI, "dc.identifier.doi", "cg.identifier.doi"),
			c(canonical.AccessRights, "cg.identifier.status"),
			c(canonical.UsageRights, "dc.rights"),
			c(canonical.RepositoryLink, "dc.identifier.uri"),
			c(canonical.PublicationDate, "dc.date.issued"),
			c(canonical.Journal, "dc.source"),
			c(canonical.ISSN, "dc.identifier.issn"),
			c(canonical.Publisher, "dc.publisher"),
			{Column: canonical.Subjects, Candidates: []string{"dc.subject", "cg.subject.agrovoc"}, Concat: true, Lower: true},
			c(canonical.Countries, "cg.coverage.country"),
		},
		Adjustments: []string{"iso-dates"},
	},
	canonical.CIFOR: {
		Source: canonical.CIFOR,
		Rules: []Rule{
			c(canonical.Title, "dc.title"),
			c(canonical.Authors, "dc.contributor.author"),
			{Column: canonical.Affiliations, Candidates: []string{"cg.contributor.affiliation", "cg.contributor.center"}, Concat: true},
			c(canonical.Abstract, "dc.description.abstract"),
			c(canonical.Funders, "cg.contributor.donor"),
			c(canonical.Language, "dc.language.iso", "dc.language"),
			c(canonical.DOI, "dc.identifier.doi"),
			c(canonical.AccessRights, "cifor.type.oa"),
			c(canonical.UsageRights, "dc.rights"),
			c(canonical.RepositoryLink, "dc.identifier.uri"),
			c(canonical.PublicationDate, "dc.date.issued"),
			c(canonical.Journal, "cifor.source.title"),
			c(canonical.ISSN, "dc.identifier.issn"),
			c(canonical.Publisher, "dc.publisher"),
			c(canonical.Volume, "cifor.source.volume"),
			c(canonical.Issue, "cifor.source.numbers"),
			c(canonical.Pages, "cifor.source.page"),
			{Column: canonical.Subjects, Candidates: []string{"dc.subject", "cg.subject.cifor"}, Concat: true, Lower: true},
			c(canonical.Countries, "cg.coverage.country"),
		},
		Adjustments: []string{"cifor-handles", "iso-dates"},
	},
	canonical.IFPRI: {
		Source: canonical.IFPRI,
		Rules: []Rule{
			c(canonical.Title, "title"),
			c(canonical.Authors, "creato"),
			c(canonical.Abstract, "descri"),
			c(canonical.Funders, "fundin"),
			c(canonical.Language, "langua"),
			c(canonical.DOI, "doia"),
			c(canonical.AccessRights, "access"),
			c(canonical.UsageRights, "cclice"),
			c(canonical.PublicationDate, "date"),
			c(canonical.Journal, "series"),
			c(canonical.ISSN, "issn"),
			c(canonical.Publisher, "publis"),
			c(canonical.Pages, "source"),
			{Column: canonical.Subjects, Candidates: []string{"loc", "subjea"}, Concat: true, Lower: true},
			c(canonical.Countries, "countr"),
		},
		Adjustments: []string{"fix-ifpri-doi", "ifpri-funders", "ifpri-link", "iso-dates"},
	},
	canonical.IRRI: {
		Source: canonical.IRRI,
		Rules: []Rule{
			c(canonical.Title, "title"),
			{Column: canonical.Authors, Candidates: []string{"first author", "other authors"}, Concat: true},
			c(canonical.Abstract, "abstract"),
			c(canonical.DOI, "doi"),
			c(canonical.RepositoryLink, "url"),
			c(canonical.PublicationDate, "date issued"),
			c(canonical.Journal, "journal"),
			c(canonical.ISSN, "issn"),
			c(canonical.Publisher, "publisher"),
			c(canonical.Volume, "volume"),
			c(canonical.Issue, "issue"),
			c(canonical.Pages, "extent"),
			{Column: canonical.Subjects, Candidates: []string{"subjects"}, Lower: true},
		},
		Adjustments: []string{"semicolon-spacing", "irri-subjects", "iso-dates"},
	},
	canonical.ICRISAT: {
		Source: canonical.ICRISAT,
		Rules: []Rule{
			c(canonical.Title, "title"),
			c(canonical.Authors, "authors"),
			c(canonical.Affiliations, "affiliation"),
			c(canonical.Abstract, "abstract"),
			c(canonical.Funders, "funders"),
			c(canonical.Language, "language"),
			c(canonical.RepositoryLink, "uri"),
			c(canonical.PublicationDate, "date"),
			c(canonical.Journal, "publication"),
			c(canonical.ISSN, "issn"),
			c(canonical.Publisher, "publisher"),
			c(canonical.Volume, "volume"),
			c(canonical.Issue, "number"),
			c(canonical.Pages, "pagerange"),
		},
		Adjustments: []string{"icrisat-doi", "icrisat-keywords", "icrisat-climate-subject", "iso-dates"},
	},
	canonical.CIMMYT: {
		Source: canonical.CIMMYT,
		Rules: []Rule{
			c(canonical.Title, "dc.title"),
			c(canonical.Authors, "dc.creator", "dc.contributor.author"),
			c(canonical.Abstract, "dc.description", "dc.description.abstract", "dcterms.description"),
			c(canonical.Funders, "dc.relation.funderName"),
			c(canonical.Language, "dc.language", "dcterms.language"),
			c(canonical.DOI, "dc.identifier.doi"),
			c(canonical.AccessRights, "dc.rights.accessRights", "dcterms.accessRights"),
			c(canonical.UsageRights, "dc.rights"),
			c(canonical.RepositoryLink, "dc.identifier.uri"),
			c(canonical.PublicationDate, "dc.date.issued"),
			c(canonical.Journal, "dc.source.journal"),
			c(canonical.ISSN, "dc.source.issn"),
			c(canonical.Publisher, "dc.publisher", "dcterms.publisher"),
			c(canonical.Volume, "dc.source.volume"),
			c(canonical.Issue, "dc.source.issue"),
			c(canonical.Pages, "dc.description.pages"),
			{Column: canonical.Subjects, Candidates: []string{"dc.subject.agrovoc", "dc.subject.keywords"}, Concat: true, Lower: true},
			c(canonical.Countries, "dc.coverage.countryfocus"),
		},
		Adjustments: []string{"https-handles", "iso-dates"},
	},
}

// Mappings returns all source mappings in merge order.
func Mappings() []*Mapping {
	var result []*Mapping
	for _, s := range canonical.Sources {
		if m, ok := mappings[s]; ok {
			result = append(result, m)
		}
	}
	return result
}
