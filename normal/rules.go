package normal

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule replaces a whole value with a canonical name, if the pattern matches.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Rules is an ordered list of alias rules. The first matching rule wins.
type Rules []Rule

// MustRules builds rules from pattern, replacement pairs and panics on an
// invalid pattern or an odd number of arguments.
func MustRules(pairs ...string) Rules {
	if len(pairs)%2 != 0 {
		panic("normal: rules need pattern and replacement pairs")
	}
	var rules Rules
	for i := 0; i < len(pairs); i += 2 {
		rules = append(rules, Rule{
			Pattern:     regexp.MustCompile(pairs[i]),
			Replacement: pairs[i+1],
		})
	}
	return rules
}

// Rewrite applies the first matching rule to a single value. Unmatched values
// are returned unchanged.
func (rs Rules) Rewrite(v string) string {
	for _, r := range rs {
		if r.Pattern.MatchString(v) {
			return r.Replacement
		}
	}
	return v
}

// Apply rewrites every value of a joined field independently and removes
// the duplicates that folding may produce.
func (rs Rules) Apply(s string) string {
	var result []string
	for _, v := range Split(s) {
		result = append(result, rs.Rewrite(v))
	}
	return Join(Unique(result))
}

// Concat returns a new rule list, trying rs first, then other.
func (rs Rules) Concat(other Rules) Rules {
	result := make(Rules, 0, len(rs)+len(other))
	result = append(result, rs...)
	return append(result, other...)
}

// ruleDoc is the on-disk shape of a rule.
type ruleDoc struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// LoadRules reads a YAML list of pattern and replacement entries.
func LoadRules(r io.Reader) (Rules, error) {
	var docs []ruleDoc
	if err := yaml.NewDecoder(r).Decode(&docs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	var rules Rules
	for i, d := range docs {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if d.Replacement == "" {
			return nil, fmt.Errorf("rule %d: empty replacement for %q", i, d.Pattern)
		}
		rules = append(rules, Rule{Pattern: re, Replacement: d.Replacement})
	}
	return rules, nil
}

// LoadRulesFile reads rules from a file.
func LoadRulesFile(filename string) (Rules, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rules, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rules, nil
}

// PublisherRules fold imprints and legal entities into umbrella brands.
var PublisherRules = MustRules(
	`(?i)^elsevier`, "Elsevier",
	`(?i)^(springer|biomed central|bmc\b)`, "Springer",
	`(?i)wiley`, "Wiley",
	`(?i)^(informa uk|taylor (&|and) francis|routledge)`, "Taylor & Francis",
	`(?i)^(mdpi|multidisciplinary digital publishing institute)`, "MDPI",
	`(?i)^oxford university press`, "Oxford University Press",
	`(?i)^cambridge university press`, "Cambridge University Press",
	`(?i)^frontiers`, "Frontiers",
	`(?i)^iop publishing`, "IOP Publishing",
	`(?i)^(public library of science|plos)`, "PLOS",
	`(?i)^american geophysical union`, "American Geophysical Union",
	`(?i)^copernicus`, "Copernicus Publications",
	`(?i)^sage publications`, "SAGE Publications",
	`(?i)^(cabi|cab international)`, "CABI",
	`(?i)^emerald`, "Emerald",
	`(?i)^(american society of agronomy|crop science society of america|soil science society of america)`, "American Society of Agronomy",
)

// AffiliationRules fold spelling and legal entity variants of CGIAR centers
// and frequent partners into one label.
var AffiliationRules = MustRules(
	`(?i)(international livestock research institute|^ilri\b)`, "International Livestock Research Institute",
	`(?i)(international maize and wheat improvement cent(er|re)|^cimmyt\b)`, "International Maize and Wheat Improvement Center",
	`(?i)(international rice research institute|^irri\b)`, "International Rice Research Institute",
	`(?i)(international crops research institute for the semi-arid tropics|^icrisat\b)`, "International Crops Research Institute for the Semi-Arid Tropics",
	`(?i)(international food policy research institute|^ifpri\b)`, "International Food Policy Research Institute",
	`(?i)(center for international forestry research|^cifor\b)`, "Center for International Forestry Research",
	`(?i)(world agroforestry|international cent(er|re) for research in agroforestry|^icraf\b)`, "World Agroforestry",
	`(?i)(worldfish|^world fish)`, "WorldFish",
	`(?i)(international center for agricultural research in the dry areas|^icarda\b)`, "International Center for Agricultural Research in the Dry Areas",
	`(?i)(international institute of tropical agriculture|^iita\b)`, "International Institute of Tropical Agriculture",
	`(?i)(international cent(er|re) for tropical agriculture|centro internacional de agricultura tropical|^ciat\b)`, "International Center for Tropical Agriculture",
	`(?i)(bioversity)`, "Bioversity International",
	`(?i)(international potato cent(er|re)|centro internacional de la papa|^cip\b)`, "International Potato Center",
	`(?i)(international water management institute|^iwmi\b)`, "International Water Management Institute",
	`(?i)(africarice|africa rice center)`, "AfricaRice",
	`(?i)(climate change, agriculture and food security|^ccafs\b)`, "CGIAR Research Program on Climate Change, Agriculture and Food Security",
	`(?i)^wageningen (university|ur\b)`, "Wageningen University & Research",
	`(?i)^university of california,? davis`, "University of California, Davis",
)

// AccessRightsRules align repository vocabularies with the labels we use for
// open access status.
var AccessRightsRules = MustRules(
	`(?i)^(closed access|limited access|restricted access)$`, "Limited Access",
	`(?i)^gold open access$`, "Gold Open Access",
	`(?i)^green open access$`, "Green Open Access",
	`(?i)^hybrid open access$`, "Hybrid Open Access",
	`(?i)^bronze open access$`, "Bronze Open Access",
	`(?i)^open access$`, "Open Access",
)

// UsageRightsRules align free text license statements with license ids.
var UsageRightsRules = MustRules(
	`^Attribution 4\.0`, "CC-BY-4.0",
	`(?i)^cc[- ]by[- ]4\.0$`, "CC-BY-4.0",
	`(?i)^cc[- ]by[- ]nc[- ]4\.0$`, "CC-BY-NC-4.0",
	`(?i)^cc[- ]by[- ]nc[- ]sa[- ]4\.0$`, "CC-BY-NC-SA-4.0",
	`(?i)^cc[- ]by[- ]sa[- ]4\.0$`, "CC-BY-SA-4.0",
	`(?i)^cc0([- ]1\.0)?$`, "CC0-1.0",
)
