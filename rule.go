package jobqc

import (
	"strings"
)

// RuleID identifies a quality rule. The set of rules is closed.
type RuleID uint8

// Quality rules in evaluation order.
const (
	RuleMissingFields RuleID = iota
	RuleShortDescription
	RuleNonInclusiveLanguage
	RuleTobaccoTerms
	RuleLanguageMismatch
	RulePunctuation
	RuleDiscriminatoryLanguage

	numRules
)

var ruleNames = [numRules]string{
	RuleMissingFields:          "Missing fields",
	RuleShortDescription:       "Short description",
	RuleNonInclusiveLanguage:   "Non-inclusive language",
	RuleTobaccoTerms:           "Tobacco-related terms",
	RuleLanguageMismatch:       "Language mismatch",
	RulePunctuation:            "Punctuation issues",
	RuleDiscriminatoryLanguage: "Discriminatory language",
}

// String returns the human-readable rule name used for rule selection.
func (id RuleID) String() string {
	if id >= numRules {
		return "Unknown rule"
	}
	return ruleNames[id]
}

// Rules returns every rule in evaluation order.
func Rules() []RuleID {
	ids := make([]RuleID, 0, numRules)
	for id := RuleID(0); id < numRules; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseRuleID returns the rule with the given name.
// Leading and trailing whitespace is ignored; matching is otherwise exact.
func ParseRuleID(name string) (RuleID, bool) {
	name = strings.TrimSpace(name)
	for id, n := range ruleNames {
		if n == name {
			return RuleID(id), true
		}
	}
	return 0, false
}

// RuleSet is a set of rules selected for an audit run.
// The zero value is the empty set, which produces no findings.
type RuleSet uint16

// NewRuleSet returns a set containing ids.
func NewRuleSet(ids ...RuleID) RuleSet {
	var s RuleSet
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// AllRules returns the set of every rule.
func AllRules() RuleSet {
	return NewRuleSet(Rules()...)
}

// ParseRuleSet builds a set from rule names.
// Names that match no rule are returned in unknown and otherwise ignored.
func ParseRuleSet(names []string) (set RuleSet, unknown []string) {
	for _, name := range names {
		id, ok := ParseRuleID(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set = set.With(id)
	}
	return set, unknown
}

// With returns a copy of s that includes id.
func (s RuleSet) With(id RuleID) RuleSet {
	if id >= numRules {
		return s
	}
	return s | 1<<id
}

// Has reports whether id is in the set.
func (s RuleSet) Has(id RuleID) bool {
	return id < numRules && s&(1<<id) != 0
}

// IDs returns the rules in the set in evaluation order.
func (s RuleSet) IDs() []RuleID {
	var ids []RuleID
	for _, id := range Rules() {
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Names returns the names of the rules in the set in evaluation order.
func (s RuleSet) Names() []string {
	names := []string{}
	for _, id := range s.IDs() {
		names = append(names, id.String())
	}
	return names
}

// RuleTables holds the data the quality rules match against.
// Term lists are matched as lowercase substrings of the plain text, so
// padding a term with spaces narrows it to whole words in most prose.
type RuleTables struct {
	// MinDescriptionLength is the shortest acceptable description, in characters.
	MinDescriptionLength int

	// MaxExclamations is the most '!' characters a description may contain.
	MaxExclamations int

	GenderedTerms       []string
	TobaccoTerms        []string
	DiscriminatoryTerms []string

	// ExpectedLanguages maps a lowercased country name to the language
	// adverts for that country are expected to be written in.
	ExpectedLanguages map[string]LanguageCode
}

// DefaultRuleTables returns the built-in rule tables.
func DefaultRuleTables() *RuleTables {
	return &RuleTables{
		MinDescriptionLength: 500,
		MaxExclamations:      3,
		GenderedTerms: []string{
			" he ", " she ", " his ", " her ",
			"he/she", "his/her", "him/her",
			"chairman", "manpower",
		},
		TobaccoTerms: []string{
			"cigarette", "malboro", "smoking", "vape", "cancer",
		},
		DiscriminatoryTerms: []string{
			"young", "energetic", "native english speaker", "able-bodied",
		},
		ExpectedLanguages: map[string]LanguageCode{
			"united kingdom": "en",
			"usa":            "en",
			"canada":         "en",
			"australia":      "en",
		},
	}
}

// Validate returns an error if the tables cannot be used by the rules.
func (t *RuleTables) Validate() error {
	if t.MinDescriptionLength < 0 {
		return Errorf(EINVALID, "minimum description length must not be negative")
	}
	if t.MaxExclamations < 0 {
		return Errorf(EINVALID, "maximum exclamation count must not be negative")
	}
	for _, list := range [][]string{t.GenderedTerms, t.TobaccoTerms, t.DiscriminatoryTerms} {
		for _, term := range list {
			if term == "" {
				return Errorf(EINVALID, "term lists must not contain empty terms")
			}
		}
	}
	for country, lang := range t.ExpectedLanguages {
		if strings.TrimSpace(country) == "" {
			return Errorf(EINVALID, "expected language country must not be empty")
		}
		if lang == "" {
			return Errorf(EINVALID, "expected language for %q must not be empty", country)
		}
	}
	return nil
}

// ExpectedLanguage returns the language adverts for country should use.
// The lookup is case-insensitive. Returns false if country is not mapped.
func (t *RuleTables) ExpectedLanguage(country string) (LanguageCode, bool) {
	lang, ok := t.ExpectedLanguages[strings.ToLower(strings.TrimSpace(country))]
	return lang, ok
}

// RuleEvaluator runs quality rules against a single job.
type RuleEvaluator interface {
	// Evaluate returns the findings of every rule in rules, in rule order.
	// An empty set yields no findings.
	Evaluate(job *CleanJob, lang LanguageCode, rules RuleSet) []string
}
