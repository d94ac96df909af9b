package audit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/jobqc"
)

// Ensure Engine implements jobqc.RuleEvaluator at compile time.
var _ jobqc.RuleEvaluator = (*Engine)(nil)

// ruleInput is what every rule sees for one job.
type ruleInput struct {
	job    *jobqc.CleanJob
	lang   jobqc.LanguageCode
	lower  string // lowercased description text
	tables *jobqc.RuleTables
}

// ruleFunc returns the findings of a single rule.
type ruleFunc func(in *ruleInput) []string

// rules lists every rule with its check, in evaluation order.
var rules = []struct {
	id    jobqc.RuleID
	check ruleFunc
}{
	{jobqc.RuleMissingFields, checkMissingFields},
	{jobqc.RuleShortDescription, checkShortDescription},
	{jobqc.RuleNonInclusiveLanguage, checkGenderedTerms},
	{jobqc.RuleTobaccoTerms, checkTobaccoTerms},
	{jobqc.RuleLanguageMismatch, checkLanguageMismatch},
	{jobqc.RulePunctuation, checkPunctuation},
	{jobqc.RuleDiscriminatoryLanguage, checkDiscriminatoryTerms},
}

// Engine evaluates quality rules against jobs.
type Engine struct {
	tables *jobqc.RuleTables
}

// NewEngine creates an Engine using tables.
// If tables is nil, jobqc.DefaultRuleTables() is used.
func NewEngine(tables *jobqc.RuleTables) *Engine {
	if tables == nil {
		tables = jobqc.DefaultRuleTables()
	}
	return &Engine{tables: tables}
}

// Evaluate runs each selected rule in order and returns all findings.
// Findings are never deduplicated.
func (e *Engine) Evaluate(job *jobqc.CleanJob, lang jobqc.LanguageCode, set jobqc.RuleSet) []string {
	findings := []string{}
	if set == 0 {
		return findings
	}

	in := &ruleInput{
		job:    job,
		lang:   lang,
		lower:  strings.ToLower(job.DescriptionText),
		tables: e.tables,
	}
	for _, r := range rules {
		if !set.Has(r.id) {
			continue
		}
		findings = append(findings, r.check(in)...)
	}
	return findings
}

func checkMissingFields(in *ruleInput) []string {
	var findings []string
	fields := []struct {
		name  string
		value string
	}{
		{"title", in.job.Title},
		{"description_text", in.job.DescriptionText},
		{"reference_number", in.job.ReferenceNumber},
		{"country", in.job.Country},
		{"city", in.job.City},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			findings = append(findings, "Missing or empty field: "+f.name)
		}
	}
	return findings
}

func checkShortDescription(in *ruleInput) []string {
	minLen := in.tables.MinDescriptionLength
	if utf8.RuneCountInString(in.job.DescriptionText) < minLen {
		return []string{fmt.Sprintf("Description too short (<%d characters)", minLen)}
	}
	return nil
}

func checkGenderedTerms(in *ruleInput) []string {
	return matchTerms(in.lower, in.tables.GenderedTerms, "Non-inclusive language: '%s' found")
}

func checkTobaccoTerms(in *ruleInput) []string {
	return matchTerms(in.lower, in.tables.TobaccoTerms, "Tobacco-related term: '%s' found")
}

func checkDiscriminatoryTerms(in *ruleInput) []string {
	return matchTerms(in.lower, in.tables.DiscriminatoryTerms, "Potentially discriminatory language: '%s' found")
}

func checkLanguageMismatch(in *ruleInput) []string {
	expected, ok := in.tables.ExpectedLanguage(in.job.Country)
	if !ok || in.lang == expected {
		return nil
	}
	return []string{fmt.Sprintf("Language mismatch: expected %s, got %s", expected, in.lang)}
}

func checkPunctuation(in *ruleInput) []string {
	var findings []string
	text := in.job.DescriptionText
	limit := in.tables.MaxExclamations
	if strings.Count(text, "!") > limit {
		findings = append(findings, fmt.Sprintf("Excessive exclamation marks (more than %d '!')", limit))
	}
	if !strings.ContainsAny(text, ".!?") {
		findings = append(findings, "Missing sentence punctuation (no '.', '!' or '?')")
	}
	return findings
}

// matchTerms reports every term contained in lower, in list order.
// Matching is plain substring containment; padding spaces in a term are
// significant.
func matchTerms(lower string, terms []string, format string) []string {
	var findings []string
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			findings = append(findings, fmt.Sprintf(format, term))
		}
	}
	return findings
}
