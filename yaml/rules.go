// Package yaml loads rule tables from YAML documents.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/jobqc"
	"gopkg.in/yaml.v3"
)

// ruleTablesFile mirrors jobqc.RuleTables. Pointer and nil-able fields
// distinguish "not set" from "set to empty" so unset keys keep defaults.
type ruleTablesFile struct {
	MinDescriptionLength *int              `yaml:"min_description_length"`
	MaxExclamations      *int              `yaml:"max_exclamations"`
	GenderedTerms        []string          `yaml:"gendered_terms"`
	TobaccoTerms         []string          `yaml:"tobacco_terms"`
	DiscriminatoryTerms  []string          `yaml:"discriminatory_terms"`
	ExpectedLanguages    map[string]string `yaml:"expected_languages"`
}

// LoadRuleTables reads a YAML document from r and overlays it on
// jobqc.DefaultRuleTables. Keys absent from the document keep their
// default values; a key that is present replaces the default entirely.
// Country keys are matched case-insensitively.
func LoadRuleTables(r io.Reader) (*jobqc.RuleTables, error) {
	var f ruleTablesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, jobqc.Errorf(jobqc.EINVALID, "parsing rule tables: %v", err)
	}

	t := jobqc.DefaultRuleTables()
	if f.MinDescriptionLength != nil {
		t.MinDescriptionLength = *f.MinDescriptionLength
	}
	if f.MaxExclamations != nil {
		t.MaxExclamations = *f.MaxExclamations
	}
	if f.GenderedTerms != nil {
		t.GenderedTerms = f.GenderedTerms
	}
	if f.TobaccoTerms != nil {
		t.TobaccoTerms = f.TobaccoTerms
	}
	if f.DiscriminatoryTerms != nil {
		t.DiscriminatoryTerms = f.DiscriminatoryTerms
	}
	if f.ExpectedLanguages != nil {
		t.ExpectedLanguages = make(map[string]jobqc.LanguageCode, len(f.ExpectedLanguages))
		for country, lang := range f.ExpectedLanguages {
			key := strings.ToLower(strings.TrimSpace(country))
			t.ExpectedLanguages[key] = jobqc.LanguageCode(strings.TrimSpace(lang))
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadRuleTablesFile loads rule tables from the YAML file at path.
func ReadRuleTablesFile(path string) (*jobqc.RuleTables, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, jobqc.Errorf(jobqc.ENOTFOUND, "rule tables file not found: %s", path)
		}
		return nil, fmt.Errorf("opening rule tables: %w", err)
	}
	defer f.Close()

	return LoadRuleTables(f)
}
