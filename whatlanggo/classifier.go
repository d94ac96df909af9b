// Package whatlanggo implements jobqc.LanguageClassifier using whatlanggo's
// trigram language detection.
package whatlanggo

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/fwojciec/jobqc"
)

// Ensure Classifier implements jobqc.LanguageClassifier at compile time.
var _ jobqc.LanguageClassifier = (*Classifier)(nil)

// Classifier guesses the language of plain text.
type Classifier struct {
	minConfidence float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMinConfidence makes guesses below confidence c return
// jobqc.LanguageUnknown. The default of zero accepts any guess.
func WithMinConfidence(c float64) Option {
	return func(cl *Classifier) {
		cl.minConfidence = c
	}
}

// NewClassifier creates a new Classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the ISO 639-1 code of the detected language.
func (c *Classifier) Classify(text string) jobqc.LanguageCode {
	if strings.TrimSpace(text) == "" {
		return jobqc.LanguageUnknown
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence <= 0 || info.Confidence < c.minConfidence {
		return jobqc.LanguageUnknown
	}
	return jobqc.LanguageCode(code)
}
