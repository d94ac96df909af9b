package mock

import "github.com/fwojciec/jobqc"

var _ jobqc.LanguageClassifier = (*LanguageClassifier)(nil)

// LanguageClassifier is a mock implementation of jobqc.LanguageClassifier.
type LanguageClassifier struct {
	ClassifyFn func(text string) jobqc.LanguageCode
}

func (c *LanguageClassifier) Classify(text string) jobqc.LanguageCode {
	return c.ClassifyFn(text)
}
