package mock

import "github.com/fwojciec/jobqc"

var _ jobqc.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of jobqc.Sanitizer.
type Sanitizer struct {
	SanitizeFn  func(markup string) (string, error)
	PlainTextFn func(markup string) (string, error)
}

func (s *Sanitizer) Sanitize(markup string) (string, error) {
	return s.SanitizeFn(markup)
}

func (s *Sanitizer) PlainText(markup string) (string, error) {
	return s.PlainTextFn(markup)
}
