package mock

import "github.com/fwojciec/jobqc"

var _ jobqc.RuleEvaluator = (*RuleEvaluator)(nil)

// RuleEvaluator is a mock implementation of jobqc.RuleEvaluator.
type RuleEvaluator struct {
	EvaluateFn func(job *jobqc.CleanJob, lang jobqc.LanguageCode, rules jobqc.RuleSet) []string
}

func (e *RuleEvaluator) Evaluate(job *jobqc.CleanJob, lang jobqc.LanguageCode, rules jobqc.RuleSet) []string {
	return e.EvaluateFn(job, lang, rules)
}
