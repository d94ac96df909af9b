// Package audit provides the job advert quality pipeline. It coordinates
// feed retrieval, HTML sanitization, language classification and rule
// evaluation, and assembles the results into a report.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/jobqc"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Auditor runs quality audits over job feeds.
type Auditor struct {
	Feed       jobqc.FeedService
	Sanitizer  jobqc.Sanitizer
	Classifier jobqc.LanguageClassifier
	Rules      jobqc.RuleEvaluator

	// Concurrency is the number of jobs processed at once.
	// Values below 2 process jobs sequentially.
	Concurrency int

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// ProgressEvent reports progress during an audit run.
type ProgressEvent struct {
	Type            ProgressType
	Completed       int
	Total           int
	ReferenceNumber string
	Error           error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting audit progress.
// Calls are never concurrent.
type ProgressFunc func(event ProgressEvent)

// Run fetches the feed at url and audits every job against the rules in set.
//
// A feed failure returns a *jobqc.FetchError and no report. Failures while
// processing a single job are recorded on that job's entry and never abort
// the run, so the report always has one entry per fetched job, in feed order.
// Cancelling ctx stops the run between jobs.
func (a *Auditor) Run(ctx context.Context, url string, set jobqc.RuleSet, progress ProgressFunc) (*jobqc.Report, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs, err := a.Feed.FetchJobs(ctx, url)
	if err != nil {
		var fe *jobqc.FetchError
		if !errors.As(err, &fe) {
			err = &jobqc.FetchError{URL: url, Err: err}
		}
		return nil, err
	}

	report := &jobqc.Report{
		ID:        a.newID(),
		SourceURL: url,
		Rules:     set,
		CreatedAt: a.now(),
		Jobs:      make([]*jobqc.CleanJob, len(jobs)),
		Entries:   make([]*jobqc.ReportEntry, len(jobs)),
	}

	n := &notifier{fn: progress, total: len(jobs)}
	n.notify(ProgressEvent{Type: ProgressStarted})

	process := func(i int) {
		clean, entry := a.processJob(jobs[i], set)
		report.Jobs[i] = clean
		report.Entries[i] = entry
		n.done(entry)
	}

	if a.Concurrency < 2 {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			process(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.Concurrency)
		for i := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				process(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		// errgroup only cancels gctx when a worker fails, so check the
		// parent separately.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	n.notify(ProgressEvent{Type: ProgressFinished, Completed: len(jobs)})

	return report, nil
}

func (a *Auditor) validate() error {
	switch {
	case a.Feed == nil:
		return jobqc.Errorf(jobqc.EINVALID, "auditor feed service required")
	case a.Sanitizer == nil:
		return jobqc.Errorf(jobqc.EINVALID, "auditor sanitizer required")
	case a.Classifier == nil:
		return jobqc.Errorf(jobqc.EINVALID, "auditor classifier required")
	case a.Rules == nil:
		return jobqc.Errorf(jobqc.EINVALID, "auditor rule evaluator required")
	}
	return nil
}

// processJob runs the per-job stages. It always returns an entry; failed
// stages leave the fields they would have filled at their defaults and are
// described in the entry's Error.
func (a *Auditor) processJob(job *jobqc.Job, set jobqc.RuleSet) (*jobqc.CleanJob, *jobqc.ReportEntry) {
	entry := &jobqc.ReportEntry{
		ReferenceNumber: job.ReferenceNumber,
		Title:           job.Title,
		Country:         job.Country,
		Language:        jobqc.LanguageUnknown,
		Issues:          []string{},
	}

	markup, text, err := a.sanitize(job.DescriptionHTML)
	clean := &jobqc.CleanJob{Job: job, DescriptionClean: markup, DescriptionText: text}
	if err != nil {
		entry.Error = err.Error()
		return clean, entry
	}

	var errs []string
	lang, err := a.classify(text)
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		entry.Language = lang
	}

	issues, err := a.evaluate(clean, entry.Language, set)
	if err != nil {
		errs = append(errs, err.Error())
	} else {
		entry.Issues = issues
	}

	entry.Error = strings.Join(errs, "; ")
	return clean, entry
}

func (a *Auditor) sanitize(markup string) (clean, text string, err error) {
	defer recoverStage(jobqc.StageSanitize, &err)

	clean, err = a.Sanitizer.Sanitize(markup)
	if err != nil {
		return "", "", &jobqc.ProcessingError{Stage: jobqc.StageSanitize, Err: err}
	}
	text, err = a.Sanitizer.PlainText(clean)
	if err != nil {
		return "", "", &jobqc.ProcessingError{Stage: jobqc.StageSanitize, Err: err}
	}
	return clean, text, nil
}

func (a *Auditor) classify(text string) (lang jobqc.LanguageCode, err error) {
	defer recoverStage(jobqc.StageClassify, &err)

	lang = a.Classifier.Classify(text)
	if lang == "" {
		lang = jobqc.LanguageUnknown
	}
	return lang, nil
}

func (a *Auditor) evaluate(job *jobqc.CleanJob, lang jobqc.LanguageCode, set jobqc.RuleSet) (issues []string, err error) {
	defer recoverStage(jobqc.StageEvaluate, &err)

	issues = a.Rules.Evaluate(job, lang, set)
	if issues == nil {
		issues = []string{}
	}
	return issues, nil
}

// recoverStage converts a panic in stage into a *jobqc.ProcessingError.
func recoverStage(stage jobqc.Stage, err *error) {
	if r := recover(); r != nil {
		*err = &jobqc.ProcessingError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}

func (a *Auditor) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Auditor) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

// notifier serializes progress callbacks.
type notifier struct {
	mu        sync.Mutex
	fn        ProgressFunc
	total     int
	completed int
}

func (n *notifier) notify(event ProgressEvent) {
	if n.fn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	event.Total = n.total
	n.fn(event)
}

func (n *notifier) done(entry *jobqc.ReportEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
	if n.fn == nil {
		return
	}
	event := ProgressEvent{
		Type:            ProgressCompleted,
		Completed:       n.completed,
		Total:           n.total,
		ReferenceNumber: entry.ReferenceNumber,
	}
	if entry.Incomplete() {
		event.Type = ProgressFailed
		event.Error = errors.New(entry.Error)
	}
	n.fn(event)
}
