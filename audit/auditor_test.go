package audit_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/jobqc"
	"github.com/fwojciec/jobqc/audit"
	"github.com/fwojciec/jobqc/goquery"
	"github.com/fwojciec/jobqc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedURL = "https://example.com/feed.xml"

func feedOf(jobs ...*jobqc.Job) *mock.FeedService {
	return &mock.FeedService{
		FetchJobsFn: func(_ context.Context, _ string) ([]*jobqc.Job, error) {
			return jobs, nil
		},
	}
}

func passthroughSanitizer() *mock.Sanitizer {
	return &mock.Sanitizer{
		SanitizeFn:  func(markup string) (string, error) { return markup, nil },
		PlainTextFn: func(markup string) (string, error) { return markup, nil },
	}
}

func fixedClassifier(lang jobqc.LanguageCode) *mock.LanguageClassifier {
	return &mock.LanguageClassifier{
		ClassifyFn: func(string) jobqc.LanguageCode { return lang },
	}
}

func newAuditor(feed jobqc.FeedService) *audit.Auditor {
	return &audit.Auditor{
		Feed:       feed,
		Sanitizer:  passthroughSanitizer(),
		Classifier: fixedClassifier("en"),
		Rules:      audit.NewEngine(nil),
	}
}

func jobWithRef(ref string) *jobqc.Job {
	return &jobqc.Job{
		Title:           "Job " + ref,
		ReferenceNumber: ref,
		City:            "Toronto",
		Country:         "Canada",
		DescriptionHTML: longText(600),
	}
}

func refs(report *jobqc.Report) []string {
	var a []string
	for _, e := range report.Entries {
		a = append(a, e.ReferenceNumber)
	}
	return a
}

func TestAuditor_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns one entry per job in feed order", func(t *testing.T) {
		t.Parallel()

		short := jobWithRef("B")
		short.DescriptionHTML = "Too short."
		a := newAuditor(feedOf(jobWithRef("A"), short, jobWithRef("C")))

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, refs(report))
		require.Len(t, report.Jobs, 3)
		assert.Equal(t, feedURL, report.SourceURL)
		assert.Equal(t, jobqc.AllRules(), report.Rules)

		assert.Equal(t, &jobqc.ReportEntry{
			ReferenceNumber: "A",
			Title:           "Job A",
			Country:         "Canada",
			Language:        "en",
			Issues:          []string{},
		}, report.Entries[0])
		assert.Equal(t, []string{"Description too short (<500 characters)"}, report.Entries[1].Issues)
	})

	t.Run("returns empty report for empty feed", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf())

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Empty(t, report.Entries)
		assert.Empty(t, report.Jobs)
	})

	t.Run("passes url to feed service", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		a := newAuditor(&mock.FeedService{
			FetchJobsFn: func(_ context.Context, url string) ([]*jobqc.Job, error) {
				gotURL = url
				return nil, nil
			},
		})

		_, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Equal(t, feedURL, gotURL)
	})

	t.Run("empty rule set yields no findings", func(t *testing.T) {
		t.Parallel()

		bad := &jobqc.Job{DescriptionHTML: "young smokers!!!!"}
		a := newAuditor(feedOf(bad))
		a.Classifier = fixedClassifier("fr")

		report, err := a.Run(context.Background(), feedURL, jobqc.RuleSet(0), nil)

		require.NoError(t, err)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, []string{}, report.Entries[0].Issues)
		assert.Equal(t, jobqc.LanguageCode("fr"), report.Entries[0].Language)
	})

	t.Run("uses injected clock and id generator", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		a := newAuditor(feedOf())
		a.Now = func() time.Time { return now }
		a.NewID = func() string { return "run-1" }

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Equal(t, "run-1", report.ID)
		assert.Equal(t, now, report.CreatedAt)
	})

	t.Run("generates report ids by default", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf())

		first, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)
		require.NoError(t, err)
		second, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("requires collaborators", func(t *testing.T) {
		t.Parallel()

		a := &audit.Auditor{}

		_, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		assert.Equal(t, jobqc.EINVALID, jobqc.ErrorCode(err))
	})
}

func TestAuditor_Run_FetchFailure(t *testing.T) {
	t.Parallel()

	t.Run("returns FetchError and no report", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		a := newAuditor(&mock.FeedService{
			FetchJobsFn: func(_ context.Context, url string) ([]*jobqc.Job, error) {
				return nil, &jobqc.FetchError{URL: url, Err: cause}
			},
		})

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		var fe *jobqc.FetchError
		require.ErrorAs(t, err, &fe)
		assert.ErrorIs(t, err, cause)
		assert.Nil(t, report)
	})

	t.Run("wraps plain feed errors in FetchError", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(&mock.FeedService{
			FetchJobsFn: func(context.Context, string) ([]*jobqc.Job, error) {
				return nil, errors.New("bad xml")
			},
		})

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		var fe *jobqc.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, feedURL, fe.URL)
		assert.Nil(t, report)
	})
}

func TestAuditor_Run_DegradedEntries(t *testing.T) {
	t.Parallel()

	t.Run("sanitize failure keeps entry and continues", func(t *testing.T) {
		t.Parallel()

		bad := jobWithRef("BAD")
		bad.DescriptionHTML = "explode"
		a := newAuditor(feedOf(jobWithRef("A"), bad, jobWithRef("C")))
		a.Sanitizer = &mock.Sanitizer{
			SanitizeFn: func(markup string) (string, error) {
				if markup == "explode" {
					return "", errors.New("parser exploded")
				}
				return markup, nil
			},
			PlainTextFn: func(markup string) (string, error) { return markup, nil },
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "BAD", "C"}, refs(report))

		entry := report.Entries[1]
		assert.True(t, entry.Incomplete())
		assert.Equal(t, "sanitize: parser exploded", entry.Error)
		assert.Equal(t, jobqc.LanguageUnknown, entry.Language)
		assert.Equal(t, []string{}, entry.Issues)
		assert.Equal(t, "Job BAD", entry.Title)

		assert.False(t, report.Entries[0].Incomplete())
		assert.False(t, report.Entries[2].Incomplete())
		assert.Len(t, report.Incomplete(), 1)
	})

	t.Run("sanitizer panic is recovered", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf(jobWithRef("A")))
		a.Sanitizer = &mock.Sanitizer{
			SanitizeFn:  func(markup string) (string, error) { return markup, nil },
			PlainTextFn: func(string) (string, error) { panic("nil node") },
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, "sanitize: panic: nil node", report.Entries[0].Error)
	})

	t.Run("classifier panic falls back to unknown language", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf(jobWithRef("A")))
		a.Classifier = &mock.LanguageClassifier{
			ClassifyFn: func(string) jobqc.LanguageCode { panic("model missing") },
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		entry := report.Entries[0]
		assert.Equal(t, "classify: panic: model missing", entry.Error)
		assert.Equal(t, jobqc.LanguageUnknown, entry.Language)
		assert.Equal(t, []string{"Language mismatch: expected en, got unknown"}, entry.Issues)
	})

	t.Run("rule panic keeps language", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf(jobWithRef("A")))
		a.Rules = &mock.RuleEvaluator{
			EvaluateFn: func(*jobqc.CleanJob, jobqc.LanguageCode, jobqc.RuleSet) []string {
				panic("index out of range")
			},
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		entry := report.Entries[0]
		assert.Equal(t, "evaluate: panic: index out of range", entry.Error)
		assert.Equal(t, jobqc.LanguageCode("en"), entry.Language)
		assert.Equal(t, []string{}, entry.Issues)
	})

	t.Run("nil findings become empty issues", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf(jobWithRef("A")))
		a.Rules = &mock.RuleEvaluator{
			EvaluateFn: func(*jobqc.CleanJob, jobqc.LanguageCode, jobqc.RuleSet) []string { return nil },
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.NotNil(t, report.Entries[0].Issues)
	})

	t.Run("empty classifier result becomes unknown", func(t *testing.T) {
		t.Parallel()

		a := newAuditor(feedOf(jobWithRef("A")))
		a.Classifier = fixedClassifier("")

		report, err := a.Run(context.Background(), feedURL, jobqc.RuleSet(0), nil)

		require.NoError(t, err)
		assert.Equal(t, jobqc.LanguageUnknown, report.Entries[0].Language)
	})
}

func TestAuditor_Run_Pipeline(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes and flattens descriptions before rules", func(t *testing.T) {
		t.Parallel()

		job := &jobqc.Job{
			Title:           "Engineer",
			ReferenceNumber: "REF-1",
			City:            "Sydney",
			Country:         "Australia",
			DescriptionHTML: `<div class="x"><p style="a">Join the <b>chairman</b>'s team</p></div>`,
		}
		var classified string
		a := &audit.Auditor{
			Feed:      feedOf(job),
			Sanitizer: goquery.NewSanitizer(),
			Classifier: &mock.LanguageClassifier{
				ClassifyFn: func(text string) jobqc.LanguageCode {
					classified = text
					return "en"
				},
			},
			Rules: audit.NewEngine(nil),
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		require.Len(t, report.Jobs, 1)
		clean := report.Jobs[0]
		assert.Same(t, job, clean.Job)
		assert.Equal(t, `<p>Join the chairman&#39;s team</p>`, clean.DescriptionClean)
		assert.Equal(t, "Join the chairman's team", clean.DescriptionText)
		assert.Equal(t, "Join the chairman's team", classified)
		assert.Equal(t, []string{
			"Description too short (<500 characters)",
			"Non-inclusive language: 'chairman' found",
			"Missing sentence punctuation (no '.', '!' or '?')",
		}, report.Entries[0].Issues)
	})
}

func TestAuditor_Run_Concurrency(t *testing.T) {
	t.Parallel()

	t.Run("preserves feed order", func(t *testing.T) {
		t.Parallel()

		var jobs []*jobqc.Job
		var want []string
		for i := 0; i < 20; i++ {
			ref := string(rune('a' + i))
			job := jobWithRef(ref)
			job.DescriptionHTML = longText(600 + i)
			jobs = append(jobs, job)
			want = append(want, ref)
		}
		a := newAuditor(feedOf(jobs...))
		a.Concurrency = 4
		a.Classifier = &mock.LanguageClassifier{
			ClassifyFn: func(text string) jobqc.LanguageCode {
				time.Sleep(time.Duration(7-len(text)%7) * time.Millisecond)
				return "en"
			},
		}

		report, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), nil)

		require.NoError(t, err)
		assert.Equal(t, want, refs(report))
		for i, clean := range report.Jobs {
			assert.Equal(t, want[i], clean.ReferenceNumber)
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var jobs []*jobqc.Job
		for i := 0; i < 10; i++ {
			jobs = append(jobs, jobWithRef("x"))
		}
		a := newAuditor(feedOf(jobs...))
		a.Concurrency = 2
		a.Classifier = &mock.LanguageClassifier{
			ClassifyFn: func(string) jobqc.LanguageCode {
				cancel()
				return "en"
			},
		}

		report, err := a.Run(ctx, feedURL, jobqc.AllRules(), nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, report)
	})
}

func TestAuditor_Run_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("does not fetch when context is already cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetched := false
		a := newAuditor(&mock.FeedService{
			FetchJobsFn: func(context.Context, string) ([]*jobqc.Job, error) {
				fetched = true
				return nil, nil
			},
		})

		report, err := a.Run(ctx, feedURL, jobqc.AllRules(), nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, report)
		assert.False(t, fetched)
	})

	t.Run("stops between jobs", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := 0
		a := newAuditor(feedOf(jobWithRef("A"), jobWithRef("B"), jobWithRef("C")))
		a.Classifier = &mock.LanguageClassifier{
			ClassifyFn: func(string) jobqc.LanguageCode {
				calls++
				cancel()
				return "en"
			},
		}

		report, err := a.Run(ctx, feedURL, jobqc.AllRules(), nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, report)
		assert.Equal(t, 1, calls)
	})
}

func TestAuditor_Run_Progress(t *testing.T) {
	t.Parallel()

	t.Run("reports start, each job and finish", func(t *testing.T) {
		t.Parallel()

		bad := jobWithRef("B")
		bad.DescriptionHTML = "explode"
		a := newAuditor(feedOf(jobWithRef("A"), bad))
		a.Sanitizer = &mock.Sanitizer{
			SanitizeFn: func(markup string) (string, error) {
				if markup == "explode" {
					return "", errors.New("boom")
				}
				return markup, nil
			},
			PlainTextFn: func(markup string) (string, error) { return markup, nil },
		}

		var events []audit.ProgressEvent
		_, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), func(e audit.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, audit.ProgressEvent{Type: audit.ProgressStarted, Total: 2}, events[0])
		assert.Equal(t, audit.ProgressEvent{Type: audit.ProgressCompleted, Completed: 1, Total: 2, ReferenceNumber: "A"}, events[1])
		assert.Equal(t, audit.ProgressFailed, events[2].Type)
		assert.Equal(t, 2, events[2].Completed)
		assert.Equal(t, "B", events[2].ReferenceNumber)
		require.Error(t, events[2].Error)
		assert.True(t, strings.Contains(events[2].Error.Error(), "boom"))
		assert.Equal(t, audit.ProgressEvent{Type: audit.ProgressFinished, Completed: 2, Total: 2}, events[3])
	})

	t.Run("serializes callbacks under concurrency", func(t *testing.T) {
		t.Parallel()

		var jobs []*jobqc.Job
		for i := 0; i < 16; i++ {
			jobs = append(jobs, jobWithRef("x"))
		}
		a := newAuditor(feedOf(jobs...))
		a.Concurrency = 8

		var mu sync.Mutex
		inCallback := false
		overlapped := false
		completed := 0
		_, err := a.Run(context.Background(), feedURL, jobqc.AllRules(), func(e audit.ProgressEvent) {
			mu.Lock()
			if inCallback {
				overlapped = true
			}
			inCallback = true
			mu.Unlock()

			if e.Type == audit.ProgressCompleted {
				completed++
			}

			mu.Lock()
			inCallback = false
			mu.Unlock()
		})

		require.NoError(t, err)
		assert.False(t, overlapped)
		assert.Equal(t, 16, completed)
	})
}
