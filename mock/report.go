package mock

import (
	"context"

	"github.com/fwojciec/jobqc"
)

var _ jobqc.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of jobqc.ArtifactStore.
type ArtifactStore struct {
	SaveReportFn          func(ctx context.Context, report *jobqc.Report) error
	FindJobsFn            func(ctx context.Context) ([]*jobqc.Job, error)
	FindLanguageDetailsFn func(ctx context.Context) ([]*jobqc.LanguageDetail, error)
	FindEntriesFn         func(ctx context.Context) ([]*jobqc.ReportEntry, error)
	ClearFn               func(ctx context.Context) error
}

func (s *ArtifactStore) SaveReport(ctx context.Context, report *jobqc.Report) error {
	return s.SaveReportFn(ctx, report)
}

func (s *ArtifactStore) FindJobs(ctx context.Context) ([]*jobqc.Job, error) {
	return s.FindJobsFn(ctx)
}

func (s *ArtifactStore) FindLanguageDetails(ctx context.Context) ([]*jobqc.LanguageDetail, error) {
	return s.FindLanguageDetailsFn(ctx)
}

func (s *ArtifactStore) FindEntries(ctx context.Context) ([]*jobqc.ReportEntry, error) {
	return s.FindEntriesFn(ctx)
}

func (s *ArtifactStore) Clear(ctx context.Context) error {
	return s.ClearFn(ctx)
}
