package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/jobqc"
)

// Ensure LoggingArtifactStore implements jobqc.ArtifactStore.
var _ jobqc.ArtifactStore = (*LoggingArtifactStore)(nil)

// LoggingArtifactStore wraps an ArtifactStore with logging.
type LoggingArtifactStore struct {
	next   jobqc.ArtifactStore
	logger *slog.Logger
}

// NewLoggingArtifactStore creates a new LoggingArtifactStore.
func NewLoggingArtifactStore(next jobqc.ArtifactStore, logger *slog.Logger) *LoggingArtifactStore {
	return &LoggingArtifactStore{next: next, logger: logger}
}

func (s *LoggingArtifactStore) SaveReport(ctx context.Context, report *jobqc.Report) (err error) {
	defer func(begin time.Time) {
		var id string
		var count int
		if report != nil {
			id, count = report.ID, len(report.Entries)
		}
		s.logger.Info("save report",
			"id", id,
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveReport(ctx, report)
}

func (s *LoggingArtifactStore) FindJobs(ctx context.Context) (jobs []*jobqc.Job, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find jobs",
			"count", len(jobs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindJobs(ctx)
}

func (s *LoggingArtifactStore) FindLanguageDetails(ctx context.Context) (details []*jobqc.LanguageDetail, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find language details",
			"count", len(details),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLanguageDetails(ctx)
}

func (s *LoggingArtifactStore) FindEntries(ctx context.Context) (entries []*jobqc.ReportEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find entries",
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindEntries(ctx)
}

func (s *LoggingArtifactStore) Clear(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("clear artifacts",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Clear(ctx)
}
