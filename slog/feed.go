// Package slog decorates jobqc services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/jobqc"
)

// Ensure LoggingFeedService implements jobqc.FeedService.
var _ jobqc.FeedService = (*LoggingFeedService)(nil)

// LoggingFeedService wraps a FeedService with logging.
type LoggingFeedService struct {
	next   jobqc.FeedService
	logger *slog.Logger
}

// NewLoggingFeedService creates a new LoggingFeedService.
func NewLoggingFeedService(next jobqc.FeedService, logger *slog.Logger) *LoggingFeedService {
	return &LoggingFeedService{next: next, logger: logger}
}

// FetchJobs delegates to the wrapped service and logs the operation.
func (s *LoggingFeedService) FetchJobs(ctx context.Context, url string) (jobs []*jobqc.Job, err error) {
	defer func(begin time.Time) {
		s.logger.Info("feed fetch",
			"url", url,
			"count", len(jobs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchJobs(ctx, url)
}
