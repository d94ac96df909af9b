package mock

import (
	"context"

	"github.com/fwojciec/jobqc"
)

var _ jobqc.FeedService = (*FeedService)(nil)

// FeedService is a mock implementation of jobqc.FeedService.
type FeedService struct {
	FetchJobsFn func(ctx context.Context, url string) ([]*jobqc.Job, error)
}

func (s *FeedService) FetchJobs(ctx context.Context, url string) ([]*jobqc.Job, error) {
	return s.FetchJobsFn(ctx, url)
}
