package jobqc

import "context"

// Job represents a job advert as read from the feed.
// Fields are copied verbatim (trimmed) and never modified afterwards.
type Job struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	ReferenceNumber string `json:"reference_number"`
	URL             string `json:"url"`
	City            string `json:"city"`
	Country         string `json:"country"`
	DescriptionHTML string `json:"description_html"` // entity-decoded markup
}

// CleanJob is a Job together with its sanitized description.
type CleanJob struct {
	*Job

	// DescriptionClean is DescriptionHTML reduced to the allowed tag set.
	DescriptionClean string

	// DescriptionText is the plain text of DescriptionClean.
	DescriptionText string
}

// FeedService retrieves job adverts from a remote feed.
type FeedService interface {
	// FetchJobs downloads and decodes the feed at url.
	// Jobs are returned in feed order. Either all jobs are returned or
	// the call fails with a *FetchError.
	FetchJobs(ctx context.Context, url string) ([]*Job, error)
}

// Sanitizer reduces HTML fragments to a restricted structural subset.
type Sanitizer interface {
	// Sanitize keeps only h1-h6, p, ul, ol and li elements, unwrapping any
	// other element in place and dropping all attributes.
	// Sanitize(Sanitize(x)) == Sanitize(x).
	Sanitize(markup string) (string, error)

	// PlainText returns the concatenated text nodes of markup.
	PlainText(markup string) (string, error)
}
