// Package http provides an HTTP implementation of jobqc.FeedService that
// downloads and decodes XML job feeds.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/jobqc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Ensure FeedService implements jobqc.FeedService at compile time.
var _ jobqc.FeedService = (*FeedService)(nil)

// FeedService retrieves job feeds with a single HTTP GET per call.
type FeedService struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a FeedService.
type Option func(*FeedService)

// WithClient sets the HTTP client used for requests.
// Defaults to http.DefaultClient.
func WithClient(c *http.Client) Option {
	return func(s *FeedService) {
		s.client = c
	}
}

// WithTimeout bounds each request. Zero leaves the client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *FeedService) {
		s.timeout = d
	}
}

// NewFeedService creates a new FeedService.
func NewFeedService(opts ...Option) *FeedService {
	s := &FeedService{client: http.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	return s
}

// FetchJobs downloads the feed at url and decodes every <job> element.
// Any transport, status or XML error is returned as a *jobqc.FetchError.
func (s *FeedService) FetchJobs(ctx context.Context, url string) ([]*jobqc.Job, error) {
	jobs, err := s.fetchJobs(ctx, url)
	if err != nil {
		return nil, &jobqc.FetchError{URL: url, Err: err}
	}
	return jobs, nil
}

func (s *FeedService) fetchJobs(ctx context.Context, url string) ([]*jobqc.Job, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("parsing feed XML: %w", err)
	}

	if err := checkWellFormed(doc); err != nil {
		return nil, err
	}
	root := doc.Root()

	return ParseJobs(root), nil
}

// checkWellFormed rejects documents without exactly one root element or
// with text outside it.
func checkWellFormed(doc *etree.Document) error {
	switch n := len(doc.ChildElements()); {
	case n == 0:
		return errors.New("empty feed XML")
	case n > 1:
		return fmt.Errorf("feed XML has %d root elements", n)
	}
	for _, tok := range doc.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return errors.New("feed XML has text outside the root element")
		}
	}
	return nil
}

// ParseJobs decodes every <job> element below root, in document order.
// Missing child elements become empty strings.
func ParseJobs(root *etree.Element) []*jobqc.Job {
	elems := findJobs(root, nil)
	jobs := make([]*jobqc.Job, 0, len(elems))
	for _, el := range elems {
		jobs = append(jobs, &jobqc.Job{
			Title:           childText(el, "title"),
			Date:            childText(el, "date"),
			ReferenceNumber: childText(el, "referencenumber"),
			URL:             childText(el, "url"),
			City:            childText(el, "city"),
			Country:         childText(el, "country"),
			DescriptionHTML: html.UnescapeString(childText(el, "description")),
		})
	}
	return jobs
}

// findJobs appends the <job> descendants of el to dst in pre-order.
func findJobs(el *etree.Element, dst []*etree.Element) []*etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == "job" {
			dst = append(dst, child)
		}
		dst = findJobs(child, dst)
	}
	return dst
}

// childText returns the trimmed text of the first child named tag.
func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
