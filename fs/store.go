// Package fs provides file-based storage for audit artifacts.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/jobqc"
)

// Artifact file names.
const (
	JobsFile     = "job_adverts.json"
	CleanedFile  = "job_adverts_cleaned.json"
	DetailsFile  = "job_adverts_details.json"
	IssuesFile   = "job_adverts_issues.json"
	tempSuffix   = ".tmp"
	jsonIndent   = "    "
	artifactPerm = 0o644
)

// ArtifactFiles lists every artifact written by SaveReport.
var ArtifactFiles = []string{JobsFile, CleanedFile, DetailsFile, IssuesFile}

// Ensure ArtifactStore implements jobqc.ArtifactStore at compile time.
var _ jobqc.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements jobqc.ArtifactStore as JSON files in a directory.
// Each file is written to a temporary name and renamed into place, so
// readers never observe a partially written artifact.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a new ArtifactStore rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the directory artifacts are written to.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

func (s *ArtifactStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveReport writes the report's artifacts, replacing those of any earlier run.
func (s *ArtifactStore) SaveReport(ctx context.Context, report *jobqc.Report) error {
	if report == nil {
		return jobqc.Errorf(jobqc.EINVALID, "report required")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	raw := make([]*jobqc.Job, 0, len(report.Jobs))
	cleaned := make([]*jobqc.Job, 0, len(report.Jobs))
	for _, j := range report.Jobs {
		raw = append(raw, j.Job)
		c := *j.Job
		c.DescriptionHTML = j.DescriptionClean
		cleaned = append(cleaned, &c)
	}

	details := make([]*jobqc.LanguageDetail, 0, len(report.Entries))
	for _, e := range report.Entries {
		details = append(details, &jobqc.LanguageDetail{
			ReferenceNumber: e.ReferenceNumber,
			Language:        e.Language,
		})
	}

	entries := report.Entries
	if entries == nil {
		entries = []*jobqc.ReportEntry{}
	}

	artifacts := []struct {
		name  string
		value any
	}{
		{JobsFile, raw},
		{CleanedFile, cleaned},
		{DetailsFile, details},
		{IssuesFile, entries},
	}
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeJSON(a.name, a.value); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON encodes v and moves it into place under name.
func (s *ArtifactStore) writeJSON(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	tmp := s.path(name + tempSuffix)
	if err := os.WriteFile(tmp, buf.Bytes(), artifactPerm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// readJSON decodes the artifact name into v. A missing artifact leaves v
// untouched.
func (s *ArtifactStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return jobqc.Errorf(jobqc.EINVALID, "decoding %s: %v", name, err)
	}
	return nil
}

// FindJobs returns the raw jobs of the last saved report.
func (s *ArtifactStore) FindJobs(ctx context.Context) ([]*jobqc.Job, error) {
	jobs := []*jobqc.Job{}
	if err := s.readJSON(JobsFile, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*jobqc.Job{}
	}
	return jobs, nil
}

// FindLanguageDetails returns the language details of the last saved report.
func (s *ArtifactStore) FindLanguageDetails(ctx context.Context) ([]*jobqc.LanguageDetail, error) {
	details := []*jobqc.LanguageDetail{}
	if err := s.readJSON(DetailsFile, &details); err != nil {
		return nil, err
	}
	if details == nil {
		details = []*jobqc.LanguageDetail{}
	}
	return details, nil
}

// FindEntries returns the report entries of the last saved report.
func (s *ArtifactStore) FindEntries(ctx context.Context) ([]*jobqc.ReportEntry, error) {
	entries := []*jobqc.ReportEntry{}
	if err := s.readJSON(IssuesFile, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*jobqc.ReportEntry{}
	}
	return entries, nil
}

// Clear removes every artifact, including leftovers from interrupted writes.
func (s *ArtifactStore) Clear(ctx context.Context) error {
	for _, name := range ArtifactFiles {
		for _, p := range []string{s.path(name), s.path(name + tempSuffix)} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing %s: %w", filepath.Base(p), err)
			}
		}
	}
	return nil
}
