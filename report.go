package jobqc

import (
	"context"
	"sort"
	"time"
)

// Report is the outcome of auditing a feed.
// Entries match the fetched jobs one-to-one and in feed order.
type Report struct {
	ID        string
	SourceURL string
	Rules     RuleSet
	CreatedAt time.Time

	// Jobs holds the sanitized jobs the entries were computed from.
	Jobs    []*CleanJob
	Entries []*ReportEntry
}

// Incomplete returns the entries that could not be fully processed.
func (r *Report) Incomplete() []*ReportEntry {
	var a []*ReportEntry
	for _, e := range r.Entries {
		if e.Incomplete() {
			a = append(a, e)
		}
	}
	return a
}

// ReportEntry holds the findings for one job.
type ReportEntry struct {
	ReferenceNumber string       `json:"reference_number"`
	Title           string       `json:"title"`
	Country         string       `json:"country"`
	Language        LanguageCode `json:"determined_language"`
	Issues          []string     `json:"issues"`

	// Error describes why the entry is incomplete, if it is.
	Error string `json:"error,omitempty"`
}

// Incomplete reports whether processing of the job failed.
func (e *ReportEntry) Incomplete() bool {
	return e.Error != ""
}

// LanguageDetail records the language determined for a job.
type LanguageDetail struct {
	ReferenceNumber string       `json:"reference_number"`
	Language        LanguageCode `json:"determined_language"`
}

// Count is a number of jobs sharing a key.
type Count struct {
	Key   string
	Count int
}

// CountByCountry counts jobs per country.
// Jobs without a country are counted under "Unknown".
func CountByCountry(jobs []*Job) []Count {
	keys := make([]string, 0, len(jobs))
	for _, job := range jobs {
		country := job.Country
		if country == "" {
			country = "Unknown"
		}
		keys = append(keys, country)
	}
	return countKeys(keys)
}

// CountByLanguage counts jobs per determined language.
func CountByLanguage(details []*LanguageDetail) []Count {
	keys := make([]string, 0, len(details))
	for _, d := range details {
		lang := d.Language
		if lang == "" {
			lang = LanguageUnknown
		}
		keys = append(keys, string(lang))
	}
	return countKeys(keys)
}

// countKeys tallies keys, ordered by count descending then key ascending.
func countKeys(keys []string) []Count {
	m := make(map[string]int)
	for _, k := range keys {
		m[k]++
	}
	counts := make([]Count, 0, len(m))
	for k, n := range m {
		counts = append(counts, Count{Key: k, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Key < counts[j].Key
	})
	return counts
}

// ArtifactStore persists finished reports for presentation layers.
type ArtifactStore interface {
	// SaveReport writes the report's artifacts, replacing earlier ones.
	SaveReport(ctx context.Context, report *Report) error

	// FindJobs returns the raw jobs of the last saved report.
	// Returns an empty slice if no report has been saved.
	FindJobs(ctx context.Context) ([]*Job, error)

	// FindLanguageDetails returns the languages of the last saved report.
	// Returns an empty slice if no report has been saved.
	FindLanguageDetails(ctx context.Context) ([]*LanguageDetail, error)

	// FindEntries returns the entries of the last saved report.
	// Returns an empty slice if no report has been saved.
	FindEntries(ctx context.Context) ([]*ReportEntry, error)

	// Clear removes all saved artifacts. Missing artifacts are not an error.
	Clear(ctx context.Context) error
}
