package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/jobqc"
	"github.com/fwojciec/jobqc/audit"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	if c.URL == "" {
		fmt.Fprintf(deps.Stderr, "error: feed URL required (argument or %s)\n", feedURLEnv)
		return jobqc.Errorf(jobqc.EINVALID, "feed URL required")
	}

	rules := jobqc.AllRules()
	if len(c.Rule) > 0 {
		var unknown []string
		rules, unknown = jobqc.ParseRuleSet(c.Rule)
		if len(unknown) > 0 {
			if c.Strict {
				fmt.Fprintf(deps.Stderr, "error: unknown rules: %s. Use 'jobqc rules' to list them.\n", quoteAll(unknown))
				return jobqc.Errorf(jobqc.EINVALID, "unknown rules: %s", quoteAll(unknown))
			}
			fmt.Fprintf(deps.Stderr, "warning: ignoring unknown rules: %s\n", quoteAll(unknown))
		}
	}

	if err := deps.Artifacts.Clear(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", jobqc.ErrorMessage(err))
		return err
	}

	if c.Concurrency > 0 {
		deps.Auditor.Concurrency = c.Concurrency
	}

	progress := func(event audit.ProgressEvent) {
		if event.Type == audit.ProgressFailed {
			fmt.Fprintf(deps.Stderr, "  incomplete %s: %v\n", event.ReferenceNumber, event.Error)
		}
	}

	report, err := deps.Auditor.Run(deps.Ctx, c.URL, rules, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", jobqc.ErrorMessage(err))
		return err
	}

	if err := deps.Artifacts.SaveReport(deps.Ctx, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error saving artifacts: %s\n", jobqc.ErrorMessage(err))
		return err
	}

	flagged := make([]*jobqc.ReportEntry, 0, len(report.Entries))
	for _, e := range report.Entries {
		if len(e.Issues) > 0 || e.Incomplete() {
			flagged = append(flagged, e)
		}
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return enc.Encode(flagged)
	}

	for _, e := range flagged {
		fmt.Fprintf(deps.Stdout, "%s  %s  (%s, %s)\n", orDash(e.ReferenceNumber), orDash(e.Title), orDash(e.Country), e.Language)
		for _, issue := range e.Issues {
			fmt.Fprintf(deps.Stdout, "  - %s\n", issue)
		}
		if e.Incomplete() {
			fmt.Fprintf(deps.Stdout, "  ! %s\n", e.Error)
		}
	}
	fmt.Fprintf(deps.Stdout, "Audited %d jobs: %d flagged, %d incomplete\n",
		len(report.Entries), len(flagged), len(report.Incomplete()))

	return nil
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
