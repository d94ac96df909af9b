package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/jobqc"
)

// Run executes the summary command.
func (c *SummaryCmd) Run(deps *Dependencies) error {
	var counts []jobqc.Count
	switch c.By {
	case "language":
		details, err := deps.Artifacts.FindLanguageDetails(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", jobqc.ErrorMessage(err))
			return err
		}
		counts = jobqc.CountByLanguage(details)
	default:
		jobs, err := deps.Artifacts.FindJobs(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", jobqc.ErrorMessage(err))
			return err
		}
		counts = jobqc.CountByCountry(jobs)
	}

	if len(counts) == 0 {
		fmt.Fprintln(deps.Stdout, "No audit artifacts found. Use 'jobqc run' to create them.")
		return nil
	}

	rows := make([][]string, 0, len(counts))
	for _, n := range counts {
		rows = append(rows, []string{n.Key, strconv.Itoa(n.Count)})
	}
	return writeTable(deps.Stdout, []string{strings.ToUpper(c.By), "JOBS"}, rows)
}
