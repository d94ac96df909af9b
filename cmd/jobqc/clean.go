package main

import (
	"fmt"

	"github.com/fwojciec/jobqc"
)

// Run executes the clean command.
func (c *CleanCmd) Run(deps *Dependencies) error {
	if err := deps.Artifacts.Clear(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", jobqc.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Removed audit artifacts")
	return nil
}
