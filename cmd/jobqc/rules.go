package main

import (
	"strconv"

	"github.com/fwojciec/jobqc"
)

// Run executes the rules command.
func (c *RulesCmd) Run(deps *Dependencies) error {
	ids := jobqc.Rules()
	rows := make([][]string, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, []string{strconv.Itoa(i + 1), id.String()})
	}
	return writeTable(deps.Stdout, []string{"#", "RULE"}, rows)
}
