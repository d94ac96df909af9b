package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/jobqc"
	"github.com/fwojciec/jobqc/audit"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Auditor   *audit.Auditor
	Artifacts jobqc.ArtifactStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Dir     string `short:"d" default:"." env:"JOBQC_DIR" help:"Directory for audit artifacts"`
	Verbose bool   `short:"v" help:"Log service calls to stderr"`

	Run     RunCmd     `cmd:"" help:"Audit a job feed and save the artifacts"`
	Summary SummaryCmd `cmd:"" help:"Count saved jobs by country or language"`
	Clean   CleanCmd   `cmd:"" help:"Delete saved audit artifacts"`
	Rules   RulesCmd   `cmd:"" help:"List quality rules in evaluation order"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL         string        `arg:"" optional:"" help:"Job feed URL (default: $JOBQC_FEED_URL)"`
	Rule        []string      `short:"r" name:"rule" sep:"none" help:"Rule to apply by name (repeatable, default: all)"`
	Strict      bool          `help:"Fail on unknown rule names"`
	RulesFile   string        `name:"rules-file" help:"YAML file overriding rule term lists and thresholds"`
	Concurrency int           `short:"c" default:"4" help:"Jobs processed at once"`
	Timeout     time.Duration `short:"t" default:"30s" help:"Feed fetch timeout"`
	JSON        bool          `name:"json" help:"Print findings as JSON"`
}

// SummaryCmd is the "summary" subcommand.
type SummaryCmd struct {
	By string `default:"country" enum:"country,language" help:"Grouping key (country, language)"`
}

// CleanCmd is the "clean" subcommand.
type CleanCmd struct{}

// RulesCmd is the "rules" subcommand.
type RulesCmd struct{}
