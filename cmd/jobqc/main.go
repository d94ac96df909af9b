package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/jobqc"
	"github.com/fwojciec/jobqc/audit"
	"github.com/fwojciec/jobqc/fs"
	"github.com/fwojciec/jobqc/goquery"
	jobhttp "github.com/fwojciec/jobqc/http"
	jobslog "github.com/fwojciec/jobqc/slog"
	"github.com/fwojciec/jobqc/whatlanggo"
	"github.com/fwojciec/jobqc/yaml"
)

// feedURLEnv names the environment variable consulted when run has no URL.
const feedURLEnv = "JOBQC_FEED_URL"

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("jobqc"),
		kong.Description("Audit job advert feeds for content quality issues"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'jobqc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var artifacts jobqc.ArtifactStore = fs.NewArtifactStore(cli.Dir)
	if logger != nil {
		artifacts = jobslog.NewLoggingArtifactStore(artifacts, logger)
	}
	deps.Artifacts = artifacts

	if strings.HasPrefix(kongCtx.Command(), "run") {
		if cli.Run.URL == "" && m.Getenv != nil {
			cli.Run.URL = m.Getenv(feedURLEnv)
		}

		tables := jobqc.DefaultRuleTables()
		if cli.Run.RulesFile != "" {
			tables, err = yaml.ReadRuleTablesFile(cli.Run.RulesFile)
			if err != nil {
				fmt.Fprintf(stderr, "error: %s\n", jobqc.ErrorMessage(err))
				return err
			}
		}

		var feed jobqc.FeedService = jobhttp.NewFeedService(jobhttp.WithTimeout(cli.Run.Timeout))
		var classifier jobqc.LanguageClassifier = whatlanggo.NewClassifier()
		if logger != nil {
			feed = jobslog.NewLoggingFeedService(feed, logger)
			classifier = jobslog.NewLoggingClassifier(classifier, logger)
		}

		deps.Auditor = &audit.Auditor{
			Feed:       feed,
			Sanitizer:  goquery.NewSanitizer(),
			Classifier: classifier,
			Rules:      audit.NewEngine(tables),
		}
	}

	return kongCtx.Run(deps)
}
