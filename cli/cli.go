package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/perfgo/runnerstat/cli/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "runnerstat"

type App struct {
	logger zerolog.Logger
	cli    *cli.App

	// out receives command output that is not logging
	out io.Writer
	// now returns the report generation time
	now func() time.Time
	// newLister builds the API client for a run
	newLister func(logger zerolog.Logger, cfg Config, runID string) (lister, error)
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger:    logger,
		out:       os.Stdout,
		now:       time.Now,
		newLister: newAPILister,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Report runner usage, environments and estimated cost for an organization",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			}, configFlags()...),
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	// Default action when no command is specified
	app.cli.Action = app.report
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "report",
		Usage:  "Fetch runners and environments and write the Markdown report (default)",
		Action: app.report,
		Description: `Fetch runners and environments and write the Markdown report.

The report contains a summary, a cost analysis, a table of runners, the
environments of every runner, each runner's system details and a list of
recommendations.

Examples:
  runnerstat --org <id> report
  runnerstat --org <id> -o report.md
  runnerstat --org <id> -o s3://reports/runners.md --s3-endpoint minio:9000`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "runners",
		Usage:  "Print a short per-runner listing instead of writing the report",
		Action: app.runners,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}

func newAPILister(logger zerolog.Logger, cfg Config, runID string) (lister, error) {
	client, err := api.New(logger, api.Config{
		BaseURL:   cfg.APIURL,
		Token:     cfg.Token,
		RequestID: runID,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
