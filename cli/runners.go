package cli

// This file contains the runners command for printing a short listing of
// runner metrics.

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/perfgo/runnerstat/report"
	"github.com/urfave/cli/v2"
)

func (a *App) runners(ctx *cli.Context) error {
	cfg := configFromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()

	snap, err := a.collect(ctx.Context, logger, cfg, runID)
	if err != nil {
		return err
	}

	if len(snap.metrics) == 0 {
		fmt.Fprintln(a.out, "No runners found")
		return nil
	}

	summary := report.Summarize(snap.metrics)
	fmt.Fprintf(a.out, "\n=== Runners (%d total, %d remote, %d local) ===\n\n",
		summary.TotalRunners, summary.RemoteRunners, summary.LocalRunners)

	for _, m := range snap.metrics {
		// Show short ID (first 8 chars)
		shortID := m.RunnerID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Fprintf(a.out, "%s  %s  [%s]  id=%s\n", m.Name, m.Kind.Short(), m.Phase, shortID)
		fmt.Fprintf(a.out, "   Region: %s\n", m.Region)
		fmt.Fprintf(a.out, "   Uptime: %dh\n", m.UptimeHours)
		fmt.Fprintf(a.out, "   Environments: %d\n", m.EnvironmentCount())
		fmt.Fprintf(a.out, "   Estimated cost: %.2f %s\n", m.EstimatedCost, snap.estimator.Config().Currency)
		fmt.Fprintln(a.out)
	}

	fmt.Fprintf(a.out, "Total estimated cost: %.2f %s\n", summary.TotalCost, snap.estimator.Config().Currency)
	fmt.Fprintln(a.out, "\nWrite the full report: runnerstat report")

	return nil
}
