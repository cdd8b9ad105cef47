package cli

// This file contains the report command: fetch, derive, render and write.

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/perfgo/runnerstat/cost"
	"github.com/perfgo/runnerstat/metrics"
	"github.com/perfgo/runnerstat/model"
	"github.com/perfgo/runnerstat/report"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// lister is the subset of the API the tool needs.
type lister interface {
	ListRunners(ctx context.Context, organizationID string, pageSize int) ([]model.Runner, error)
	ListEnvironments(ctx context.Context, organizationID string, pageSize int) ([]model.Environment, error)
}

// snapshot is the derived state of one run.
type snapshot struct {
	metrics   []model.Metrics
	now       time.Time
	estimator *cost.Estimator
}

func (a *App) report(ctx *cli.Context) error {
	cfg := configFromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateOutput(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()

	writer, err := newSink(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to set up report destination")
		return err
	}

	snap, err := a.collect(ctx.Context, logger, cfg, runID)
	if err != nil {
		return err
	}

	opts := report.DefaultOptions(snap.now)
	opts.PerEnvironmentRate = snap.estimator.Config().PerEnvironmentRate
	opts.Currency = snap.estimator.Config().Currency
	document := report.Build(snap.metrics, opts)

	location, err := writer.Write(ctx.Context, []byte(document))
	if err != nil {
		logger.Error().Err(err).Str("output", cfg.Output).Msg("Failed to write report")
		return err
	}

	summary := report.Summarize(snap.metrics)
	logger.Info().
		Str("location", location).
		Str("size", humanize.Bytes(uint64(len(document)))).
		Int("runners", summary.TotalRunners).
		Int("environments", summary.TotalEnvironments).
		Str("total_cost", fmt.Sprintf("%.2f %s", summary.TotalCost, snap.estimator.Config().Currency)).
		Msg("Report written")

	return nil
}

// collect fetches runners and environments and derives their metrics.
func (a *App) collect(ctx context.Context, logger zerolog.Logger, cfg Config, runID string) (*snapshot, error) {
	estimator, err := a.loadEstimator(cfg)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.RatesFile).Msg("Failed to load rate table")
		return nil, err
	}

	client, err := a.newLister(logger, cfg, runID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return nil, err
	}

	runners, environments, err := fetch(ctx, client, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch data")
		return nil, err
	}
	logger.Info().
		Int("runners", len(runners)).
		Int("environments", len(environments)).
		Msg("Fetched runners and environments")

	now := a.now()
	derived, err := metrics.NewDeriver(estimator, now).DeriveAll(ctx, runners, environments)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to derive metrics")
		return nil, err
	}

	for _, m := range derived {
		logger.Debug().
			Str("runner", m.RunnerID).
			Str("region", m.Region).
			Int("uptime_hours", m.UptimeHours).
			Int("environments", m.EnvironmentCount()).
			Float64("estimated_cost", m.EstimatedCost).
			Msg("Derived runner metrics")
	}

	return &snapshot{
		metrics:   derived,
		now:       now,
		estimator: estimator,
	}, nil
}

func (a *App) loadEstimator(cfg Config) (*cost.Estimator, error) {
	if cfg.RatesFile == "" {
		return cost.NewEstimator(nil), nil
	}
	rates, err := cost.LoadConfig(cfg.RatesFile)
	if err != nil {
		return nil, err
	}
	return cost.NewEstimator(rates), nil
}

// fetch lists runners and environments concurrently. Either failure aborts
// the run.
func fetch(ctx context.Context, client lister, cfg Config) ([]model.Runner, []model.Environment, error) {
	var runners []model.Runner
	var environments []model.Environment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		runners, err = client.ListRunners(gctx, cfg.OrganizationID, cfg.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list runners: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		environments, err = client.ListEnvironments(gctx, cfg.OrganizationID, cfg.PageSize)
		if err != nil {
			return fmt.Errorf("failed to list environments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return runners, environments, nil
}
