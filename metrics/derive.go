package metrics

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/perfgo/runnerstat/cost"
	"github.com/perfgo/runnerstat/model"
	"golang.org/x/sync/errgroup"
)

// Deriver turns runners into Metrics records as of a fixed point in time.
type Deriver struct {
	estimator *cost.Estimator
	now       time.Time
}

// NewDeriver creates a Deriver. now is the report generation time used for
// every runner. If estimator is nil, the default rate table is used.
func NewDeriver(estimator *cost.Estimator, now time.Time) *Deriver {
	if estimator == nil {
		estimator = cost.NewEstimator(nil)
	}
	return &Deriver{
		estimator: estimator,
		now:       now,
	}
}

// Derive builds the Metrics record of one runner. Only environments whose
// RunnerID matches the runner are attached.
func (d *Deriver) Derive(runner model.Runner, environments []model.Environment) model.Metrics {
	return d.derive(runner, FilterEnvironments(runner.ID, environments))
}

// DeriveAll derives metrics for all runners concurrently. The result has
// the same order as runners. Each environment is attached to at most one
// record; environments that match no runner are dropped.
func (d *Deriver) DeriveAll(ctx context.Context, runners []model.Runner, environments []model.Environment) ([]model.Metrics, error) {
	byRunner := GroupEnvironments(environments)
	out := make([]model.Metrics, len(runners))
	claimed := make(map[string]bool, len(runners))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, runner := range runners {
		// runners sharing an id would otherwise receive the same environments twice
		attached := byRunner[runner.ID]
		if claimed[runner.ID] {
			attached = nil
		}
		claimed[runner.ID] = true

		i, runner := i, runner // per-iteration copies (go.mod targets go 1.21)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = d.derive(runner, attached)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Deriver) derive(runner model.Runner, environments []model.Environment) model.Metrics {
	if environments == nil {
		environments = []model.Environment{}
	}
	m := model.Metrics{
		RunnerID:      runner.ID,
		Name:          runner.Name,
		Kind:          runner.Kind,
		Phase:         runner.Phase,
		Region:        ResolveRegion(runner),
		CreatedAt:     runner.CreatedAt,
		UptimeHours:   UptimeHours(runner.CreatedAt, d.now),
		Environments:  environments,
		SystemDetails: ParseSystemDetails(runner.SystemDetails),
	}
	m.EstimatedCost = d.estimator.Estimate(m)
	return m
}

// UptimeHours returns the whole hours elapsed between createdAt and now.
// A zero createdAt or a createdAt in the future yields 0.
func UptimeHours(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / time.Hour)
}

// ResolveRegion picks the region a runner is reported in. The region from
// the runner status wins over the configured region, since the runner may
// have landed somewhere other than requested. Without either the region is
// model.UnknownRegion.
func ResolveRegion(runner model.Runner) string {
	for _, region := range []string{runner.StatusRegion, runner.ConfiguredRegion} {
		if region != "" {
			return region
		}
	}
	return model.UnknownRegion
}

// ParseSystemDetails decodes the runner's system details. Anything that is
// not a JSON object is kept as {"raw": details}.
func ParseSystemDetails(details string) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(details), &parsed); err != nil || parsed == nil {
		return map[string]any{"raw": details}
	}
	return parsed
}

// FilterEnvironments returns the environments attached to runnerID.
// A runner without an id has no environments.
func FilterEnvironments(runnerID string, environments []model.Environment) []model.Environment {
	out := []model.Environment{}
	if runnerID == "" {
		return out
	}
	for _, env := range environments {
		if env.RunnerID == runnerID {
			out = append(out, env)
		}
	}
	return out
}

// GroupEnvironments indexes environments by runner id, keeping API order
// within each group.
func GroupEnvironments(environments []model.Environment) map[string][]model.Environment {
	byRunner := make(map[string][]model.Environment)
	for _, env := range environments {
		if env.RunnerID == "" {
			continue
		}
		byRunner[env.RunnerID] = append(byRunner[env.RunnerID], env)
	}
	return byRunner
}
