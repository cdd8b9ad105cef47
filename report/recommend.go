package report

import (
	"fmt"

	"github.com/perfgo/runnerstat/model"
)

// Thresholds tune the recommendation rules.
type Thresholds struct {
	// Runners up longer than this are flagged for review
	LongUptimeHours int
	// Runners without environments up longer than this are removal candidates
	IdleUptimeHours int
	// Runners estimated above this cost are flagged for investigation
	HighCost float64
}

// DefaultThresholds flags runners older than a week, idle runners older
// than a day and runners above 100 currency units.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LongUptimeHours: 168,
		IdleUptimeHours: 24,
		HighCost:        100,
	}
}

// rule is one recommendation. Rules are evaluated independently; a runner
// may match any number of them.
type rule struct {
	match   func(m model.Metrics, th Thresholds) bool
	message func(count int, th Thresholds, currency string) string
}

var rules = []rule{
	{
		match: func(m model.Metrics, _ Thresholds) bool { return m.Phase.IsInactive() },
		message: func(count int, _ Thresholds, _ string) string {
			return fmt.Sprintf("Found %d inactive runner(s). Consider cleaning them up to reduce clutter.", count)
		},
	},
	{
		match: func(m model.Metrics, th Thresholds) bool { return m.UptimeHours > th.LongUptimeHours },
		message: func(count int, th Thresholds, _ string) string {
			return fmt.Sprintf("Found %d runner(s) with uptime over %d hours. Review whether they are still needed.", count, th.LongUptimeHours)
		},
	},
	{
		match: func(m model.Metrics, th Thresholds) bool {
			return m.EnvironmentCount() == 0 && m.UptimeHours > th.IdleUptimeHours
		},
		message: func(count int, th Thresholds, _ string) string {
			return fmt.Sprintf("Found %d runner(s) without environments running for over %d hours. Consider removing them.", count, th.IdleUptimeHours)
		},
	},
	{
		match: func(m model.Metrics, th Thresholds) bool { return m.EstimatedCost > th.HighCost },
		message: func(count int, th Thresholds, currency string) string {
			return fmt.Sprintf("Found %d runner(s) with estimated cost over %s. Investigate their resource usage.", count, formatMoney(th.HighCost, currency))
		},
	},
}

// Recommendations evaluates every rule against metrics and returns one
// message per rule that matched at least one runner. Amounts in messages are
// shown in currency.
func Recommendations(metrics []model.Metrics, th Thresholds, currency string) []string {
	var out []string
	for _, r := range rules {
		count := 0
		for _, m := range metrics {
			if r.match(m, th) {
				count++
			}
		}
		if count > 0 {
			out = append(out, r.message(count, th, currency))
		}
	}
	return out
}
