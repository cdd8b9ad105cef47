// Package cost estimates what a runner has cost since it was created.
//
// Estimates are heuristic. Local runners are free; every other kind is
// billed at an hourly rate chosen by the instance type found in the
// runner's system details, plus a flat rate per attached environment-hour:
//
//	base      = uptimeHours × instanceRate
//	surcharge = environments × perEnvironmentRate × uptimeHours
//	total     = round2(base + surcharge)
package cost

import (
	"math"

	"github.com/perfgo/runnerstat/model"
)

// Config holds the rate table used for estimation.
type Config struct {
	Currency string
	// Hourly rate per instance type
	InstanceRates map[string]float64
	// Hourly rate for instance types missing from InstanceRates
	DefaultRate float64
	// Hourly rate charged per attached environment
	PerEnvironmentRate float64
}

// DefaultConfig returns the built-in rate table.
func DefaultConfig() *Config {
	return &Config{
		Currency: "USD",
		InstanceRates: map[string]float64{
			"t3.medium": 0.0416,
			"t3.large":  0.0832,
			"t3.xlarge": 0.1664,
		},
		DefaultRate:        0.05,
		PerEnvironmentRate: 0.1,
	}
}

// instanceTypeKeys are looked up in order in the parsed system details.
var instanceTypeKeys = []string{"instanceType", "instance_type"}

// Estimator calculates runner costs from a rate table.
type Estimator struct {
	config *Config
}

// NewEstimator creates an estimator for the given configuration.
// If config is nil, the default configuration is used.
func NewEstimator(config *Config) *Estimator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Estimator{
		config: config,
	}
}

// Config returns the rate table in use.
func (e *Estimator) Config() *Config {
	return e.config
}

// Estimate returns the estimated cost of a runner, rounded to cents.
// The result is never negative and never NaN.
//
// Only local runners are free. Remote runners and runners of any kind the
// tool does not know about are billed.
func (e *Estimator) Estimate(m model.Metrics) float64 {
	if m.Kind.IsLocal() {
		return 0
	}

	hours := float64(m.UptimeHours)
	rate := e.HourlyRate(InstanceType(m.SystemDetails))

	base := hours * rate
	surcharge := float64(m.EnvironmentCount()) * e.config.PerEnvironmentRate * hours

	return sanitize(Round(base + surcharge))
}

// HourlyRate returns the rate for an instance type, falling back to the
// default rate for unknown or empty types.
func (e *Estimator) HourlyRate(instanceType string) float64 {
	if rate, ok := e.config.InstanceRates[instanceType]; ok && instanceType != "" {
		return rate
	}
	return e.config.DefaultRate
}

// InstanceType extracts the instance type from parsed system details.
// It returns "" when no string value is present.
func InstanceType(details map[string]any) string {
	for _, key := range instanceTypeKeys {
		if v, ok := details[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
