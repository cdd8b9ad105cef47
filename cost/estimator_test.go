package cost

import (
	"math"
	"testing"

	"github.com/perfgo/runnerstat/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envs(n int) []model.Environment {
	out := make([]model.Environment, n)
	for i := range out {
		out[i] = model.Environment{ID: "env", RunnerID: "r"}
	}
	return out
}

func TestEstimator_Estimate(t *testing.T) {
	tests := []struct {
		name    string
		metrics model.Metrics
		want    float64
	}{
		{
			name: "remote with known instance type and environments",
			metrics: model.Metrics{
				Kind:          model.RunnerKindRemote,
				UptimeHours:   10,
				Environments:  envs(2),
				SystemDetails: map[string]any{"instanceType": "t3.large"},
			},
			// 10*0.0832 + 2*0.1*10 = 2.832
			want: 2.83,
		},
		{
			name: "local is free regardless of uptime and environments",
			metrics: model.Metrics{
				Kind:          model.RunnerKindLocal,
				UptimeHours:   5000,
				Environments:  envs(7),
				SystemDetails: map[string]any{"instanceType": "t3.xlarge"},
			},
			want: 0,
		},
		{
			name: "unknown instance type uses default rate",
			metrics: model.Metrics{
				Kind:          model.RunnerKindRemote,
				UptimeHours:   10,
				SystemDetails: map[string]any{"instanceType": "m5.metal"},
			},
			want: 0.5,
		},
		{
			name: "malformed details use default rate",
			metrics: model.Metrics{
				Kind:          model.RunnerKindRemote,
				UptimeHours:   3,
				Environments:  envs(1),
				SystemDetails: map[string]any{"raw": "{not json"},
			},
			// 3*0.05 + 1*0.1*3 = 0.45
			want: 0.45,
		},
		{
			name: "snake case instance type key",
			metrics: model.Metrics{
				Kind:          model.RunnerKindRemote,
				UptimeHours:   100,
				SystemDetails: map[string]any{"instance_type": "t3.medium"},
			},
			want: 4.16,
		},
		{
			name: "unrecognized kind is billed like remote",
			metrics: model.Metrics{
				Kind:          model.RunnerKind("RUNNER_KIND_EDGE"),
				UptimeHours:   10,
				SystemDetails: map[string]any{"instanceType": "t3.large"},
			},
			want: 0.83,
		},
		{
			name: "zero uptime costs nothing",
			metrics: model.Metrics{
				Kind:         model.RunnerKindRemote,
				Environments: envs(3),
			},
			want: 0,
		},
		{
			name: "nil details",
			metrics: model.Metrics{
				Kind:        model.RunnerKindRemote,
				UptimeHours: 2,
			},
			want: 0.1,
		},
	}

	e := NewEstimator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate(tt.metrics)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestEstimator_EstimateNeverInvalid(t *testing.T) {
	e := NewEstimator(&Config{
		InstanceRates:      map[string]float64{"nan": math.NaN(), "inf": math.Inf(1)},
		DefaultRate:        0.05,
		PerEnvironmentRate: 0.1,
	})

	for _, instanceType := range []string{"nan", "inf"} {
		got := e.Estimate(model.Metrics{
			Kind:          model.RunnerKindRemote,
			UptimeHours:   10,
			SystemDetails: map[string]any{"instanceType": instanceType},
		})
		assert.Equal(t, 0.0, got, instanceType)
	}
}

func TestInstanceType(t *testing.T) {
	assert.Equal(t, "t3.large", InstanceType(map[string]any{"instanceType": "t3.large", "instance_type": "t3.medium"}))
	assert.Equal(t, "t3.medium", InstanceType(map[string]any{"instance_type": "t3.medium"}))
	assert.Equal(t, "", InstanceType(map[string]any{"instanceType": 42}))
	assert.Equal(t, "", InstanceType(nil))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
currency: EUR
perEnvironmentRate: 0.2
instanceRates:
  t3.large: 0.09
  c6i.large: 0.085
`))
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 0.2, cfg.PerEnvironmentRate)
	assert.Equal(t, 0.05, cfg.DefaultRate)
	assert.Equal(t, 0.09, cfg.InstanceRates["t3.large"])
	assert.Equal(t, 0.085, cfg.InstanceRates["c6i.large"])
	assert.Equal(t, 0.0416, cfg.InstanceRates["t3.medium"])

	e := NewEstimator(cfg)
	assert.Equal(t, 0.085, e.HourlyRate("c6i.large"))
	assert.Equal(t, 0.05, e.HourlyRate(""))
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "negative default", data: "defaultRate: -1"},
		{name: "negative per environment", data: "perEnvironmentRate: -0.1"},
		{name: "negative instance rate", data: "instanceRates:\n  t3.large: -2"},
		{name: "not yaml", data: "instanceRates: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			require.Error(t, err)
		})
	}
}
