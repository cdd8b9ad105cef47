package cost

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML rate table. Keys missing from the file keep
// their default values; instance rates are merged over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML rate table. See LoadConfig.
func ParseConfig(data []byte) (*Config, error) {
	var file struct {
		Currency           *string            `yaml:"currency"`
		InstanceRates      map[string]float64 `yaml:"instanceRates"`
		DefaultRate        *float64           `yaml:"defaultRate"`
		PerEnvironmentRate *float64           `yaml:"perEnvironmentRate"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}

	cfg := DefaultConfig()
	if file.Currency != nil {
		cfg.Currency = *file.Currency
	}
	if file.DefaultRate != nil {
		cfg.DefaultRate = *file.DefaultRate
	}
	if file.PerEnvironmentRate != nil {
		cfg.PerEnvironmentRate = *file.PerEnvironmentRate
	}
	for instanceType, rate := range file.InstanceRates {
		cfg.InstanceRates[instanceType] = rate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects negative rates.
func (c *Config) Validate() error {
	if c.DefaultRate < 0 {
		return fmt.Errorf("default rate must not be negative: %v", c.DefaultRate)
	}
	if c.PerEnvironmentRate < 0 {
		return fmt.Errorf("per-environment rate must not be negative: %v", c.PerEnvironmentRate)
	}
	for instanceType, rate := range c.InstanceRates {
		if rate < 0 {
			return fmt.Errorf("rate for instance type %q must not be negative: %v", instanceType, rate)
		}
	}
	return nil
}
