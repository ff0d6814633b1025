// internal/workers/underwriting/evaluate-rules/config.go
package evaluaterules

import "time"

type Config struct {
	Timeout time.Duration

	// AssumedAnnualRate feeds the ratio facts handed to the rules.
	AssumedAnnualRate float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		AssumedAnnualRate: 7.0,
	}
}
