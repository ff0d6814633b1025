// internal/workers/underwriting/evaluate-underwriting/config.go
package evaluateunderwriting

import "time"

type Config struct {
	Timeout time.Duration

	// AssumedAnnualRate feeds the ratio calculator's payment estimate.
	AssumedAnnualRate float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		AssumedAnnualRate: 7.0,
	}
}
