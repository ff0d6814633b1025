// internal/workers/underwriting/run-dual-aus/config.go
package rundualaus

import "time"

type Config struct {
	Timeout time.Duration

	// AssumedAnnualRate feeds the shared ratio snapshot both agencies see.
	AssumedAnnualRate float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		AssumedAnnualRate: 7.0,
	}
}
