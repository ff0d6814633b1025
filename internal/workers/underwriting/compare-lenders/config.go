// internal/workers/underwriting/compare-lenders/config.go
package comparelenders

import "time"

type Config struct {
	Timeout time.Duration

	// AssumedAnnualRate drives the qualifying payment in the ratio facts.
	AssumedAnnualRate float64

	// BaseRate anchors simulated fallback quotes.
	BaseRate float64

	// QuoteTimeout bounds each lender's rate fetch.
	QuoteTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		AssumedAnnualRate: 7.0,
		BaseRate:          7.0,
		QuoteTimeout:      5 * time.Second,
	}
}
