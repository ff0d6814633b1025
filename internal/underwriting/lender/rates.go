// internal/underwriting/lender/rates.go

// Package lender ranks funding counterparties for a loan: a rate quote and an
// approval probability per lender, combined into a score, with an explicit
// tie-break ladder picking the recommendation. Per-lender work fans out
// concurrently; one lender's failure never touches another's evaluation.
package lender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

// RateQuoteProvider fetches a quote from a lender's pricing API. An error or
// context timeout degrades to the simulated fallback for that lender only.
type RateQuoteProvider interface {
	FetchRate(ctx context.Context, lender *models.LenderProfile, facts *models.LoanFacts) (*models.LenderRate, error)
}

// HTTPDoer is the slice of http.Client the provider needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPRateProvider calls the lender's pricing endpoint.
type HTTPRateProvider struct {
	client HTTPDoer
}

// NewHTTPRateProvider wraps a timeout-bounded HTTP client.
func NewHTTPRateProvider(client HTTPDoer) *HTTPRateProvider {
	return &HTTPRateProvider{client: client}
}

func (p *HTTPRateProvider) FetchRate(ctx context.Context, lender *models.LenderProfile, facts *models.LoanFacts) (*models.LenderRate, error) {
	if lender.APIBaseURL == "" {
		return nil, fmt.Errorf("lender %s has no pricing endpoint", lender.ID)
	}

	body, err := json.Marshal(map[string]interface{}{
		"loanAmount": facts.Property.LoanAmount,
		"loanType":   facts.LoanType,
		"termMonths": facts.LoanTermMonths,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		lender.APIBaseURL+"/v1/rates/quote", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if lender.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+lender.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate fetch for %s: %w", lender.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate fetch for %s: status %d", lender.ID, resp.StatusCode)
	}

	var rate models.LenderRate
	if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
		return nil, fmt.Errorf("rate fetch for %s: decode: %w", lender.ID, err)
	}
	rate.LenderID = lender.ID
	return &rate, nil
}

// SimulateRate produces the bounded fallback quote: the base rate plus a
// deterministic offset in [-0.5, +0.5] seeded from the lender and loan, so
// repeated evaluations of the same inputs are idempotent.
func SimulateRate(lender *models.LenderProfile, facts *models.LoanFacts, baseRate float64) *models.LenderRate {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%.0f:%s", lender.ID, facts.Property.LoanAmount, facts.LoanType)
	// map the hash onto [-0.5, +0.5] in basis-point steps
	offset := float64(h.Sum64()%101)/100 - 0.5

	rate := baseRate + offset
	payment := ratios.MonthlyPayment(facts.Property.LoanAmount, rate, termOrDefault(facts))

	return &models.LenderRate{
		LenderID:                lender.ID,
		Rate:                    round2(rate),
		APR:                     round2(rate + 0.18),
		Points:                  1.0,
		Fees:                    1295,
		LockPeriodDays:          30,
		EstimatedMonthlyPayment: round2(payment),
	}
}

// CachedRateProvider decorates a provider with a Redis quote cache. Cache
// failures are invisible to callers: a miss or a broken connection just
// falls through to the wrapped provider.
type CachedRateProvider struct {
	inner RateQuoteProvider
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

// NewCachedRateProvider wraps a provider with quote caching.
func NewCachedRateProvider(inner RateQuoteProvider, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedRateProvider {
	return &CachedRateProvider{inner: inner, redis: rdb, ttl: ttl, log: log}
}

func (c *CachedRateProvider) FetchRate(ctx context.Context, lender *models.LenderProfile, facts *models.LoanFacts) (*models.LenderRate, error) {
	key := fmt.Sprintf("lender:rate:%s:%.0f:%s", lender.ID, facts.Property.LoanAmount, facts.LoanType)

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var rate models.LenderRate
		if err := json.Unmarshal([]byte(val), &rate); err == nil {
			metrics.LenderQuotes.WithLabelValues("cache").Inc()
			return &rate, nil
		}
	}

	rate, err := c.inner.FetchRate(ctx, lender, facts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rate); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("rate cache write failed", map[string]interface{}{
				"lenderId": lender.ID,
				"error":    err,
			})
		}
	}
	return rate, nil
}

func termOrDefault(facts *models.LoanFacts) int {
	if facts.LoanTermMonths > 0 {
		return facts.LoanTermMonths
	}
	return ratios.DefaultTermMonths
}
