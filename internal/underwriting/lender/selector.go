// internal/underwriting/lender/selector.go
package lender

import (
	"context"
	"sort"
	"sync"
	"time"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

// Selector ranks lender profiles for a loan and recommends one.
type Selector struct {
	provider     RateQuoteProvider
	ratios       *ratios.Calculator
	baseRate     float64
	quoteTimeout time.Duration
	log          logger.Logger
}

// NewSelector builds a selector. baseRate anchors the simulated fallback
// quotes; quoteTimeout bounds each lender's rate fetch.
func NewSelector(provider RateQuoteProvider, rc *ratios.Calculator, baseRate float64, quoteTimeout time.Duration, log logger.Logger) *Selector {
	if quoteTimeout <= 0 {
		quoteTimeout = 5 * time.Second
	}
	return &Selector{
		provider:     provider,
		ratios:       rc,
		baseRate:     baseRate,
		quoteTimeout: quoteTimeout,
		log:          log,
	}
}

// Compare evaluates every enabled lender concurrently and returns the ranked
// comparison list, sorted by score descending, with exactly one entry marked
// recommended (none when the enabled roster is empty). Disabled lenders are
// skipped entirely, never scored.
func (s *Selector) Compare(ctx context.Context, lenders []models.LenderProfile, facts *models.LoanFacts) []models.LenderComparison {
	r := s.ratios.Compute(facts)

	enabled := make([]models.LenderProfile, 0, len(lenders))
	for _, l := range lenders {
		if l.Enabled {
			enabled = append(enabled, l)
		}
	}
	if len(enabled) == 0 {
		return []models.LenderComparison{}
	}

	// fan out one goroutine per lender: total latency is bounded by the
	// slowest single quote, and one lender's failure stays its own
	comparisons := make([]models.LenderComparison, len(enabled))
	var wg sync.WaitGroup
	for i := range enabled {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			comparisons[i] = s.evaluateLender(ctx, &enabled[i], facts, r)
		}(i)
	}
	wg.Wait()

	sort.SliceStable(comparisons, func(a, b int) bool {
		return comparisons[a].Score > comparisons[b].Score
	})

	if idx := s.pickRecommended(comparisons); idx >= 0 {
		comparisons[idx].Recommended = true
	}
	return comparisons
}

// SelectBest returns the recommended lender, or nil when no enabled lender
// exists.
func (s *Selector) SelectBest(ctx context.Context, lenders []models.LenderProfile, facts *models.LoanFacts) *models.LenderProfile {
	for _, c := range s.Compare(ctx, lenders, facts) {
		if c.Recommended {
			lender := c.Lender
			return &lender
		}
	}
	return nil
}

// evaluateLender runs the quote fetch and probability scoring for one
// lender. The fetch runs in its own goroutine under a per-lender timeout
// while probability scoring proceeds; the two are independent.
func (s *Selector) evaluateLender(ctx context.Context, profile *models.LenderProfile, facts *models.LoanFacts, r models.Ratios) models.LenderComparison {
	rateCh := make(chan *models.LenderRate, 1)
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
		defer cancel()

		rate, err := s.provider.FetchRate(fetchCtx, profile, facts)
		if err != nil {
			s.log.Warn("rate fetch failed, using simulated quote", map[string]interface{}{
				"lenderId": profile.ID,
				"error":    err,
			})
			rate = SimulateRate(profile, facts, s.baseRate)
			metrics.LenderQuotes.WithLabelValues("simulated").Inc()
		} else {
			metrics.LenderQuotes.WithLabelValues("api").Inc()
		}
		rateCh <- rate
	}()

	prob := approvalProbability(profile, facts, r)
	rate := <-rateCh

	return models.LenderComparison{
		Lender:              *profile,
		Rate:                rate,
		ApprovalProbability: prob.probability,
		RiskFactors:         prob.riskFactors,
		Reasons:             prob.reasons,
		Score:               combinedScore(rate, prob),
	}
}

// pickRecommended applies the tie-break ladder, strictly in this order:
//  1. among lenders with probability >= 70, the lowest quoted rate
//  2. otherwise, the highest probability among those >= 50
//  3. otherwise, the single highest-scored lender
//
// Rate never overrides approval likelihood below the 70% gate.
func (s *Selector) pickRecommended(comparisons []models.LenderComparison) int {
	if len(comparisons) == 0 {
		return -1
	}

	best := -1
	for i, c := range comparisons {
		if c.ApprovalProbability < 70 || c.Rate == nil {
			continue
		}
		if best < 0 || c.Rate.Rate < comparisons[best].Rate.Rate {
			best = i
		}
	}
	if best >= 0 {
		return best
	}

	for i, c := range comparisons {
		if c.ApprovalProbability < 50 {
			continue
		}
		if best < 0 || c.ApprovalProbability > comparisons[best].ApprovalProbability {
			best = i
		}
	}
	if best >= 0 {
		return best
	}

	// list is already sorted by score descending
	return 0
}
