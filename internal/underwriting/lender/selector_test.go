// internal/underwriting/lender/selector_test.go
package lender

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

func newTestSelector(t *testing.T, provider RateQuoteProvider) *Selector {
	t.Helper()
	return NewSelector(provider, ratios.NewCalculator(7.0), 6.5, time.Second, logger.NewTestLogger(t))
}

func recommended(t *testing.T, comparisons []models.LenderComparison) *models.LenderComparison {
	t.Helper()
	var picked *models.LenderComparison
	for i := range comparisons {
		if comparisons[i].Recommended {
			require.Nil(t, picked, "more than one lender marked recommended")
			picked = &comparisons[i]
		}
	}
	require.NotNil(t, picked, "no lender marked recommended")
	return picked
}

func TestCompare_DisabledLendersNeverScored(t *testing.T) {
	provider := newStubRateProvider(map[string]float64{"on": 6.5, "off": 5.0})
	s := newTestSelector(t, provider)

	on := conventionalLender("on")
	off := conventionalLender("off")
	off.Enabled = false

	got := s.Compare(context.Background(), []models.LenderProfile{on, off}, cleanFacts())
	require.Len(t, got, 1)
	assert.Equal(t, "on", got[0].Lender.ID)
	assert.Equal(t, 0, provider.callCount("off"))
}

func TestCompare_EmptyRosterRecommendsNothing(t *testing.T) {
	s := newTestSelector(t, newStubRateProvider(nil))

	off := conventionalLender("off")
	off.Enabled = false

	assert.Empty(t, s.Compare(context.Background(), []models.LenderProfile{off}, cleanFacts()))
	assert.Empty(t, s.Compare(context.Background(), nil, cleanFacts()))
	assert.Nil(t, s.SelectBest(context.Background(), nil, cleanFacts()))
}

func TestCompare_HighProbabilityTierPrefersLowestRate(t *testing.T) {
	// a sits at 75% after two minor deductions, b at 55% after a hard
	// credit miss; b quotes the better rate and outscores a, but only a
	// clears the 70% gate
	a := conventionalLender("a")
	a.MinCreditScore = 690
	a.MaxLoanToValue = 78

	b := conventionalLender("b")
	b.MinCreditScore = 720

	provider := newStubRateProvider(map[string]float64{"a": 7.0, "b": 5.5})
	s := newTestSelector(t, provider)

	got := s.Compare(context.Background(), []models.LenderProfile{a, b}, cleanFacts())
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Lender.ID, "b should outscore a")
	assert.Greater(t, got[0].Score, got[1].Score)

	assert.Equal(t, "a", recommended(t, got).Lender.ID)
}

func TestCompare_MidProbabilityTierPrefersHighestProbability(t *testing.T) {
	// nobody reaches 70%; c holds 65% with an ugly rate, d holds 55% with
	// the top score, so the ladder must pick c
	c := conventionalLender("c")
	c.MaxLoanToValue = 70

	d := conventionalLender("d")
	d.MinCreditScore = 720

	provider := newStubRateProvider(map[string]float64{"c": 8.0, "d": 5.0})
	s := newTestSelector(t, provider)

	got := s.Compare(context.Background(), []models.LenderProfile{c, d}, cleanFacts())
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Lender.ID, "d should hold the top score")

	pick := recommended(t, got)
	assert.Equal(t, "c", pick.Lender.ID)
	assert.Equal(t, 65.0, pick.ApprovalProbability)
}

func TestCompare_LowProbabilityFallsBackToScore(t *testing.T) {
	// both under 50%: highest combined score wins
	e := conventionalLender("e")
	e.MinCreditScore = 720
	e.MaxLoanToValue = 70

	f := conventionalLender("f")
	f.MinCreditScore = 720
	f.MaxLoanToValue = 78
	f.MaxDebtToIncome = 25

	provider := newStubRateProvider(map[string]float64{"e": 5.0, "f": 8.0})
	s := newTestSelector(t, provider)

	got := s.Compare(context.Background(), []models.LenderProfile{e, f}, cleanFacts())
	require.Len(t, got, 2)

	pick := recommended(t, got)
	assert.Equal(t, "e", pick.Lender.ID)
	assert.Equal(t, got[0].Lender.ID, pick.Lender.ID)
}

func TestCompare_FallbackIsolatedToFailingLender(t *testing.T) {
	provider := newStubRateProvider(map[string]float64{"healthy": 6.25})
	provider.errs["broken"] = errors.New("connection refused")
	s := newTestSelector(t, provider)

	healthy := conventionalLender("healthy")
	broken := conventionalLender("broken")

	got := s.Compare(context.Background(), []models.LenderProfile{healthy, broken}, cleanFacts())
	require.Len(t, got, 2)

	byID := map[string]models.LenderComparison{}
	for _, c := range got {
		byID[c.Lender.ID] = c
	}

	assert.Equal(t, 6.25, byID["healthy"].Rate.Rate)

	// broken lender degrades to the bounded simulated quote
	require.NotNil(t, byID["broken"].Rate)
	assert.GreaterOrEqual(t, byID["broken"].Rate.Rate, 6.0)
	assert.LessOrEqual(t, byID["broken"].Rate.Rate, 7.0)
	fallback := SimulateRate(&broken, cleanFacts(), 6.5)
	assert.Equal(t, fallback.Rate, byID["broken"].Rate.Rate)
}

func TestCompare_UnsupportedLoanTypeZeroesProbability(t *testing.T) {
	va := conventionalLender("va-only")
	va.SupportedLoanTypes = []models.LoanType{models.LoanTypeVA}
	conv := conventionalLender("conv")

	provider := newStubRateProvider(map[string]float64{"va-only": 5.0, "conv": 7.0})
	s := newTestSelector(t, provider)

	got := s.Compare(context.Background(), []models.LenderProfile{va, conv}, cleanFacts())
	require.Len(t, got, 2)

	for _, c := range got {
		if c.Lender.ID == "va-only" {
			assert.Equal(t, 0.0, c.ApprovalProbability)
			assert.False(t, c.Recommended)
		}
	}
	assert.Equal(t, "conv", recommended(t, got).Lender.ID)
}

func TestCompare_Idempotent(t *testing.T) {
	a := conventionalLender("a")
	b := conventionalLender("b")
	b.MinCreditScore = 690

	provider := newStubRateProvider(map[string]float64{"a": 6.5, "b": 6.0})
	s := newTestSelector(t, provider)

	first := s.Compare(context.Background(), []models.LenderProfile{a, b}, cleanFacts())
	second := s.Compare(context.Background(), []models.LenderProfile{a, b}, cleanFacts())
	assert.Equal(t, first, second)
}
