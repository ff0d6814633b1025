// internal/underwriting/lender/rates_test.go
package lender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
)

// stubRateProvider serves canned quotes per lender ID and records calls.
type stubRateProvider struct {
	mu    sync.Mutex
	rates map[string]float64
	errs  map[string]error
	calls map[string]int
}

func newStubRateProvider(rates map[string]float64) *stubRateProvider {
	return &stubRateProvider{
		rates: rates,
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (s *stubRateProvider) FetchRate(_ context.Context, l *models.LenderProfile, _ *models.LoanFacts) (*models.LenderRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[l.ID]++
	if err, ok := s.errs[l.ID]; ok {
		return nil, err
	}
	rate, ok := s.rates[l.ID]
	if !ok {
		return nil, errors.New("no quote configured")
	}
	return &models.LenderRate{LenderID: l.ID, Rate: rate}, nil
}

func (s *stubRateProvider) callCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func TestSimulateRate_Deterministic(t *testing.T) {
	l := conventionalLender("first-national")
	facts := cleanFacts()

	a := SimulateRate(&l, facts, 6.5)
	b := SimulateRate(&l, facts, 6.5)
	assert.Equal(t, a, b)
	assert.Equal(t, "first-national", a.LenderID)
	assert.Positive(t, a.EstimatedMonthlyPayment)
}

func TestSimulateRate_BoundedAroundBase(t *testing.T) {
	facts := cleanFacts()
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		l := conventionalLender(id)
		got := SimulateRate(&l, facts, 6.5)
		assert.GreaterOrEqual(t, got.Rate, 6.0, "lender %s", id)
		assert.LessOrEqual(t, got.Rate, 7.0, "lender %s", id)
		assert.InDelta(t, got.Rate+0.18, got.APR, 0.001)
	}
}

func TestSimulateRate_VariesByLoanShape(t *testing.T) {
	l := conventionalLender("a")
	facts := cleanFacts()
	base := SimulateRate(&l, facts, 6.5)

	bigger := cleanFacts()
	bigger.Property.LoanAmount = 500000
	got := SimulateRate(&l, bigger, 6.5)
	assert.NotEqual(t, base.EstimatedMonthlyPayment, got.EstimatedMonthlyPayment)
}

func TestCachedRateProvider_ServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := newStubRateProvider(map[string]float64{"a": 6.75})
	cached := NewCachedRateProvider(inner, rdb, time.Minute, logger.NewNoOpLogger())

	l := conventionalLender("a")
	facts := cleanFacts()

	first, err := cached.FetchRate(context.Background(), &l, facts)
	require.NoError(t, err)
	assert.Equal(t, 6.75, first.Rate)

	second, err := cached.FetchRate(context.Background(), &l, facts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.callCount("a"), "second fetch should hit the cache")
}

func TestCachedRateProvider_KeyedByLoanShape(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := newStubRateProvider(map[string]float64{"a": 6.75})
	cached := NewCachedRateProvider(inner, rdb, time.Minute, logger.NewNoOpLogger())

	l := conventionalLender("a")

	_, err := cached.FetchRate(context.Background(), &l, cleanFacts())
	require.NoError(t, err)

	other := cleanFacts()
	other.Property.LoanAmount = 500000
	_, err = cached.FetchRate(context.Background(), &l, other)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.callCount("a"), "a different loan amount is a different cache key")
}

func TestCachedRateProvider_PropagatesProviderError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := newStubRateProvider(nil)
	inner.errs["a"] = errors.New("pricing api down")
	cached := NewCachedRateProvider(inner, rdb, time.Minute, logger.NewNoOpLogger())

	l := conventionalLender("a")
	_, err := cached.FetchRate(context.Background(), &l, cleanFacts())
	assert.Error(t, err)
}
