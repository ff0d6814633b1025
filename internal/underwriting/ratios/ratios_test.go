// internal/underwriting/ratios/ratios_test.go
package ratios

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mortgage-workers/internal/models"
)

func baseFacts() *models.LoanFacts {
	return &models.LoanFacts{
		Employment: models.Employment{
			Status:        models.EmploymentEmployed,
			MonthlyIncome: 8000,
		},
		Debts: []models.Debt{
			{MonthlyPayment: 400},
			{MonthlyPayment: 250},
		},
		Property: models.Property{
			LoanAmount:    400000,
			PurchasePrice: 500000,
		},
		LoanType:       models.LoanTypeConventional,
		LoanTermMonths: 360,
		Assets: []models.Asset{
			{CashOrMarketValue: 30000},
			{CashOrMarketValue: 5000},
		},
	}
}

func TestDebtToIncome_ZeroIncome(t *testing.T) {
	calc := NewCalculator(7.0)

	facts := baseFacts()
	facts.Employment.MonthlyIncome = 0
	assert.Equal(t, 0.0, calc.DebtToIncome(facts))

	facts.Employment.MonthlyIncome = -100
	assert.Equal(t, 0.0, calc.DebtToIncome(facts))
}

func TestDebtToIncome_IncludesAmortizedPayment(t *testing.T) {
	calc := NewCalculator(7.0)
	facts := baseFacts()

	payment := MonthlyPayment(400000, 7.0, 360)
	assert.InDelta(t, 2661.21, payment, 0.01)

	want := (650 + payment) / 8000 * 100
	assert.InDelta(t, want, calc.DebtToIncome(facts), 0.01)
}

func TestLoanToValue(t *testing.T) {
	tests := []struct {
		name          string
		loanAmount    float64
		purchasePrice float64
		want          float64
	}{
		{"standard 80", 400000, 500000, 80.0},
		{"rounds to two decimals", 100000, 300000, 33.33},
		{"zero purchase price", 400000, 0, 0},
		{"over 100", 505000, 500000, 101.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := baseFacts()
			facts.Property.LoanAmount = tt.loanAmount
			facts.Property.PurchasePrice = tt.purchasePrice
			assert.Equal(t, tt.want, LoanToValue(facts))
		})
	}
}

func TestReserves_ZeroPITI(t *testing.T) {
	calc := NewCalculator(7.0)
	facts := baseFacts()
	facts.Property.LoanAmount = 0
	facts.Property.PurchasePrice = 0

	assert.Equal(t, 0.0, calc.Reserves(facts))
}

func TestReserves_MonthsOfPITI(t *testing.T) {
	calc := NewCalculator(7.0)
	facts := baseFacts()

	piti := calc.EstimatedPITI(facts)
	assert.Greater(t, piti, MonthlyPayment(400000, 7.0, 360))

	got := calc.Reserves(facts)
	assert.InDelta(t, 35000/piti, got, 0.01)
}

func TestMonthlyPayment_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, MonthlyPayment(0, 7.0, 360))
	assert.Equal(t, 0.0, MonthlyPayment(100000, 7.0, 0))
	// zero rate degrades to straight-line principal
	assert.InDelta(t, 100000.0/360, MonthlyPayment(100000, 0, 360), 0.0001)
}

func TestCompute_DefaultsTermWhenAbsent(t *testing.T) {
	calc := NewCalculator(0) // falls back to DefaultAnnualRate
	assert.Equal(t, DefaultAnnualRate, calc.AnnualRate)

	facts := baseFacts()
	facts.LoanTermMonths = 0
	withDefault := calc.Compute(facts)

	facts.LoanTermMonths = DefaultTermMonths
	explicit := calc.Compute(facts)

	assert.Equal(t, explicit, withDefault)
}

func TestCompute_IsDeterministic(t *testing.T) {
	calc := NewCalculator(7.0)
	facts := baseFacts()

	first := calc.Compute(facts)
	second := calc.Compute(facts)
	assert.Equal(t, first, second)
}
