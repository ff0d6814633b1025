// internal/underwriting/ratios/ratios.go

// Package ratios computes the core underwriting ratios (DTI, LTV, reserve
// months) from a loan fact record. Pure math, no dependencies; every zero
// denominator yields 0 rather than an error.
package ratios

import (
	"math"

	"mortgage-workers/internal/models"
)

const (
	// DefaultAnnualRate is the assumed note rate used to estimate the
	// mortgage payment before a real quote exists.
	DefaultAnnualRate = 7.0

	// DefaultTermMonths is applied when the application omits the term.
	DefaultTermMonths = 360

	// Annual property tax and hazard insurance accruals as a share of the
	// purchase price, used only for the PITI estimate behind reserves.
	annualTaxFactor       = 0.0115
	annualInsuranceFactor = 0.0035
)

// Calculator computes Ratios from LoanFacts. The assumed annual rate is
// configurable so the service layer can track market movement.
type Calculator struct {
	AnnualRate float64
}

// NewCalculator returns a Calculator with the given assumed annual rate.
// A zero or negative rate falls back to DefaultAnnualRate.
func NewCalculator(annualRate float64) *Calculator {
	if annualRate <= 0 {
		annualRate = DefaultAnnualRate
	}
	return &Calculator{AnnualRate: annualRate}
}

// Compute derives DTI, LTV and reserve months. Ratios are computed fresh on
// every call; nothing is cached because the facts may change between calls.
func (c *Calculator) Compute(facts *models.LoanFacts) models.Ratios {
	return models.Ratios{
		DTI:            c.DebtToIncome(facts),
		LTV:            LoanToValue(facts),
		ReservesMonths: c.Reserves(facts),
	}
}

// DebtToIncome returns (recurring debt + estimated mortgage payment) as a
// percentage of monthly income, or 0 when income is absent.
func (c *Calculator) DebtToIncome(facts *models.LoanFacts) float64 {
	income := facts.Employment.MonthlyIncome
	if income <= 0 {
		return 0
	}
	payment := MonthlyPayment(facts.Property.LoanAmount, c.AnnualRate, termMonths(facts))
	return round2((facts.TotalMonthlyDebt() + payment) / income * 100)
}

// LoanToValue returns loanAmount/purchasePrice as a percentage, or 0 when the
// purchase price is absent.
func LoanToValue(facts *models.LoanFacts) float64 {
	price := facts.Property.PurchasePrice
	if price <= 0 {
		return 0
	}
	return round2(facts.Property.LoanAmount / price * 100)
}

// Reserves returns months of estimated PITI covered by liquid assets, or 0
// when the PITI estimate is zero.
func (c *Calculator) Reserves(facts *models.LoanFacts) float64 {
	piti := c.EstimatedPITI(facts)
	if piti <= 0 {
		return 0
	}
	return round2(facts.TotalLiquidAssets() / piti)
}

// EstimatedPITI approximates the full monthly housing expense: principal and
// interest on the note plus tax and insurance accruals on the price.
func (c *Calculator) EstimatedPITI(facts *models.LoanFacts) float64 {
	pi := MonthlyPayment(facts.Property.LoanAmount, c.AnnualRate, termMonths(facts))
	escrow := facts.Property.PurchasePrice * (annualTaxFactor + annualInsuranceFactor) / 12
	return pi + escrow
}

// MonthlyPayment is the standard amortization formula
// P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate and n the term in
// months. Degenerate inputs (zero principal, term, or rate) return the
// simple division or 0 rather than NaN.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r <= 0 {
		return principal / float64(months)
	}
	factor := math.Pow(1+r, float64(months))
	return principal * r * factor / (factor - 1)
}

func termMonths(facts *models.LoanFacts) int {
	if facts.LoanTermMonths > 0 {
		return facts.LoanTermMonths
	}
	return DefaultTermMonths
}

// round2 rounds half away from zero on the scaled integer, matching the
// documented round(x*100)/100 contract.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
