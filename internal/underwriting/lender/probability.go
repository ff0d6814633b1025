// internal/underwriting/lender/probability.go
package lender

import (
	"fmt"
	"math"

	"mortgage-workers/internal/models"
)

const probabilityBase = 85.0

// probabilityResult carries the score plus the human-readable trail.
type probabilityResult struct {
	probability float64
	riskFactors []string
	reasons     []string
}

// approvalProbability scores how likely this lender is to approve the loan.
// Loan-type mismatch is an absolute disqualification, not a deduction; every
// other check contributes an independent bounded delta plus a reason string.
func approvalProbability(lender *models.LenderProfile, facts *models.LoanFacts, r models.Ratios) probabilityResult {
	res := probabilityResult{probability: probabilityBase}

	if !lender.SupportsLoanType(facts.LoanType) {
		res.probability = 0
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("%s does not offer %s loans", lender.Name, facts.LoanType))
		return res
	}

	res.creditCheck(lender, facts)
	res.ltvCheck(lender, r)
	res.dtiCheck(lender, r)
	res.employmentCheck(facts)
	res.downPaymentCheck(facts)

	res.probability = math.Max(0, math.Min(100, res.probability))
	return res
}

func (res *probabilityResult) creditCheck(lender *models.LenderProfile, facts *models.LoanFacts) {
	score := facts.CreditScore
	min := lender.MinCreditScore
	switch {
	case score < min:
		res.probability -= 40
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("credit score %d below lender minimum %d", score, min))
	case score < min+20:
		res.probability -= 10
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("credit score %d within 20 points of lender minimum %d", score, min))
	case score >= 740:
		res.probability += 5
		res.reasons = append(res.reasons, "strong credit profile")
	}
}

func (res *probabilityResult) ltvCheck(lender *models.LenderProfile, r models.Ratios) {
	max := lender.MaxLoanToValue
	switch {
	case r.LTV > max:
		res.probability -= 30
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("LTV %.2f%% exceeds lender maximum %.0f%%", r.LTV, max))
	case r.LTV > max-5:
		res.probability -= 10
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("LTV %.2f%% within 5 points of lender maximum %.0f%%", r.LTV, max))
	}
}

func (res *probabilityResult) dtiCheck(lender *models.LenderProfile, r models.Ratios) {
	max := lender.MaxDebtToIncome
	switch {
	case r.DTI > max:
		res.probability -= 25
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("DTI %.2f%% exceeds lender maximum %.0f%%", r.DTI, max))
	case r.DTI > max-3:
		res.probability -= 10
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("DTI %.2f%% within 3 points of lender maximum %.0f%%", r.DTI, max))
	}
}

func (res *probabilityResult) employmentCheck(facts *models.LoanFacts) {
	switch facts.Employment.Status {
	case models.EmploymentUnemployed:
		res.probability -= 25
		res.riskFactors = append(res.riskFactors, "borrower is not employed")
	case models.EmploymentSelfEmployed:
		res.probability -= 10
		res.riskFactors = append(res.riskFactors, "self-employed income requires additional review")
	default:
		if facts.Employment.YearsOnJob >= 2 {
			res.probability += 5
			res.reasons = append(res.reasons, "stable employment history")
		}
	}
}

func (res *probabilityResult) downPaymentCheck(facts *models.LoanFacts) {
	down := facts.DownPaymentPercent()
	switch {
	case down >= 20:
		res.probability += 5
		res.reasons = append(res.reasons, fmt.Sprintf("%.0f%% down payment", down))
	case down < 5:
		res.probability -= 10
		res.riskFactors = append(res.riskFactors,
			fmt.Sprintf("down payment %.2f%% under 5%%", down))
	}
}

// combinedScore merges rate attractiveness and approval likelihood. Rate
// contributes max(0, 50-(rate-5.0)*10), zero when no quote is available;
// probability contributes its share of 50; a clean file gets a 10-point
// bonus. Rounded to one decimal.
func combinedScore(rate *models.LenderRate, prob probabilityResult) float64 {
	score := 0.0
	if rate != nil {
		score += math.Max(0, 50-(rate.Rate-5.0)*10)
	}
	score += prob.probability / 100 * 50
	if len(prob.riskFactors) == 0 {
		score += 10
	}
	return round1(score)
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
