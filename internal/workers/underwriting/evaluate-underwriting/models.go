// internal/workers/underwriting/evaluate-underwriting/models.go
package evaluateunderwriting

import "mortgage-workers/internal/models"

type Input struct {
	LoanID          string           `json:"loanId"`
	LoanApplication models.LoanFacts `json:"loanApplication"`

	// AUSRecommendation is carried through to the audit record when the
	// dual-AUS task ran earlier in the process.
	AUSRecommendation string `json:"ausRecommendation,omitempty"`
}

type Output struct {
	Decision   string             `json:"decision"`
	DTI        float64            `json:"dti"`
	LTV        float64            `json:"ltv"`
	Conditions []models.Condition `json:"conditions"`
	Notes      []string           `json:"decisionNotes"`
}
