// internal/workers/underwriting/compare-lenders/models.go
package comparelenders

import "mortgage-workers/internal/models"

type Input struct {
	LoanID          string           `json:"loanId"`
	LoanApplication models.LoanFacts `json:"loanApplication"`

	// Lenders overrides the configured roster; empty means load from storage.
	Lenders []models.LenderProfile `json:"lenders,omitempty"`
}

type Output struct {
	Comparisons           []models.LenderComparison `json:"lenderComparisons"`
	RecommendedLenderID   string                    `json:"recommendedLenderId"`
	RecommendedLenderName string                    `json:"recommendedLenderName"`
}
