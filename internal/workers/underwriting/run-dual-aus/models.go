// internal/workers/underwriting/run-dual-aus/models.go
package rundualaus

import "mortgage-workers/internal/models"

type Input struct {
	LoanID          string           `json:"loanId"`
	LoanApplication models.LoanFacts `json:"loanApplication"`
}

type Output struct {
	DU                models.AUSResult `json:"duResult"`
	LPA               models.AUSResult `json:"lpaResult"`
	AUSRecommendation string           `json:"ausRecommendation"`
}
