// internal/workers/underwriting/evaluate-rules/models.go
package evaluaterules

import (
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/rules"
)

type Input struct {
	LoanID          string           `json:"loanId"`
	LoanApplication models.LoanFacts `json:"loanApplication"`
}

type Output struct {
	GuidelineVersion  string            `json:"guidelineVersion"`
	Denied            bool              `json:"ruleDenied"`
	DenyReason        string            `json:"denyReason,omitempty"`
	FiredRules        []rules.FiredRule `json:"firedRules"`
	RateAdjustment    float64           `json:"rateAdjustment"`
	RateTier          string            `json:"rateTier,omitempty"`
	RequiredDocuments []string          `json:"requiredDocuments"`
	RiskFlags         []string          `json:"riskFlags"`
}
