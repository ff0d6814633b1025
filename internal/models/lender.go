// internal/models/lender.go
package models

// LenderProfile is an operator-configured funding counterparty. The engine
// only reads profiles; credentials and endpoints are opaque to it.
type LenderProfile struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	APIBaseURL         string     `json:"apiBaseUrl"`
	APIKey             string     `json:"apiKey"`
	AUSProvider        string     `json:"ausProvider"`
	CreditBureau       string     `json:"creditBureauProvider"`
	Type               string     `json:"type"`
	Enabled            bool       `json:"enabled"`
	MinCreditScore     int        `json:"minCreditScore"`
	MaxLoanToValue     float64    `json:"maxLoanToValue"`
	MaxDebtToIncome    float64    `json:"maxDebtToIncome"`
	SupportedLoanTypes []LoanType `json:"loanTypes"`
}

// SupportsLoanType reports whether the lender funds the given program.
func (p *LenderProfile) SupportsLoanType(t LoanType) bool {
	for _, lt := range p.SupportedLoanTypes {
		if lt == t {
			return true
		}
	}
	return false
}

// LenderRate is a quote from a lender's pricing API, or from the bounded
// simulator when the API is unavailable.
type LenderRate struct {
	LenderID                string  `json:"lenderId"`
	Rate                    float64 `json:"rate"`
	APR                     float64 `json:"apr"`
	Points                  float64 `json:"points"`
	Fees                    float64 `json:"fees"`
	LockPeriodDays          int     `json:"lockPeriodDays"`
	EstimatedMonthlyPayment float64 `json:"estimatedMonthlyPayment"`
}

// LenderComparison is one row of a selection run. Ephemeral: produced per
// request, never persisted by the engine.
type LenderComparison struct {
	Lender              LenderProfile `json:"lender"`
	Rate                *LenderRate   `json:"rate"`
	ApprovalProbability float64       `json:"approvalProbability"`
	RiskFactors         []string      `json:"riskFactors"`
	Reasons             []string      `json:"reasons"`
	Score               float64       `json:"score"`
	Recommended         bool          `json:"recommended"`
}
