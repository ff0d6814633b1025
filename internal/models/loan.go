// internal/models/loan.go
package models

// EmploymentStatus values as they appear on the application form.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

// LoanType is the loan program requested by the borrower.
type LoanType string

const (
	LoanTypeConventional LoanType = "conventional"
	LoanTypeFHA          LoanType = "fha"
	LoanTypeVA           LoanType = "va"
	LoanTypeJumbo        LoanType = "jumbo"
)

// DocumentType identifies an uploaded borrower document.
type DocumentType string

const (
	DocDriversLicense DocumentType = "drivers_license"
	DocPayStub        DocumentType = "pay_stub"
	DocW2             DocumentType = "w2"
	DocBankStatement  DocumentType = "bank_statement"
	DocTaxReturn      DocumentType = "tax_return"
)

// Employment holds the borrower's stated employment details.
type Employment struct {
	Status        EmploymentStatus `json:"status"`
	MonthlyIncome float64          `json:"monthlyIncome"`
	YearsOnJob    float64          `json:"yearsOnJob"`
}

// Debt is a single recurring obligation from the credit report.
type Debt struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
}

// Asset is a liquid account or verified holding.
type Asset struct {
	CashOrMarketValue float64 `json:"cashOrMarketValue"`
}

// DocumentRecord is a document attached to the loan file.
type DocumentRecord struct {
	Type DocumentType `json:"type"`
}

// Property describes the subject property and the purchase terms.
type Property struct {
	LoanAmount    float64 `json:"loanAmount"`
	PurchasePrice float64 `json:"purchasePrice"`
	PropertyType  string  `json:"propertyType"`
}

// LoanFacts is the read-only projection of a loan application consumed by
// every evaluator. Numeric fields default to zero when absent; the evaluators
// are required to treat zero denominators as degenerate inputs, not errors.
type LoanFacts struct {
	Employment     Employment       `json:"employment"`
	Debts          []Debt           `json:"debts"`
	Property       Property         `json:"property"`
	LoanType       LoanType         `json:"loanType"`
	LoanTermMonths int              `json:"loanTermMonths"`
	Documents      []DocumentRecord `json:"documents"`
	Assets         []Asset          `json:"assets"`
	CreditScore    int              `json:"creditScore"`
}

// TotalMonthlyDebt sums the monthly payments on all reported debts.
func (l *LoanFacts) TotalMonthlyDebt() float64 {
	total := 0.0
	for _, d := range l.Debts {
		total += d.MonthlyPayment
	}
	return total
}

// TotalLiquidAssets sums the cash-or-market value of all reported assets.
func (l *LoanFacts) TotalLiquidAssets() float64 {
	total := 0.0
	for _, a := range l.Assets {
		total += a.CashOrMarketValue
	}
	return total
}

// HasDocument reports whether a document of the given type is on file.
func (l *LoanFacts) HasDocument(t DocumentType) bool {
	for _, d := range l.Documents {
		if d.Type == t {
			return true
		}
	}
	return false
}

// DownPaymentPercent derives the down payment share from the purchase terms.
// Returns 0 when the purchase price is absent.
func (l *LoanFacts) DownPaymentPercent() float64 {
	if l.Property.PurchasePrice <= 0 {
		return 0
	}
	down := l.Property.PurchasePrice - l.Property.LoanAmount
	if down < 0 {
		down = 0
	}
	return down / l.Property.PurchasePrice * 100
}

// Ratios is the output of the ratio calculator. DTI and LTV are percentages
// rounded to two decimals; reserves is expressed in months of housing expense.
type Ratios struct {
	DTI            float64 `json:"dti"`
	LTV            float64 `json:"ltv"`
	ReservesMonths float64 `json:"reservesMonths"`
}
