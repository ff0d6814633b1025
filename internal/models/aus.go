// internal/models/aus.go
package models

// Agency identifies an automated underwriting system.
type Agency string

const (
	AgencyDU  Agency = "DU"
	AgencyLPA Agency = "LPA"
)

// FindingLevel grades an AUS finding. A Fatal finding demotes the enclosing
// result to the agency's worst status.
type FindingLevel string

const (
	FindingSuccess FindingLevel = "success"
	FindingInfo    FindingLevel = "info"
	FindingWarning FindingLevel = "warning"
	FindingFatal   FindingLevel = "fatal"
)

// AUSFinding is a single message attached to an AUS result. Ordering is the
// evaluation order and must be preserved across serialization.
type AUSFinding struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Level   FindingLevel `json:"level"`
}

// DU (Desktop Underwriter style) statuses.
const (
	DUApproveEligible   = "Approve/Eligible"
	DUApproveIneligible = "Approve/Ineligible"
	DUReferEligible     = "Refer/Eligible"
	DUReferCaution      = "Refer/Caution"
)

// LPA (Loan Product Advisor style) statuses.
const (
	LPAAccept  = "Accept"
	LPACaution = "Caution"
)

// AUSResult is one agency's verdict for a loan.
type AUSResult struct {
	Agency         Agency       `json:"agency"`
	Status         string       `json:"status"`
	Findings       []AUSFinding `json:"findings"`
	DTI            float64      `json:"dti"`
	LTV            float64      `json:"ltv"`
	ReservesMonths float64      `json:"reservesMonths"`
}

// DualAUSResponse pairs both agency verdicts with a reconciled
// recommendation derived purely from the two terminal statuses.
type DualAUSResponse struct {
	DU             AUSResult `json:"du"`
	LPA            AUSResult `json:"lpa"`
	Recommendation string    `json:"recommendation"`
}
