// internal/underwriting/aus/dual.go
package aus

import (
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

// Runner evaluates both agencies against a shared ratio snapshot.
type Runner struct {
	ratios *ratios.Calculator
}

// NewRunner builds a dual-AUS runner over the given ratio calculator.
func NewRunner(rc *ratios.Calculator) *Runner {
	return &Runner{ratios: rc}
}

// RunDual computes ratios once, feeds both simulators independently, and
// reconciles their terminal statuses into a recommendation.
func (r *Runner) RunDual(facts *models.LoanFacts, creditScore int) models.DualAUSResponse {
	shared := r.ratios.Compute(facts)

	du := RunDU(shared, creditScore)
	lpa := RunLPA(shared, creditScore)

	return models.DualAUSResponse{
		DU:             du,
		LPA:            lpa,
		Recommendation: Reconcile(du.Status, lpa.Status),
	}
}

// Reconcile derives the recommendation purely from the two terminal
// statuses; it never re-derives ratios or re-reads findings.
func Reconcile(duStatus, lpaStatus string) string {
	duPassed := duStatus == models.DUApproveEligible
	lpaPassed := lpaStatus == models.LPAAccept

	switch {
	case duPassed && lpaPassed:
		return "Both Approved"
	case duPassed:
		return "DU Approved"
	case lpaPassed:
		return "LPA Accepted"
	default:
		return "Manual Underwrite Required"
	}
}
