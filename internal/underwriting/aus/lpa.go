// internal/underwriting/aus/lpa.go
package aus

import (
	"fmt"

	"mortgage-workers/internal/models"
)

// lpaThresholds is the LPA-style table. The compensating-factor exception
// (strong reserves plus strong credit excusing a high DTI) exists only here;
// DU has no equivalent and must not grow one.
var lpaThresholds = struct {
	minCredit    int
	maxDTI       float64
	maxLTV       float64
	compReserves float64
	compCredit   int
	warnDTI      float64
	warnReserves float64
}{
	minCredit:    620,
	maxDTI:       50,
	maxLTV:       97,
	compReserves: 12,
	compCredit:   740,
	warnDTI:      43,
	warnReserves: 1,
}

// RunLPA produces the LPA-style verdict: Accept unless demoted to Caution.
func RunLPA(ratios models.Ratios, creditScore int) models.AUSResult {
	result := models.AUSResult{
		Agency:         models.AgencyLPA,
		Status:         models.LPAAccept,
		DTI:            ratios.DTI,
		LTV:            ratios.LTV,
		ReservesMonths: ratios.ReservesMonths,
	}

	if creditScore < lpaThresholds.minCredit {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "LPA-CR-01",
			Message: fmt.Sprintf("indicator score %d below %d minimum", creditScore, lpaThresholds.minCredit),
			Level:   models.FindingFatal,
		})
		result.Status = models.LPACaution
	}

	if ratios.LTV > lpaThresholds.maxLTV {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "LPA-LTV-01",
			Message: fmt.Sprintf("loan-to-value %.2f%% exceeds %.0f%% cap", ratios.LTV, lpaThresholds.maxLTV),
			Level:   models.FindingFatal,
		})
		result.Status = models.LPACaution
	}

	if ratios.DTI > lpaThresholds.maxDTI {
		compensated := ratios.ReservesMonths >= lpaThresholds.compReserves &&
			creditScore >= lpaThresholds.compCredit
		if compensated {
			result.Findings = append(result.Findings, models.AUSFinding{
				Code:    "LPA-DTI-02",
				Message: fmt.Sprintf("debt-to-income %.2f%% accepted on %.0f+ months reserves and %d+ indicator score", ratios.DTI, lpaThresholds.compReserves, lpaThresholds.compCredit),
				Level:   models.FindingInfo,
			})
		} else {
			result.Findings = append(result.Findings, models.AUSFinding{
				Code:    "LPA-DTI-01",
				Message: fmt.Sprintf("debt-to-income %.2f%% exceeds %.0f%% cap", ratios.DTI, lpaThresholds.maxDTI),
				Level:   models.FindingFatal,
			})
			result.Status = models.LPACaution
		}
	}

	// advisory only: flags thin reserves on an elevated DTI without demoting
	if ratios.DTI > lpaThresholds.warnDTI && ratios.ReservesMonths < lpaThresholds.warnReserves {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "LPA-RES-01",
			Message: fmt.Sprintf("debt-to-income %.2f%% above %.0f%% with under %.0f month reserves", ratios.DTI, lpaThresholds.warnDTI, lpaThresholds.warnReserves),
			Level:   models.FindingWarning,
		})
	}

	if result.Status == models.LPAAccept {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "LPA-OK-01",
			Message: "loan meets purchase eligibility requirements",
			Level:   models.FindingSuccess,
		})
	}

	return result
}
