// internal/underwriting/aus/du.go

// Package aus simulates two automated underwriting systems with independent
// threshold tables: a DU-style engine and an LPA-style engine. The two are
// deliberately asymmetric; their divergences mirror the agencies' published
// guidelines and must not be unified.
package aus

import (
	"fmt"

	"mortgage-workers/internal/models"
)

// duThresholds is the DU-style table. Kept separate from the LPA table so
// tuning one agency can never move the other.
var duThresholds = struct {
	minCredit     int
	maxDTI        float64
	maxLTV        float64
	referDTI      float64
	referCredit   int
	referReserves float64
}{
	minCredit:     620,
	maxDTI:        50,
	maxLTV:        97,
	referDTI:      45,
	referCredit:   660,
	referReserves: 2,
}

// RunDU produces the DU-style verdict. The loan starts at Approve/Eligible
// and is demoted by findings: any Fatal finding lands at Refer/Caution,
// non-fatal eligibility misses at Refer/Eligible.
func RunDU(ratios models.Ratios, creditScore int) models.AUSResult {
	result := models.AUSResult{
		Agency:         models.AgencyDU,
		Status:         models.DUApproveEligible,
		DTI:            ratios.DTI,
		LTV:            ratios.LTV,
		ReservesMonths: ratios.ReservesMonths,
	}

	if creditScore < duThresholds.minCredit {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-CR-01",
			Message: fmt.Sprintf("representative credit score %d below %d minimum", creditScore, duThresholds.minCredit),
			Level:   models.FindingFatal,
		})
		result.Status = models.DUReferCaution
	}

	if ratios.DTI > duThresholds.maxDTI {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-DTI-01",
			Message: fmt.Sprintf("debt-to-income %.2f%% exceeds %.0f%% cap", ratios.DTI, duThresholds.maxDTI),
			Level:   models.FindingFatal,
		})
		result.Status = models.DUReferCaution
	}

	if ratios.LTV > duThresholds.maxLTV {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-LTV-01",
			Message: fmt.Sprintf("loan-to-value %.2f%% exceeds %.0f%% cap", ratios.LTV, duThresholds.maxLTV),
			Level:   models.FindingFatal,
		})
		result.Status = models.DUReferCaution
	}

	// non-fatal eligibility demotions; a fatal Refer/Caution is never upgraded
	if ratios.DTI > duThresholds.referDTI && creditScore < duThresholds.referCredit {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-DTI-02",
			Message: fmt.Sprintf("debt-to-income %.2f%% above %.0f%% with credit score under %d", ratios.DTI, duThresholds.referDTI, duThresholds.referCredit),
			Level:   models.FindingWarning,
		})
		if result.Status == models.DUApproveEligible {
			result.Status = models.DUReferEligible
		}
	}

	if ratios.DTI > duThresholds.referDTI && ratios.ReservesMonths < duThresholds.referReserves {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-RES-01",
			Message: fmt.Sprintf("debt-to-income %.2f%% above %.0f%% with under %.0f months reserves", ratios.DTI, duThresholds.referDTI, duThresholds.referReserves),
			Level:   models.FindingWarning,
		})
		if result.Status == models.DUApproveEligible {
			result.Status = models.DUReferEligible
		}
	}

	// success is inferred from the final state, never asserted up front
	if result.Status == models.DUApproveEligible {
		result.Findings = append(result.Findings, models.AUSFinding{
			Code:    "DU-OK-01",
			Message: "casefile meets all eligibility requirements",
			Level:   models.FindingSuccess,
		})
	}

	return result
}
