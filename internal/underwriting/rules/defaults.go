// internal/underwriting/rules/defaults.go
package rules

import "mortgage-workers/internal/models"

// DefaultGuidelineVersion tags the built-in rule set compiled into the
// binary. The Postgres store supersedes it when reachable at startup.
const DefaultGuidelineVersion = "builtin-2025.2"

// NewDefaultKnowledgeBase builds the baseline agency guideline set. Rate
// tiers are disjoint by construction; priorities order them anyway so a
// misconfigured overlap resolves deterministically.
func NewDefaultKnowledgeBase() *KnowledgeBase {
	kb := NewKnowledgeBase(DefaultGuidelineVersion)

	defaults := []models.Rule{
		{
			ID:          "cr-min-620",
			GuidelineID: "credit",
			Name:        "Minimum representative credit score",
			Conditions: []models.RuleCondition{
				{Field: models.FieldCreditScore, Operator: models.OpLess, Value: 620.0},
				{Field: models.FieldCreditScore, Operator: models.OpGreater, Value: 0.0},
			},
			Action: models.RuleAction{
				Type:   models.ActionDeny,
				Reason: "credit score below program minimum of 620",
			},
			Priority: 100,
		},
		{
			ID:          "cr-tier-760",
			GuidelineID: "pricing",
			Name:        "Top credit tier pricing",
			Conditions: []models.RuleCondition{
				{Field: models.FieldCreditScore, Operator: models.OpGreaterEqual, Value: 760.0},
			},
			Action: models.RuleAction{
				Type:      models.ActionAdjustRate,
				RateDelta: -0.25,
				Tier:      "760+",
			},
			Priority: 40,
		},
		{
			ID:          "cr-tier-700",
			GuidelineID: "pricing",
			Name:        "Mid credit tier pricing",
			Conditions: []models.RuleCondition{
				{Field: models.FieldCreditScore, Operator: models.OpGreaterEqual, Value: 700.0},
				{Field: models.FieldCreditScore, Operator: models.OpLess, Value: 760.0},
			},
			Action: models.RuleAction{
				Type:      models.ActionAdjustRate,
				RateDelta: 0,
				Tier:      "700-759",
			},
			Priority: 30,
		},
		{
			ID:          "cr-tier-620",
			GuidelineID: "pricing",
			Name:        "Entry credit tier pricing",
			Conditions: []models.RuleCondition{
				{Field: models.FieldCreditScore, Operator: models.OpGreaterEqual, Value: 620.0},
				{Field: models.FieldCreditScore, Operator: models.OpLess, Value: 700.0},
			},
			Action: models.RuleAction{
				Type:      models.ActionAdjustRate,
				RateDelta: 0.5,
				Tier:      "620-699",
			},
			Priority: 20,
		},
		{
			ID:          "dti-flag-50",
			GuidelineID: "capacity",
			Name:        "High debt-to-income flag",
			Conditions: []models.RuleCondition{
				{Field: models.FieldDTI, Operator: models.OpGreater, Value: 50.0},
			},
			Action: models.RuleAction{
				Type: models.ActionFlagRisk,
				Risk: "debt-to-income above 50%",
			},
			Priority: 60,
		},
		{
			ID:          "ltv-pmi-80",
			GuidelineID: "collateral",
			Name:        "Private mortgage insurance required",
			Conditions: []models.RuleCondition{
				{Field: models.FieldLTV, Operator: models.OpGreater, Value: 80.0},
				{Field: models.FieldLoanType, Operator: models.OpEqual, Value: string(models.LoanTypeConventional)},
			},
			Action: models.RuleAction{
				Type:        models.ActionRequireDocument,
				Document:    models.DocBankStatement,
				Description: "PMI certificate and funds-to-close verification",
			},
			Priority: 50,
		},
		{
			ID:          "se-tax-returns",
			GuidelineID: "income",
			Name:        "Self-employed income documentation",
			Conditions: []models.RuleCondition{
				{Field: models.FieldEmploymentStatus, Operator: models.OpEqual, Value: string(models.EmploymentSelfEmployed)},
			},
			Action: models.RuleAction{
				Type:        models.ActionRequireDocument,
				Document:    models.DocTaxReturn,
				Description: "two years of personal and business tax returns",
			},
			Priority: 50,
		},
		{
			ID:          "res-low-2",
			GuidelineID: "reserves",
			Name:        "Thin reserves flag",
			Conditions: []models.RuleCondition{
				{Field: models.FieldReservesMonths, Operator: models.OpLess, Value: 2.0},
				{Field: models.FieldLTV, Operator: models.OpGreater, Value: 90.0},
			},
			Action: models.RuleAction{
				Type: models.ActionFlagRisk,
				Risk: "under two months reserves on a high-LTV loan",
			},
			Priority: 45,
		},
	}

	for _, r := range defaults {
		// the built-in set is validated by tests; AddRule cannot fail here
		_ = kb.AddRule(r)
	}
	kb.Seal()
	return kb
}
