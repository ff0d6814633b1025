// internal/workers/underwriting/evaluate-rules/handler_test.go
package evaluaterules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/rules"
)

func newDefaultHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), rules.NewDefaultKnowledgeBase(), logger.NewTestLogger(t))
}

func baseInput(credit int) *Input {
	return &Input{
		LoanID: "loan-300",
		LoanApplication: models.LoanFacts{
			Employment: models.Employment{
				Status:        models.EmploymentEmployed,
				MonthlyIncome: 9000,
			},
			Debts: []models.Debt{{MonthlyPayment: 500}},
			Property: models.Property{
				LoanAmount:    300000,
				PurchasePrice: 400000,
			},
			LoanType:       models.LoanTypeConventional,
			LoanTermMonths: 360,
			Assets:         []models.Asset{{CashOrMarketValue: 40000}},
			CreditScore:    credit,
		},
	}
}

func TestExecute_DeniedBelowCreditFloor(t *testing.T) {
	h := newDefaultHandler(t)

	out, err := h.Execute(context.Background(), baseInput(580))
	require.NoError(t, err)

	assert.True(t, out.Denied)
	assert.NotEmpty(t, out.DenyReason)
	assert.Equal(t, rules.DefaultGuidelineVersion, out.GuidelineVersion)
}

func TestExecute_PricingTierAndDocuments(t *testing.T) {
	h := newDefaultHandler(t)

	out, err := h.Execute(context.Background(), baseInput(720))
	require.NoError(t, err)

	assert.False(t, out.Denied)
	// credit 720 lands in the 700-759 tier: no delta
	assert.Equal(t, 0.0, out.RateAdjustment)
	assert.NotEmpty(t, out.RateTier)

	// LTV 75 on conventional: no PMI document required
	assert.Empty(t, out.RequiredDocuments)
}

func TestExecute_SelfEmployedRequiresTaxReturns(t *testing.T) {
	h := newDefaultHandler(t)

	input := baseInput(740)
	input.LoanApplication.Employment.Status = models.EmploymentSelfEmployed

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, out.RequiredDocuments, string(models.DocTaxReturn))
}

func TestExecute_RiskFlagsOnHighDTI(t *testing.T) {
	h := newDefaultHandler(t)

	input := baseInput(720)
	input.LoanApplication.Employment.MonthlyIncome = 4800

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, out.RiskFlags)
}

func TestExecute_TopTierRateDiscount(t *testing.T) {
	h := newDefaultHandler(t)

	out, err := h.Execute(context.Background(), baseInput(780))
	require.NoError(t, err)
	assert.Equal(t, -0.25, out.RateAdjustment)
}

func TestExecute_CustomKnowledgeBase(t *testing.T) {
	kb := rules.NewKnowledgeBase("test-2026.1")
	require.NoError(t, kb.AddRule(models.Rule{
		ID:          "jumbo-deny",
		GuidelineID: "house",
		Name:        "no jumbo loans",
		Conditions: []models.RuleCondition{
			{Field: models.FieldLoanType, Operator: models.OpEqual, Value: "jumbo"},
		},
		Action:   models.RuleAction{Type: models.ActionDeny, Reason: "jumbo loans are not offered"},
		Priority: 10,
	}))
	kb.Seal()

	h := NewHandler(LoadConfig(), kb, logger.NewTestLogger(t))

	input := baseInput(760)
	input.LoanApplication.LoanType = models.LoanTypeJumbo

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, out.Denied)
	assert.Equal(t, "jumbo loans are not offered", out.DenyReason)
	assert.Equal(t, "test-2026.1", out.GuidelineVersion)
}
