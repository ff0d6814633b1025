// internal/underwriting/decision/calculator_test.go
package decision

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

func fullyDocumented() []models.DocumentRecord {
	return []models.DocumentRecord{
		{Type: models.DocDriversLicense},
		{Type: models.DocPayStub},
		{Type: models.DocW2},
		{Type: models.DocBankStatement},
	}
}

func cleanFacts() *models.LoanFacts {
	return &models.LoanFacts{
		Employment: models.Employment{
			Status:        models.EmploymentEmployed,
			MonthlyIncome: 12000,
		},
		Debts: []models.Debt{{MonthlyPayment: 300}},
		Property: models.Property{
			LoanAmount:    320000,
			PurchasePrice: 400000,
		},
		LoanType:       models.LoanTypeConventional,
		LoanTermMonths: 360,
		Documents:      fullyDocumented(),
		Assets:         []models.Asset{{CashOrMarketValue: 60000}},
		CreditScore:    740,
	}
}

func newTestCalculator() *Calculator {
	return NewCalculator(ratios.NewCalculator(7.0), nil)
}

func TestEvaluate_Approved(t *testing.T) {
	calc := newTestCalculator()
	eval := calc.Evaluate("loan-1", cleanFacts())

	assert.Equal(t, Approved, eval.Decision)
	assert.Empty(t, eval.Conditions)
	require.Len(t, eval.Notes, 1)
	assert.Contains(t, eval.Notes[0], "approved")
}

func TestEvaluate_RejectedOnHighDTI(t *testing.T) {
	calc := newTestCalculator()

	facts := cleanFacts()
	facts.Employment.MonthlyIncome = 3000
	facts.Debts = []models.Debt{{MonthlyPayment: 1500}}
	// 320k at 7% is ~2129/mo: DTI well above 55

	eval := calc.Evaluate("loan-2", facts)
	assert.Equal(t, Rejected, eval.Decision)
	assert.Greater(t, eval.DTI, 55.0)

	var found bool
	for _, note := range eval.Notes {
		if strings.Contains(note, "exceeds 55%") {
			found = true
		}
	}
	assert.True(t, found, "rejection note should name the 55%% DTI ceiling")

	// the overlapping DTI>50 condition from the ladder is preserved for audit
	require.NotEmpty(t, eval.Conditions)
	assert.Contains(t, eval.Conditions[0].Description, "above 50%")
}

func TestEvaluate_RejectedOnConventionalLTV(t *testing.T) {
	calc := newTestCalculator()

	facts := cleanFacts()
	facts.Property.LoanAmount = 388000 // LTV 97
	eval := calc.Evaluate("loan-3", facts)
	assert.Equal(t, Rejected, eval.Decision)

	// same LTV on an FHA loan is not a house rejection
	facts = cleanFacts()
	facts.Property.LoanAmount = 388000
	facts.LoanType = models.LoanTypeFHA
	eval = calc.Evaluate("loan-3b", facts)
	assert.Equal(t, Conditional, eval.Decision)
}

func TestEvaluate_ConditionalLadder(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.LoanFacts)
		wantDesc string
	}{
		{
			name: "dti between 43 and 50",
			mutate: func(f *models.LoanFacts) {
				f.Employment.MonthlyIncome = 5500
				f.Debts = []models.Debt{{MonthlyPayment: 350}}
			},
			wantDesc: "above 43%",
		},
		{
			name: "ltv above 90",
			mutate: func(f *models.LoanFacts) {
				f.Property.LoanAmount = 372000 // LTV 93
			},
			wantDesc: "above 90%",
		},
		{
			name: "pmi band on conventional",
			mutate: func(f *models.LoanFacts) {
				f.Property.LoanAmount = 340000 // LTV 85
			},
			wantDesc: "PMI required",
		},
		{
			name: "self-employed without tax returns",
			mutate: func(f *models.LoanFacts) {
				f.Employment.Status = models.EmploymentSelfEmployed
			},
			wantDesc: "tax returns",
		},
		{
			name: "low income",
			mutate: func(f *models.LoanFacts) {
				f.Employment.MonthlyIncome = 1500
				f.Property.LoanAmount = 80000
				f.Property.PurchasePrice = 100000
				f.Debts = nil
			},
			wantDesc: "below $2,000",
		},
		{
			name: "missing w2",
			mutate: func(f *models.LoanFacts) {
				f.Documents = []models.DocumentRecord{
					{Type: models.DocDriversLicense},
					{Type: models.DocPayStub},
					{Type: models.DocBankStatement},
				}
			},
			wantDesc: "W-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := newTestCalculator()
			facts := cleanFacts()
			tt.mutate(facts)

			eval := calc.Evaluate("loan-c", facts)
			assert.Equal(t, Conditional, eval.Decision)

			var found bool
			for _, cond := range eval.Conditions {
				assert.Equal(t, models.ConditionPending, cond.Status)
				assert.Equal(t, "loan-c", cond.LoanID)
				if strings.Contains(cond.Description, tt.wantDesc) {
					found = true
				}
			}
			assert.True(t, found, "expected a condition mentioning %q", tt.wantDesc)
		})
	}
}

func TestEvaluate_ConditionIDsUniqueWithinCall(t *testing.T) {
	// pin the clock to one millisecond: the sequence counter alone must
	// keep IDs distinct
	fixed := time.UnixMilli(1700000000000)
	calc := NewCalculator(ratios.NewCalculator(7.0), func() IDGenerator {
		return NewFixedClockIDs(fixed)
	})

	facts := cleanFacts()
	facts.Documents = nil // four missing-document conditions at once
	facts.Employment.Status = models.EmploymentSelfEmployed

	eval := calc.Evaluate("loan-ids", facts)
	require.GreaterOrEqual(t, len(eval.Conditions), 5)

	seen := make(map[string]bool)
	for _, cond := range eval.Conditions {
		assert.False(t, seen[cond.ID], "duplicate condition id %s", cond.ID)
		seen[cond.ID] = true
	}
}

func TestEvaluate_NotesOrderedAndReproducible(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	newCalc := func() *Calculator {
		return NewCalculator(ratios.NewCalculator(7.0), func() IDGenerator {
			return NewFixedClockIDs(fixed)
		})
	}

	facts := cleanFacts()
	facts.Documents = nil

	first := newCalc().Evaluate("loan-r", facts)
	second := newCalc().Evaluate("loan-r", facts)

	assert.Equal(t, first.Notes, second.Notes)
	assert.Equal(t, len(first.Conditions), len(second.Conditions))
	for i := range first.Conditions {
		assert.Equal(t, first.Conditions[i].Description, second.Conditions[i].Description)
	}
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDs()
	assert.NotEqual(t, gen.Next(), gen.Next())
}
