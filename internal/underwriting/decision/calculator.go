// internal/underwriting/decision/calculator.go

// Package decision implements the house underwriting path: a fixed ladder of
// threshold checks that generates conditions, followed by independent
// rejection thresholds. This is deliberately simpler than the generic rules
// engine; the ladder is part of the lender's credit policy, not operator data.
package decision

import (
	"fmt"
	"time"

	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

// Outcome is a terminal house-underwriting decision.
type Outcome string

const (
	Approved    Outcome = "approved"
	Conditional Outcome = "conditional"
	Rejected    Outcome = "rejected"
)

// Evaluation is the full result of one pass: decision, the ratios it was
// based on, generated conditions, and ordered human-readable notes. A
// rejected loan may still carry conditions; they are kept for audit.
type Evaluation struct {
	Decision   Outcome            `json:"decision"`
	DTI        float64            `json:"dti"`
	LTV        float64            `json:"ltv"`
	Conditions []models.Condition `json:"conditions"`
	Notes      []string           `json:"notes"`
}

// requiredDocuments is the fixed set every file must contain.
var requiredDocuments = []struct {
	docType models.DocumentType
	label   string
}{
	{models.DocDriversLicense, "driver's license"},
	{models.DocPayStub, "recent pay stub"},
	{models.DocW2, "W-2"},
	{models.DocBankStatement, "bank statement"},
}

// Calculator orchestrates the ratio calculator and the condition ladder.
type Calculator struct {
	ratios *ratios.Calculator
	newIDs IDFactory
	clock  func() time.Time
}

// NewCalculator builds a house calculator. A nil factory falls back to the
// timestamp+sequence generator.
func NewCalculator(rc *ratios.Calculator, newIDs IDFactory) *Calculator {
	if newIDs == nil {
		newIDs = NewTimestampIDs
	}
	return &Calculator{ratios: rc, newIDs: newIDs, clock: time.Now}
}

// Evaluate runs one pass over the loan. Not re-entrant per evaluation: each
// call computes ratios fresh, builds its own ID generator and returns a new
// result.
func (c *Calculator) Evaluate(loanID string, facts *models.LoanFacts) *Evaluation {
	r := c.ratios.Compute(facts)

	run := &evalRun{
		loanID: loanID,
		ids:    c.newIDs(),
		now:    c.clock(),
	}

	c.applyConditionLadder(run, facts, r)

	eval := &Evaluation{
		DTI:        r.DTI,
		LTV:        r.LTV,
		Conditions: run.conditions,
		Notes:      run.notes,
	}

	// Rejection thresholds run after the ladder but override it; the
	// conditions above stay on the result for audit.
	switch {
	case r.DTI > 55:
		eval.Decision = Rejected
		eval.Notes = append(eval.Notes, fmt.Sprintf("rejected: DTI %.2f%% exceeds 55%% ceiling", r.DTI))
	case r.LTV > 95 && facts.LoanType == models.LoanTypeConventional:
		eval.Decision = Rejected
		eval.Notes = append(eval.Notes, fmt.Sprintf("rejected: LTV %.2f%% exceeds 95%% conventional ceiling", r.LTV))
	case len(eval.Conditions) > 0:
		eval.Decision = Conditional
		eval.Notes = append(eval.Notes, fmt.Sprintf("conditional approval with %d outstanding conditions", len(eval.Conditions)))
	default:
		eval.Decision = Approved
		eval.Notes = append(eval.Notes, "approved: all ratios and documentation within policy")
	}

	if eval.Conditions == nil {
		eval.Conditions = []models.Condition{}
	}
	return eval
}

type evalRun struct {
	loanID     string
	ids        IDGenerator
	now        time.Time
	conditions []models.Condition
	notes      []string
}

func (r *evalRun) addCondition(condType models.ConditionType, description string) {
	r.conditions = append(r.conditions, models.Condition{
		ID:          r.ids.Next(),
		LoanID:      r.loanID,
		Type:        condType,
		Description: description,
		Status:      models.ConditionPending,
		CreatedAt:   r.now,
	})
	r.notes = append(r.notes, "condition: "+description)
}

// applyConditionLadder is the fixed house policy ladder. Order matters: the
// notes and condition lists must be reproducible for identical inputs.
func (c *Calculator) applyConditionLadder(run *evalRun, facts *models.LoanFacts, r models.Ratios) {
	switch {
	case r.DTI > 50:
		run.addCondition(models.ConditionPriorToClose,
			fmt.Sprintf("DTI %.2f%% above 50%%: letter of explanation and compensating factors required", r.DTI))
	case r.DTI > 43:
		run.addCondition(models.ConditionPriorToDoc,
			fmt.Sprintf("DTI %.2f%% above 43%%: additional income verification required", r.DTI))
	}

	switch {
	case r.LTV > 90:
		run.addCondition(models.ConditionPriorToClose,
			fmt.Sprintf("LTV %.2f%% above 90%%: full appraisal review required", r.LTV))
	case r.LTV > 80 && facts.LoanType == models.LoanTypeConventional:
		run.addCondition(models.ConditionPriorToClose,
			fmt.Sprintf("LTV %.2f%% above 80%% on conventional loan: PMI required", r.LTV))
	}

	if facts.Employment.Status == models.EmploymentSelfEmployed && !facts.HasDocument(models.DocTaxReturn) {
		run.addCondition(models.ConditionPriorToDoc,
			"self-employed borrower: two years of tax returns required")
	}

	if facts.Employment.MonthlyIncome < 2000 {
		run.addCondition(models.ConditionPriorToDoc,
			"stated monthly income below $2,000: income verification required")
	}

	for _, doc := range requiredDocuments {
		if !facts.HasDocument(doc.docType) {
			run.addCondition(models.ConditionPriorToDoc,
				fmt.Sprintf("missing required document: %s", doc.label))
		}
	}
}
