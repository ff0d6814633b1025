// internal/underwriting/rules/facts.go

// Package rules implements the declarative guideline engine: a knowledge base
// of versioned agency rules evaluated against a typed fact set. Rules fire on
// AND semantics over their conditions; a missing fact never fires a clause
// and never errors.
package rules

import (
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
)

// ValueKind discriminates the typed fact value variants.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
	KindList
)

// FactValue is a typed value pulled from the fact set. Conditions compare
// against it with kind-aware operator dispatch instead of reflection.
type FactValue struct {
	Kind ValueKind
	Num  float64
	Text string
	List []string
}

func numberValue(n float64) FactValue { return FactValue{Kind: KindNumber, Num: n} }
func textValue(s string) FactValue    { return FactValue{Kind: KindText, Text: s} }
func listValue(l []string) FactValue  { return FactValue{Kind: KindList, List: l} }

// FactSet is the strongly typed snapshot a rule evaluation runs against.
// Ratios are computed once by the caller and carried alongside the raw facts.
type FactSet struct {
	Loan   models.LoanFacts
	Ratios models.Ratios
}

// NewFactSet snapshots the loan and derives ratios with the given calculator.
func NewFactSet(loan models.LoanFacts, calc *ratios.Calculator) *FactSet {
	return &FactSet{
		Loan:   loan,
		Ratios: calc.Compute(&loan),
	}
}

type accessor func(*FactSet) FactValue

// fieldAccessors is the enum-keyed dispatch table built once at package load.
// A condition naming a field outside this table evaluates to false.
var fieldAccessors = map[models.FactField]accessor{
	models.FieldCreditScore: func(f *FactSet) FactValue {
		return numberValue(float64(f.Loan.CreditScore))
	},
	models.FieldMonthlyIncome: func(f *FactSet) FactValue {
		return numberValue(f.Loan.Employment.MonthlyIncome)
	},
	models.FieldEmploymentStatus: func(f *FactSet) FactValue {
		return textValue(string(f.Loan.Employment.Status))
	},
	models.FieldYearsOnJob: func(f *FactSet) FactValue {
		return numberValue(f.Loan.Employment.YearsOnJob)
	},
	models.FieldLoanAmount: func(f *FactSet) FactValue {
		return numberValue(f.Loan.Property.LoanAmount)
	},
	models.FieldPurchasePrice: func(f *FactSet) FactValue {
		return numberValue(f.Loan.Property.PurchasePrice)
	},
	models.FieldPropertyType: func(f *FactSet) FactValue {
		return textValue(f.Loan.Property.PropertyType)
	},
	models.FieldLoanType: func(f *FactSet) FactValue {
		return textValue(string(f.Loan.LoanType))
	},
	models.FieldLoanTermMonths: func(f *FactSet) FactValue {
		return numberValue(float64(f.Loan.LoanTermMonths))
	},
	models.FieldDocumentTypes: func(f *FactSet) FactValue {
		types := make([]string, 0, len(f.Loan.Documents))
		for _, d := range f.Loan.Documents {
			types = append(types, string(d.Type))
		}
		return listValue(types)
	},
	models.FieldDTI: func(f *FactSet) FactValue {
		return numberValue(f.Ratios.DTI)
	},
	models.FieldLTV: func(f *FactSet) FactValue {
		return numberValue(f.Ratios.LTV)
	},
	models.FieldReservesMonths: func(f *FactSet) FactValue {
		return numberValue(f.Ratios.ReservesMonths)
	},
}

// lookup resolves a field to its value. ok is false for unknown fields.
func (f *FactSet) lookup(field models.FactField) (FactValue, bool) {
	acc, ok := fieldAccessors[field]
	if !ok {
		return FactValue{}, false
	}
	return acc(f), true
}
