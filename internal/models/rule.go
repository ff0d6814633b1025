// internal/models/rule.go
package models

// Operator is a comparison applied by a rule condition.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpIncludes     Operator = "includes"
)

// FactField names a value in the evaluation fact set. The rules engine builds
// an accessor per field at load time, so an unknown field simply never matches.
type FactField string

const (
	FieldCreditScore      FactField = "borrower.creditScore"
	FieldMonthlyIncome    FactField = "employment.monthlyIncome"
	FieldEmploymentStatus FactField = "employment.status"
	FieldYearsOnJob       FactField = "employment.yearsOnJob"
	FieldLoanAmount       FactField = "property.loanAmount"
	FieldPurchasePrice    FactField = "property.purchasePrice"
	FieldPropertyType     FactField = "property.propertyType"
	FieldLoanType         FactField = "loan.type"
	FieldLoanTermMonths   FactField = "loan.termMonths"
	FieldDocumentTypes    FactField = "documents.types"
	FieldDTI              FactField = "ratios.dti"
	FieldLTV              FactField = "ratios.ltv"
	FieldReservesMonths   FactField = "ratios.reservesMonths"
)

// RuleCondition is one clause of a rule; all clauses must hold for the rule
// to fire.
type RuleCondition struct {
	Field    FactField   `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

// ActionType tags the RuleAction variant.
type ActionType string

const (
	ActionRequireDocument ActionType = "REQUIRE_DOCUMENT"
	ActionAdjustRate      ActionType = "ADJUST_RATE"
	ActionFlagRisk        ActionType = "FLAG_RISK"
	ActionDeny            ActionType = "DENY"
)

// RuleAction is a tagged variant: exactly the fields for its Type are set.
// Consumers switch on Type; unknown types are a load-time error, not a
// runtime fallthrough.
type RuleAction struct {
	Type ActionType `json:"type"`

	// REQUIRE_DOCUMENT
	Document    DocumentType `json:"document,omitempty"`
	Description string       `json:"description,omitempty"`

	// ADJUST_RATE
	RateDelta float64 `json:"rateDelta,omitempty"`
	Tier      string  `json:"tier,omitempty"`

	// FLAG_RISK
	Risk string `json:"risk,omitempty"`

	// DENY
	Reason string `json:"reason,omitempty"`
}

// Rule is an immutable declarative guideline rule. Priority: higher numbers
// take precedence when same-tier actions conflict.
type Rule struct {
	ID          string          `json:"id"`
	GuidelineID string          `json:"guidelineId"`
	Name        string          `json:"name"`
	Conditions  []RuleCondition `json:"conditions"`
	Action      RuleAction      `json:"action"`
	Priority    int             `json:"priority"`
}
