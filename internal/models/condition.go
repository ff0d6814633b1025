// internal/models/condition.go
package models

import "time"

// ConditionType categorizes when a condition must be satisfied.
type ConditionType string

const (
	ConditionPriorToDoc   ConditionType = "prior_to_doc"
	ConditionPriorToClose ConditionType = "prior_to_close"
)

// ConditionStatus tracks a condition through its lifecycle. Conditions are
// created Pending; a reviewer clears them outside this engine.
type ConditionStatus string

const (
	ConditionPending ConditionStatus = "pending"
	ConditionCleared ConditionStatus = "cleared"
)

// Condition is a stipulation attached to a loan by rule evaluation.
type Condition struct {
	ID          string          `json:"id"`
	LoanID      string          `json:"loanId"`
	Type        ConditionType   `json:"type"`
	Description string          `json:"description"`
	Status      ConditionStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
