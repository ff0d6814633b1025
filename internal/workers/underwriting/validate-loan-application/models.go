// internal/workers/underwriting/validate-loan-application/models.go
package validateloanapplication

import "mortgage-workers/internal/common/validation"

type Input struct {
	LoanID string `json:"loanId"`

	// LoanApplication stays a raw map so schema errors point at the
	// offending field instead of failing a struct decode.
	LoanApplication map[string]interface{} `json:"loanApplication"`
}

type Output struct {
	Valid            bool                         `json:"applicationValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors,omitempty"`
}
