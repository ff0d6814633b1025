// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Business rule and infrastructure error codes thrown by the underwriting workers.
const (
	ErrCodeLoanValidationFailed ErrorCode = "LOAN_VALIDATION_FAILED"
	ErrCodeInvalidLoanType      ErrorCode = "INVALID_LOAN_TYPE"
	ErrCodeCreditScoreMissing   ErrorCode = "CREDIT_SCORE_MISSING"

	ErrCodeRulesetNotFound   ErrorCode = "RULESET_NOT_FOUND"
	ErrCodeRulesetLoadFailed ErrorCode = "RULESET_LOAD_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeAuditIndexFailed              ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeLenderRosterLoadFailed ErrorCode = "LENDER_ROSTER_LOAD_FAILED"
	ErrCodeLenderRosterEmpty      ErrorCode = "LENDER_ROSTER_EMPTY"
	ErrCodeRateFetchFailed        ErrorCode = "RATE_FETCH_FAILED"
	ErrCodeRateFetchTimeout       ErrorCode = "RATE_FETCH_TIMEOUT"

	ErrCodeAUSEvaluationFailed ErrorCode = "AUS_EVALUATION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewLoanValidationFailedError creates a non-retryable loan validation error.
func NewLoanValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoanValidationFailed,
		Message:   "Loan application failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanTypeError creates a non-retryable loan type error.
func NewInvalidLoanTypeError(loanType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanType,
		Message:   "Unsupported loan type",
		Details:   fmt.Sprintf("loanType: %s", loanType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditScoreMissingError creates a non-retryable missing credit score error.
func NewCreditScoreMissingError(loanID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditScoreMissing,
		Message:   "Credit score is missing from the loan file",
		Details:   fmt.Sprintf("loanId: %s", loanID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRulesetNotFoundError creates a non-retryable ruleset error.
func NewRulesetNotFoundError(version string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRulesetNotFound,
		Message:   "No active rules found for guideline version",
		Details:   fmt.Sprintf("version: %s", version),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRulesetLoadFailedError creates a retryable ruleset load error.
func NewRulesetLoadFailedError(version string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRulesetLoadFailed,
		Message:   "Failed to load rules from store",
		Details:   fmt.Sprintf("version: %s, error: %s", version, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit indexing error.
func NewAuditIndexFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Failed to index decision record",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLenderRosterLoadFailedError creates a retryable roster load error.
func NewLenderRosterLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLenderRosterLoadFailed,
		Message:   "Failed to load lender roster",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLenderRosterEmptyError creates a non-retryable empty roster error.
func NewLenderRosterEmptyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLenderRosterEmpty,
		Message:   "No enabled lenders available for comparison",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateFetchFailedError creates a retryable rate fetch error.
func NewRateFetchFailedError(lenderID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateFetchFailed,
		Message:   "Lender pricing API error",
		Details:   fmt.Sprintf("lenderId: %s, error: %s", lenderID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateFetchTimeoutError creates a retryable rate fetch timeout error.
func NewRateFetchTimeoutError(lenderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateFetchTimeout,
		Message:   "Lender pricing API timeout",
		Details:   fmt.Sprintf("lenderId: %s", lenderID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAUSEvaluationFailedError creates a retryable AUS evaluation error.
func NewAUSEvaluationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAUSEvaluationFailed,
		Message:   "Automated underwriting evaluation error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeLoanValidationFailed:          "LOAN_VALIDATION_FAILED",
	ErrCodeInvalidLoanType:               "INVALID_LOAN_TYPE",
	ErrCodeCreditScoreMissing:            "CREDIT_SCORE_MISSING",
	ErrCodeRulesetNotFound:               "RULESET_NOT_FOUND",
	ErrCodeRulesetLoadFailed:             "RULESET_LOAD_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeAuditIndexFailed:              "AUDIT_INDEX_FAILED",
	ErrCodeLenderRosterLoadFailed:        "LENDER_ROSTER_LOAD_FAILED",
	ErrCodeLenderRosterEmpty:             "LENDER_ROSTER_EMPTY",
	ErrCodeRateFetchFailed:               "RATE_FETCH_FAILED",
	ErrCodeRateFetchTimeout:              "RATE_FETCH_TIMEOUT",
	ErrCodeAUSEvaluationFailed:           "AUS_EVALUATION_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRulesetLoadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeAuditIndexFailed,
		ErrCodeLenderRosterLoadFailed,
		ErrCodeRateFetchFailed,
		ErrCodeAUSEvaluationFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeRateFetchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LOAN") || strings.Contains(codeStr, "CREDIT"):
		return "LOAN_FILE"
	case strings.Contains(codeStr, "RULESET"):
		return "RULES"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "LENDER") || strings.Contains(codeStr, "RATE"):
		return "LENDER"
	case strings.Contains(codeStr, "AUS"):
		return "AUS"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
