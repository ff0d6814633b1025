// Package validation validates incoming loan application payloads against a
// JSON schema before any evaluator sees them.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

// LoanApplicationSchema is the contract for the loanApplication process
// variable. Fields absent here default to zero downstream; the evaluators
// treat zero denominators as degenerate inputs, so only structure and value
// ranges are enforced, not completeness.
const LoanApplicationSchema = `{
  "type": "object",
  "required": ["employment", "property", "loanType"],
  "properties": {
    "employment": {
      "type": "object",
      "required": ["status"],
      "properties": {
        "status": {
          "type": "string",
          "enum": ["employed", "self_employed", "retired", "unemployed"]
        },
        "monthlyIncome": {"type": "number", "minimum": 0},
        "yearsOnJob": {"type": "number", "minimum": 0}
      }
    },
    "debts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "monthlyPayment": {"type": "number", "minimum": 0}
        }
      }
    },
    "property": {
      "type": "object",
      "required": ["loanAmount"],
      "properties": {
        "loanAmount": {"type": "number", "minimum": 1},
        "purchasePrice": {"type": "number", "minimum": 0},
        "propertyType": {"type": "string"}
      }
    },
    "loanType": {
      "type": "string",
      "enum": ["conventional", "fha", "va", "jumbo"]
    },
    "loanTermMonths": {"type": "integer", "minimum": 0, "maximum": 480},
    "documents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {
            "type": "string",
            "enum": ["drivers_license", "pay_stub", "w2", "bank_statement", "tax_return"]
          }
        }
      }
    },
    "assets": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "cashOrMarketValue": {"type": "number", "minimum": 0}
        }
      }
    },
    "creditScore": {"type": "integer", "minimum": 0, "maximum": 900}
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks documents against a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewLoanApplicationValidator compiles the loan application schema.
func NewLoanApplicationValidator() (*Validator, error) {
	return NewValidator(LoanApplicationSchema)
}

// NewValidator compiles an arbitrary JSON schema string.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a decoded document against the schema.
func (v *Validator) Validate(document map[string]interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	return convertResult(result), nil
}

// ValidateJSON checks a raw JSON payload against the schema.
func (v *Validator) ValidateJSON(payload []byte) (*ValidationResult, error) {
	if !json.Valid(payload) {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "payload is not valid JSON",
				Code:    "invalid_json",
			}},
		}, nil
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	return convertResult(result), nil
}

func convertResult(result *gojsonschema.Result) *ValidationResult {
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	phonePattern := regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	return phonePattern.MatchString(phone)
}
