package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApplication() map[string]interface{} {
	return map[string]interface{}{
		"employment": map[string]interface{}{
			"status":        "employed",
			"monthlyIncome": 8500.0,
			"yearsOnJob":    3.5,
		},
		"debts": []interface{}{
			map[string]interface{}{"monthlyPayment": 450.0},
		},
		"property": map[string]interface{}{
			"loanAmount":    320000.0,
			"purchasePrice": 400000.0,
			"propertyType":  "single_family",
		},
		"loanType":       "conventional",
		"loanTermMonths": 360,
		"documents": []interface{}{
			map[string]interface{}{"type": "w2"},
			map[string]interface{}{"type": "pay_stub"},
		},
		"assets": []interface{}{
			map[string]interface{}{"cashOrMarketValue": 40000.0},
		},
		"creditScore": 710,
	}
}

func TestValidate_ValidApplication(t *testing.T) {
	v, err := NewLoanApplicationValidator()
	require.NoError(t, err)

	result, err := v.Validate(validApplication())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MissingRequiredSections(t *testing.T) {
	v, err := NewLoanApplicationValidator()
	require.NoError(t, err)

	result, err := v.Validate(map[string]interface{}{"loanType": "fha"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.GetErrorMessages())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(app map[string]interface{})
	}{
		{"unknown loan type", func(app map[string]interface{}) {
			app["loanType"] = "balloon"
		}},
		{"unknown employment status", func(app map[string]interface{}) {
			app["employment"].(map[string]interface{})["status"] = "freelance"
		}},
		{"negative income", func(app map[string]interface{}) {
			app["employment"].(map[string]interface{})["monthlyIncome"] = -100.0
		}},
		{"zero loan amount", func(app map[string]interface{}) {
			app["property"].(map[string]interface{})["loanAmount"] = 0.0
		}},
		{"unknown document type", func(app map[string]interface{}) {
			app["documents"] = []interface{}{map[string]interface{}{"type": "passport"}}
		}},
		{"credit score out of range", func(app map[string]interface{}) {
			app["creditScore"] = 1200
		}},
	}

	v, err := NewLoanApplicationValidator()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApplication()
			tt.mutate(app)

			result, err := v.Validate(app)
			require.NoError(t, err)
			assert.False(t, result.Valid, "expected validation failure")
		})
	}
}

func TestValidateJSON_MalformedPayload(t *testing.T) {
	v, err := NewLoanApplicationValidator()
	require.NoError(t, err)

	result, err := v.ValidateJSON([]byte(`{"loanType": `))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "invalid_json", result.Errors[0].Code)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("borrower@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.True(t, ValidatePhone("+1 555 867 5309"))
	assert.False(t, ValidatePhone("123"))
}
