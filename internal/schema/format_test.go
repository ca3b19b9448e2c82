package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatErrors_Valid(t *testing.T) {
	out := FormatErrors(ValidationResult{Valid: true})
	assert.Equal(t, "Validation passed with no errors.", out)
}

func TestFormatErrors_Layout(t *testing.T) {
	result := ValidationResult{
		Errors: []ValidationError{
			{
				Path:     "recipient_name",
				Message:  "required field is missing",
				Expected: "required field",
				Actual:   "absent",
				Rule:     "required",
			},
			{
				Path:     "weight_kg",
				Message:  "value is above the maximum (75 > 70)",
				Expected: "value <= 70",
				Actual:   "75",
				Rule:     "maximum",
			},
		},
	}

	expected := "Validation failed with 2 error(s):\n" +
		"\n" +
		"Error 1: recipient_name\n" +
		"  Expected: required field\n" +
		"  Got: absent\n" +
		"  Rule: required\n" +
		"\n" +
		"Error 2: weight_kg\n" +
		"  Expected: value <= 70\n" +
		"  Got: 75\n" +
		"  Rule: maximum\n"

	assert.Equal(t, expected, FormatErrors(result))
}

func TestFormatErrors_Deterministic(t *testing.T) {
	payload := map[string]any{"service_code": "OVERNIGHT"}
	s := shipmentSchema()

	first := FormatErrors(Validate(payload, s))
	second := FormatErrors(Validate(payload, s))
	require.Equal(t, first, second, "repeated formatting must be byte-identical")
}
