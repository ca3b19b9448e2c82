// internal/correction/prompt.go
package correction

import (
	"fmt"
	"strings"
)

// SystemPrompt is the fixed instruction given to the repair collaborator.
// The "change only what is necessary" rule is load-bearing: it keeps the
// collaborator from rewriting clauses that already validate.
const SystemPrompt = `You are a mapping-template repair assistant for shipping payloads.
Your job is to fix validation errors in record-mapping templates.

RULES:
1. Only change what is necessary to fix the validation errors
2. Keep the existing template structure intact
3. Available template functions: truncate N, default VALUE, digits, zipcode, round N, upper
4. Apply default before other transformations to handle missing values
5. Return ONLY the corrected template in a single fenced code block
6. Do not add explanations outside the code block`

// BuildRepairPrompt assembles the user-facing repair request from the
// current template and the formatted violation batch. Deterministic for a
// given input pair so repeated repair requests are idempotent.
func BuildRepairPrompt(template, formattedErrors string) string {
	var b strings.Builder

	b.WriteString("Fix the following mapping template that failed target-schema validation.\n\n")
	b.WriteString(formattedErrors)
	b.WriteString("\n\nOriginal template:\n```\n")
	b.WriteString(template)
	b.WriteString("\n```\n\nReturn the corrected template:")

	return b.String()
}

// FixHint returns a repair suggestion for a violated rule, appended to
// prompts by callers that want rule-specific guidance.
func FixHint(rule string) string {
	switch rule {
	case "required":
		return "Map a source column to the field or supply a default value."
	case "type":
		return "Ensure the rendered value has the declared type; convert or quote as needed."
	case "minLength":
		return "The value is being truncated or left empty; check the source column or add a default."
	case "maxLength":
		return "Truncate the value; carrier fields have strict length limits."
	case "pattern":
		return "Reformat the value to match the expected pattern (check phone and postal code formatting)."
	case "minimum", "maximum":
		return "Clamp or convert the numeric value into the allowed range."
	case "enum":
		return "Use one of the allowed values; look up the correct service code."
	case "oneOf":
		return "The field must match exactly one of the alternative shapes; remove the extras."
	case "render":
		return "The template itself fails to render; fix the template syntax before the field mappings."
	default:
		return fmt.Sprintf("Review the mapping for rule %q.", rule)
	}
}
