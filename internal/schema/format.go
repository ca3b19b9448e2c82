// internal/schema/format.go
package schema

import (
	"fmt"
	"strings"
)

// FormatErrors renders a validation result as a numbered, deterministic
// report: one block per error, stable field order, byte-identical across
// repeated calls on the same result. The correction loop embeds this output
// verbatim in repair prompts, so stability doubles as prompt idempotence.
func FormatErrors(result ValidationResult) string {
	if result.Valid {
		return "Validation passed with no errors."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation failed with %d error(s):\n", len(result.Errors))

	for i, e := range result.Errors {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Error %d: %s\n", i+1, e.Path)
		fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		fmt.Fprintf(&b, "  Got: %s\n", e.Actual)
		fmt.Fprintf(&b, "  Rule: %s\n", e.Rule)
	}

	return b.String()
}
