// internal/schema/validate.go
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

/*
 * Rendered-record validation.
 *
 * Validates a nested record against a Schema in one pass, collecting every
 * violation rather than stopping at the first: the self-correction loop
 * needs the complete batch to drive one repair round instead of many.
 *
 * Each ValidationError carries enough context (path, expected, actual, rule)
 * to be rendered straight into a repair prompt without the caller touching
 * the schema again.
 *
 * Union handling: a oneOf failure reports one violation at the union's
 * governing path instead of fanning out per-alternative noise. Which
 * alternative "should" have matched is unknowable here; the count of
 * matching alternatives is the actionable fact.
 *
 * Type mismatches prune the subtree: once a value is the wrong shape, its
 * nested constraints would only produce cascade errors that drown the root
 * cause in the repair prompt.
 */

// ValidationError is one schema-constraint failure on one field path.
type ValidationError struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Rule     string `json:"rule"`
}

// ValidationResult is the outcome of validating one rendered record.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// Validate checks value against s and returns every violation found.
func Validate(value any, s *Schema) ValidationResult {
	var errs []ValidationError
	walk(value, s, "", &errs)
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// walk validates one value position. path is "" at the root.
func walk(value any, s *Schema, path string, errs *[]ValidationError) {
	if s == nil {
		return
	}

	// Union governor: exactly one alternative must match. Alternatives are
	// validated in isolation; their internal errors are deliberately not
	// surfaced (see package comment).
	if len(s.OneOf) > 0 {
		matched := 0
		for _, alt := range s.OneOf {
			if r := Validate(value, alt); r.Valid {
				matched++
			}
		}
		if matched != 1 {
			*errs = append(*errs, ValidationError{
				Path:     displayPath(path),
				Message:  fmt.Sprintf("value must match exactly one of %d alternative shapes", len(s.OneOf)),
				Expected: fmt.Sprintf("exactly one of %d alternative shapes to match", len(s.OneOf)),
				Actual:   fmt.Sprintf("matched %d of %d alternatives", matched, len(s.OneOf)),
				Rule:     "oneOf",
			})
		}
		return
	}

	if value == nil {
		if s.Type != "" && s.Type != "null" {
			*errs = append(*errs, ValidationError{
				Path:     displayPath(path),
				Message:  fmt.Sprintf("expected %s, got null", s.Type),
				Expected: "type '" + s.Type + "'",
				Actual:   "null",
				Rule:     "type",
			})
		}
		return
	}

	if s.Type != "" && !hasType(value, s.Type) {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("expected %s, got %s", s.Type, typeName(value)),
			Expected: "type '" + s.Type + "'",
			Actual:   describeValue(value),
			Rule:     "type",
		})
		return
	}

	if len(s.Enum) > 0 && !enumContains(s.Enum, value) {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  "value is not one of the allowed values",
			Expected: "one of: " + enumList(s.Enum),
			Actual:   describeValue(value),
			Rule:     "enum",
		})
	}

	switch v := value.(type) {
	case string:
		validateString(v, s, path, errs)
	case map[string]any:
		validateObject(v, s, path, errs)
	case []any:
		validateArray(v, s, path, errs)
	default:
		if n, ok := asNumber(value); ok {
			validateNumber(n, s, path, errs)
		}
	}
}

func validateString(v string, s *Schema, path string, errs *[]ValidationError) {
	length := utf8.RuneCountInString(v)

	if s.MinLength != nil && length < *s.MinLength {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("string is too short (%d < %d)", length, *s.MinLength),
			Expected: fmt.Sprintf("string with at least %d character(s)", *s.MinLength),
			Actual:   describeValue(v),
			Rule:     "minLength",
		})
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("string is too long (%d > %d)", length, *s.MaxLength),
			Expected: fmt.Sprintf("string with at most %d character(s)", *s.MaxLength),
			Actual:   describeValue(v),
			Rule:     "maxLength",
		})
	}
	if !s.matchesPattern(v) {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  "string does not match required pattern",
			Expected: "string matching pattern '" + s.Pattern + "'",
			Actual:   describeValue(v),
			Rule:     "pattern",
		})
	}
}

func validateNumber(n float64, s *Schema, path string, errs *[]ValidationError) {
	if s.Minimum != nil && n < *s.Minimum {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("value is below the minimum (%s < %s)", formatNumber(n), formatNumber(*s.Minimum)),
			Expected: "value >= " + formatNumber(*s.Minimum),
			Actual:   formatNumber(n),
			Rule:     "minimum",
		})
	}
	if s.Maximum != nil && n > *s.Maximum {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("value is above the maximum (%s > %s)", formatNumber(n), formatNumber(*s.Maximum)),
			Expected: "value <= " + formatNumber(*s.Maximum),
			Actual:   formatNumber(n),
			Rule:     "maximum",
		})
	}
}

func validateObject(v map[string]any, s *Schema, path string, errs *[]ValidationError) {
	for _, name := range s.Required {
		if _, ok := v[name]; !ok {
			*errs = append(*errs, ValidationError{
				Path:     displayPath(joinKey(path, name)),
				Message:  "required field is missing",
				Expected: "required field",
				Actual:   "absent",
				Rule:     "required",
			})
		}
	}

	// Deterministic property order keeps FormatErrors byte-stable.
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if child, ok := v[name]; ok {
			walk(child, s.Properties[name], joinKey(path, name), errs)
		}
	}
}

func validateArray(v []any, s *Schema, path string, errs *[]ValidationError) {
	if s.MinItems != nil && len(v) < *s.MinItems {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("array has too few items (%d < %d)", len(v), *s.MinItems),
			Expected: fmt.Sprintf("array with at least %d item(s)", *s.MinItems),
			Actual:   describeValue(v),
			Rule:     "minItems",
		})
	}
	if s.MaxItems != nil && len(v) > *s.MaxItems {
		*errs = append(*errs, ValidationError{
			Path:     displayPath(path),
			Message:  fmt.Sprintf("array has too many items (%d > %d)", len(v), *s.MaxItems),
			Expected: fmt.Sprintf("array with at most %d item(s)", *s.MaxItems),
			Actual:   describeValue(v),
			Rule:     "maxItems",
		})
	}
	if s.Items != nil {
		for i, elem := range v {
			walk(elem, s.Items, fmt.Sprintf("%s[%d]", path, i), errs)
		}
	}
}

// joinKey appends an object key to a dotted path.
func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// displayPath renders the root path as "(root)".
func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// hasType reports whether value's JSON kind matches the schema type name.
func hasType(value any, typ string) bool {
	switch typ {
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := asNumber(value)
		return ok
	case "integer":
		n, ok := asNumber(value)
		return ok && n == float64(int64(n))
	case "null":
		return value == nil
	default:
		return false
	}
}

// typeName names value's JSON kind for messages.
func typeName(value any) string {
	switch value.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		if _, ok := asNumber(value); ok {
			return "number"
		}
		return fmt.Sprintf("%T", value)
	}
}

// asNumber converts JSON-decoded and native numeric kinds to float64.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// enumContains checks membership with numeric tolerance so 5 matches 5.0.
func enumContains(allowed []any, value any) bool {
	for _, a := range allowed {
		if na, oka := asNumber(a); oka {
			if nv, okv := asNumber(value); okv && na == nv {
				return true
			}
			continue
		}
		if a == value {
			return true
		}
	}
	return false
}

// enumList renders allowed values in declaration order for messages.
func enumList(allowed []any) string {
	parts := make([]string, 0, len(allowed))
	for _, a := range allowed {
		parts = append(parts, describeValue(a))
	}
	return strings.Join(parts, ", ")
}

// describeValue renders a value for error output. Deterministic: object keys
// are sorted, strings are quoted, numbers avoid exponent noise.
func describeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "object with keys [" + strings.Join(keys, ", ") + "]"
	case []any:
		return fmt.Sprintf("array with %d item(s)", len(v))
	default:
		if n, ok := asNumber(value); ok {
			return formatNumber(n)
		}
		return fmt.Sprint(value)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
