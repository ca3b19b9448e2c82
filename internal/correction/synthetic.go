// internal/correction/synthetic.go
package correction

import (
	"strings"

	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

// SyntheticRecord derives a minimal sample record from a target schema:
// every required field populated with a minimal value of its declared type.
// Used when the caller supplies no sample record for render testing.
func SyntheticRecord(s *schema.Schema) types.Record {
	if rec, ok := syntheticValue(s).(map[string]any); ok {
		return rec
	}
	return types.Record{}
}

// syntheticValue builds the smallest value satisfying s's own constraints.
// Optional object properties are omitted; the point is the minimal record
// that exercises the template, not an exhaustive one.
func syntheticValue(s *schema.Schema) any {
	if s == nil {
		return nil
	}
	if len(s.OneOf) > 0 {
		return syntheticValue(s.OneOf[0])
	}
	if len(s.Enum) > 0 {
		return s.Enum[0]
	}

	switch s.Type {
	case "object":
		obj := map[string]any{}
		for _, name := range s.Required {
			obj[name] = syntheticValue(s.Properties[name])
		}
		return obj

	case "array":
		n := 1
		if s.MinItems != nil {
			n = *s.MinItems
		}
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			arr = append(arr, syntheticValue(s.Items))
		}
		return arr

	case "string":
		n := 1
		if s.MinLength != nil && *s.MinLength > n {
			n = *s.MinLength
		}
		return strings.Repeat("x", n)

	case "number", "integer":
		if s.Minimum != nil {
			return *s.Minimum
		}
		return float64(0)

	case "boolean":
		return false

	default:
		return nil
	}
}
