// internal/schema/schema.go
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Target schema documents.
 *
 * A Schema is a nested constraint document in a JSON-Schema-like subset:
 * type, properties/required, items, string length bounds, numeric bounds,
 * item count bounds, enum, pattern, and oneOf unions. Documents load from
 * JSON or YAML; carrier payload schemas ship both ways.
 *
 * Load compiles every pattern up front and rejects invalid regexps, so
 * validation itself stays total: Validate never fails, it only reports.
 * The validator does not fetch or cache schemas - callers own the document.
 */

// Schema describes the constraints on one value position.
type Schema struct {
	Type       string             `json:"type,omitempty" yaml:"type,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	MinLength  *int               `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  *int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum    *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum    *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinItems   *int               `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems   *int               `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Enum       []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern    string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	OneOf      []*Schema          `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`

	compiledPattern *regexp.Regexp
}

var knownTypes = map[string]struct{}{
	"object": {}, "array": {}, "string": {}, "number": {},
	"integer": {}, "boolean": {}, "null": {},
}

// Load parses a schema document from JSON or YAML bytes and compiles it.
// Documents starting with '{' parse as JSON, everything else as YAML.
func Load(data []byte) (*Schema, error) {
	var s Schema
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrSchemaInvalid, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrSchemaInvalid, err)
		}
	}

	if err := s.compile("(root)"); err != nil {
		return nil, err
	}
	return &s, nil
}

// compile validates type names and compiles patterns recursively.
// Programmatically-built schemas get the same treatment lazily in Validate,
// minus the hard failure: a pattern that does not compile simply never
// matches a violation.
func (s *Schema) compile(path string) error {
	if s == nil {
		return nil
	}

	if s.Type != "" {
		if _, ok := knownTypes[s.Type]; !ok {
			return fmt.Errorf("%w: unknown type %q at %s", types.ErrSchemaInvalid, s.Type, path)
		}
	}

	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("%w: bad pattern at %s: %v", types.ErrSchemaInvalid, path, err)
		}
		s.compiledPattern = re
	}

	for name, prop := range s.Properties {
		if err := prop.compile(path + "." + name); err != nil {
			return err
		}
	}
	if err := s.Items.compile(path + "[]"); err != nil {
		return err
	}
	for i, alt := range s.OneOf {
		if err := alt.compile(fmt.Sprintf("%s.oneOf[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// matchesPattern reports whether value satisfies the schema's pattern.
// Returns true (no violation) when no pattern is set or it cannot compile.
func (s *Schema) matchesPattern(value string) bool {
	if s.Pattern == "" {
		return true
	}
	if s.compiledPattern == nil {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return true
		}
		s.compiledPattern = re
	}
	return s.compiledPattern.MatchString(value)
}
