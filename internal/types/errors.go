package types

import "errors"

// Sentinel errors for parcelforge operations.
var (
	// ErrEmptyFilter indicates a nil or childless root condition tree.
	ErrEmptyFilter = errors.New("filter expression is empty")

	// ErrEmptyGroup indicates a nested group with no children.
	ErrEmptyGroup = errors.New("filter group has no children")

	// ErrMalformedCondition indicates an operator/value mismatch in a leaf.
	ErrMalformedCondition = errors.New("malformed filter condition")

	// ErrUnknownOperator indicates an operator name outside the closed set.
	ErrUnknownOperator = errors.New("unknown filter operator")

	// ErrFilterTooDeep indicates group nesting beyond MaxNestingDepth.
	ErrFilterTooDeep = errors.New("filter nesting exceeds maximum depth")

	// ErrTooManyConditions indicates a tree with more than MaxConditions leaves.
	ErrTooManyConditions = errors.New("filter has too many conditions")

	// ErrTooManyInValues indicates an IN operator exceeding MaxInValues.
	ErrTooManyInValues = errors.New("IN operator has too many values")

	// ErrRenderFailed indicates the template renderer could not produce a record.
	ErrRenderFailed = errors.New("template rendering failed")

	// ErrSchemaInvalid indicates a target schema document that cannot be used.
	ErrSchemaInvalid = errors.New("invalid target schema")
)
