// ABOUTME: Validation error taxonomy for the parameter spec engine
// ABOUTME: Carries the exact client-facing messages the adapters return verbatim

package specs

import "errors"

// Code identifies a class of validation failure.
type Code string

// Validation failure classes, in pipeline order.
const (
	CodeMissingField        Code = "missing_field"
	CodeEmptyField          Code = "empty_field"
	CodeFieldTooLong        Code = "field_too_long"
	CodeInvalidNumber       Code = "invalid_number"
	CodeInvalidRelationship Code = "invalid_relationship"
)

// ValidationError is a caller-input error detected by the Add pipeline.
// The Error string is the wire-contract message adapters send to clients,
// hence the sentence casing.
type ValidationError struct {
	Code  Code
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeMissingField:
		return "Missing required field: " + e.Field
	case CodeEmptyField:
		return "Field cannot be empty: " + e.Field
	case CodeFieldTooLong:
		return "Field exceeds maximum length of 100: " + e.Field
	case CodeInvalidNumber:
		return "Invalid number format for field: " + e.Field
	case CodeInvalidRelationship:
		return "Invalid value relationship: LSL < LCL < CL < UCL < USL required"
	default:
		return "invalid request"
	}
}

// ErrDuplicateSpec is returned when the (tool_name, parameter_name) pair
// already exists, compared case-insensitively. The message is part of the
// wire contract.
var ErrDuplicateSpec = errors.New("Parameter spec already exists for this tool_name and parameter_name")
