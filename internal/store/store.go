// ABOUTME: Store interface and ParameterSpec entity for paramspec-gateway persistence
// ABOUTME: Defines the record shape, CSV column order, and the storage contract

package store

import (
	"context"
)

// CSV column order for the backing file. The header row and every data row
// follow this order exactly.
var Columns = []string{"tool_name", "parameter_name", "usl", "lsl", "ucl", "lcl", "cl"}

// ParameterSpec is an equipment-parameter specification record.
// String fields are stored trimmed; limits are stored rounded to three
// fractional digits.
type ParameterSpec struct {
	ToolName      string `json:"tool_name"`
	ParameterName string `json:"parameter_name"`
	USL           Limit  `json:"usl"`
	LSL           Limit  `json:"lsl"`
	UCL           Limit  `json:"ucl"`
	LCL           Limit  `json:"lcl"`
	CL            Limit  `json:"cl"`
}

// Store defines the persistence contract for parameter specs.
//
// ReadAll returns every stored record in file order. A missing backing file
// is an empty store, not an error. Append writes exactly one record and does
// not re-validate; callers enforce the business invariants first.
type Store interface {
	ReadAll(ctx context.Context) ([]ParameterSpec, error)
	Append(ctx context.Context, spec ParameterSpec) error

	// Close releases any resources held by the store
	Close() error
}
