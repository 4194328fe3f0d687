// Package specs implements the validation and durable-storage engine for
// parameter spec records.
//
// Service.Add receives a raw string-keyed mapping (as decoded from JSON or
// MCP tool arguments), normalizes it, and enforces the business rules in a
// fixed order:
//
//  1. All seven fields present (tool_name, parameter_name, usl, lsl, ucl,
//     lcl, cl)
//  2. String fields non-empty and at most 100 characters after trimming
//  3. Numeric fields finite, rounded half-up to three decimals
//  4. Strict ordering LSL < LCL < CL < UCL < USL on the rounded values
//  5. (tool_name, parameter_name) unique case-insensitively
//
// The first failing check wins; extra keys are discarded. On success exactly
// one row is appended to the store, and on any failure nothing is written.
// The uniqueness check and the append run under a single mutex so concurrent
// adds serialize correctly within the process.
//
// Failures surface as *ValidationError (field-level problems and the
// ordering invariant) or ErrDuplicateSpec; both carry the exact messages the
// adapters return to clients. Store I/O faults are wrapped and propagate
// unchanged.
package specs
