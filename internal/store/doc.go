// Package store provides persistent storage for parameter specs as a
// headered CSV flat file.
//
// # Data Model
//
// A single entity, ParameterSpec, holds a tool name, a parameter name, and
// five limits (USL, LSL, UCL, LCL, CL). Limits use the Limit type, a scaled
// integer of thousandths: parsing rounds the decimal literal half away from
// zero at the third fractional digit, and rendering always emits exactly
// three fractional digits. This keeps CSV, JSON, and ordering comparisons
// exact with no float drift.
//
// # File Layout
//
// UTF-8 CSV with a fixed header:
//
//	tool_name,parameter_name,usl,lsl,ucl,lcl,cl
//	TOOL_A,temperature,100.000,0.000,90.000,10.000,50.000
//
// The file is the only authoritative copy of the record set. Every ReadAll
// re-parses it from scratch; there is no in-memory cache. A missing file or
// directory reads as an empty store and is created on the first Append.
//
// # Concurrency
//
// CSVStore serializes all file access behind an internal mutex, so reads and
// appends from multiple goroutines are safe. It does not guard against other
// processes writing the same file; deployments run a single gateway process
// per data file.
//
// # Error Handling
//
// ReadAll and Append surface I/O and parse failures as wrapped errors; they
// are operator-level faults, not validated-input errors, and callers map
// them to generic server failures.
package store
