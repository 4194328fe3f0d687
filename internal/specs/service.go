// ABOUTME: Validation service enforcing the parameter spec business rules
// ABOUTME: Owns the add/list contracts consumed by the HTTP and MCP adapters

package specs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fabworks/paramspec-gateway/internal/store"
)

// MaxStringLength is the maximum length of tool_name and parameter_name
// after trimming, counted in characters.
const MaxStringLength = 100

var (
	stringFields  = []string{"tool_name", "parameter_name"}
	numericFields = []string{"usl", "lsl", "ucl", "lcl", "cl"}
)

// Service is the sole place where business rules are enforced. Adapters hand
// it a raw field mapping and get back either a normalized record or a typed
// validation failure.
type Service struct {
	mu     sync.Mutex
	store  store.Store
	logger *slog.Logger
}

// NewService creates a validation service backed by the given store.
func NewService(st store.Store, logger *slog.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}, nil
}

// ListAll returns every stored record in file order. Stored data is already
// normalized, so the result is returned verbatim.
func (s *Service) ListAll(ctx context.Context) ([]store.ParameterSpec, error) {
	return s.store.ReadAll(ctx)
}

// Add validates the raw field mapping and, on success, durably appends the
// normalized record and returns it. Checks run in a fixed order so error
// messages are deterministic: missing fields, string fields, numeric fields,
// the ordering invariant, then uniqueness. Keys beyond the seven recognized
// fields are silently discarded. A rejected request never mutates the store.
//
// The uniqueness check and the append happen under one lock, so two
// concurrent adds for the same key cannot both pass the check.
func (s *Service) Add(ctx context.Context, fields map[string]any) (*store.ParameterSpec, error) {
	spec, err := validate(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading existing specs: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.ToolName, spec.ToolName) &&
			strings.EqualFold(e.ParameterName, spec.ParameterName) {
			return nil, ErrDuplicateSpec
		}
	}

	if err := s.store.Append(ctx, *spec); err != nil {
		return nil, fmt.Errorf("appending spec: %w", err)
	}

	s.logger.Info("parameter spec added",
		"tool_name", spec.ToolName,
		"parameter_name", spec.ParameterName,
	)
	return spec, nil
}

// validate runs the structural and relational checks and builds the
// normalized record. Uniqueness is the caller's job.
func validate(fields map[string]any) (*store.ParameterSpec, error) {
	for _, field := range store.Columns {
		if _, ok := fields[field]; !ok {
			return nil, &ValidationError{Code: CodeMissingField, Field: field}
		}
	}

	strs := make(map[string]string, len(stringFields))
	for _, field := range stringFields {
		v := strings.TrimSpace(coerceString(fields[field]))
		if v == "" {
			return nil, &ValidationError{Code: CodeEmptyField, Field: field}
		}
		if utf8.RuneCountInString(v) > MaxStringLength {
			return nil, &ValidationError{Code: CodeFieldTooLong, Field: field}
		}
		strs[field] = v
	}

	nums := make(map[string]store.Limit, len(numericFields))
	for _, field := range numericFields {
		v, err := coerceLimit(fields[field])
		if err != nil {
			return nil, &ValidationError{Code: CodeInvalidNumber, Field: field}
		}
		nums[field] = v
	}

	// Strict ordering on the rounded values: a pair that collapses to
	// equality at three decimals is rejected even if the raw input was
	// strictly ordered.
	if !(nums["lsl"] < nums["lcl"] && nums["lcl"] < nums["cl"] &&
		nums["cl"] < nums["ucl"] && nums["ucl"] < nums["usl"]) {
		return nil, &ValidationError{Code: CodeInvalidRelationship}
	}

	return &store.ParameterSpec{
		ToolName:      strs["tool_name"],
		ParameterName: strs["parameter_name"],
		USL:           nums["usl"],
		LSL:           nums["lsl"],
		UCL:           nums["ucl"],
		LCL:           nums["lcl"],
		CL:            nums["cl"],
	}, nil
}

// coerceString renders a field value to text. Non-string scalars are
// accepted and stringified; validation downstream handles emptiness and
// length.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// coerceLimit interprets a field value as a finite number rounded to three
// decimals. JSON numbers keep their literal, so midpoint values round
// exactly; numeric strings are accepted the same way. Booleans and
// structured values are not numbers.
func coerceLimit(v any) (store.Limit, error) {
	switch t := v.(type) {
	case json.Number:
		return store.ParseLimit(t.String())
	case string:
		return store.ParseLimit(t)
	case float64:
		return store.LimitFromFloat(t)
	case float32:
		return store.LimitFromFloat(float64(t))
	case int:
		return store.LimitFromInt(int64(t))
	case int64:
		return store.LimitFromInt(t)
	default:
		return 0, store.ErrNotANumber
	}
}
