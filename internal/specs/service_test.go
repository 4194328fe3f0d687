// ABOUTME: Tests for the validation service add/list pipeline
// ABOUTME: Covers check ordering, rounding boundaries, uniqueness, and side-effect-free rejection

package specs

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/paramspec-gateway/internal/store"
)

// createTestService creates a Service backed by a real CSV store in a temp dir.
func createTestService(t *testing.T) *Service {
	t.Helper()

	st, err := store.NewCSVStore(filepath.Join(t.TempDir(), "parameter_specs.csv"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := NewService(st, nil)
	require.NoError(t, err)
	return svc
}

// validFields returns a complete, valid input mapping. Numbers are
// json.Number, matching what the adapters hand the service.
func validFields() map[string]any {
	return map[string]any{
		"tool_name":      "TOOL_A",
		"parameter_name": "temperature",
		"usl":            json.Number("100.0"),
		"lsl":            json.Number("0.0"),
		"ucl":            json.Number("90.0"),
		"lcl":            json.Number("10.0"),
		"cl":             json.Number("50.0"),
	}
}

func TestAddThenListRoundTrip(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, validFields())
	require.NoError(t, err)
	assert.Equal(t, "TOOL_A", added.ToolName)
	assert.Equal(t, "temperature", added.ParameterName)
	assert.Equal(t, "100.000", added.USL.String())

	listed, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, *added, listed[0])
}

func TestListAllEmptyStore(t *testing.T) {
	svc := createTestService(t)

	listed, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAddMissingField(t *testing.T) {
	svc := createTestService(t)

	for _, field := range []string{"tool_name", "parameter_name", "usl", "lsl", "ucl", "lcl", "cl"} {
		t.Run(field, func(t *testing.T) {
			fields := validFields()
			delete(fields, field)

			_, err := svc.Add(context.Background(), fields)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, CodeMissingField, verr.Code)
			assert.Equal(t, field, verr.Field)
			assert.Equal(t, "Missing required field: "+field, verr.Error())
		})
	}
}

func TestAddEmptyStringField(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["tool_name"] = "   "

	_, err := svc.Add(context.Background(), fields)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeEmptyField, verr.Code)
	assert.Equal(t, "Field cannot be empty: tool_name", verr.Error())
}

func TestAddStringFieldTooLong(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["parameter_name"] = strings.Repeat("x", 101)

	_, err := svc.Add(context.Background(), fields)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeFieldTooLong, verr.Code)
	assert.Equal(t, "parameter_name", verr.Field)
}

func TestAddStringFieldExactly100Chars(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["parameter_name"] = strings.Repeat("x", 100)

	_, err := svc.Add(context.Background(), fields)
	assert.NoError(t, err)
}

func TestAddTrimsStringFields(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["tool_name"] = "  TOOL_A  "

	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "TOOL_A", added.ToolName)
}

func TestAddInvalidNumber(t *testing.T) {
	svc := createTestService(t)

	tests := []struct {
		name  string
		value any
	}{
		{"garbage string", "not-a-number"},
		{"bool", true},
		{"nil", nil},
		{"object", map[string]any{"v": 1}},
		{"overflowing literal", json.Number("10000000000000000")},
		{"overflowing int", int64(10000000000000000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			fields["usl"] = tt.value

			_, err := svc.Add(context.Background(), fields)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, CodeInvalidNumber, verr.Code)
			assert.Equal(t, "Invalid number format for field: usl", verr.Error())
		})
	}
}

func TestAddAcceptsNumericString(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["usl"] = "100.5"

	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "100.500", added.USL.String())
}

func TestAddNegativeValuesPermitted(t *testing.T) {
	svc := createTestService(t)

	fields := map[string]any{
		"tool_name":      "TOOL_N",
		"parameter_name": "offset",
		"usl":            json.Number("10"),
		"lsl":            json.Number("-10"),
		"ucl":            json.Number("5"),
		"lcl":            json.Number("-5"),
		"cl":             json.Number("0"),
	}

	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "-10.000", added.LSL.String())
}

func TestAddRounding(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["usl"] = json.Number("100.00049")
	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "100.000", added.USL.String())

	fields = validFields()
	fields["tool_name"] = "TOOL_B"
	fields["usl"] = json.Number("100.0005")
	added, err = svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "100.001", added.USL.String(), "half-up rounding at the midpoint")
}

func TestAddInvalidRelationship(t *testing.T) {
	svc := createTestService(t)

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"lsl equals lcl", "lsl", "10.0"},
		{"cl above ucl", "cl", "95.0"},
		{"usl below ucl", "usl", "80.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			fields[tt.field] = json.Number(tt.value)

			_, err := svc.Add(context.Background(), fields)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, CodeInvalidRelationship, verr.Code)
			assert.Equal(t, "Invalid value relationship: LSL < LCL < CL < UCL < USL required", verr.Error())
		})
	}
}

func TestAddRoundingCollapsesOrdering(t *testing.T) {
	svc := createTestService(t)

	// 89.9996 is strictly below 90.0 raw but rounds to 90.000, so the
	// CL < UCL comparison sees equal values and rejects.
	fields := validFields()
	fields["cl"] = json.Number("89.9996")

	_, err := svc.Add(context.Background(), fields)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidRelationship, verr.Code)
}

func TestAddCheckOrderIsDeterministic(t *testing.T) {
	svc := createTestService(t)

	// Missing field outranks a bad number
	fields := validFields()
	delete(fields, "tool_name")
	fields["usl"] = "garbage"
	_, err := svc.Add(context.Background(), fields)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeMissingField, verr.Code)

	// Bad number outranks a broken relationship
	fields = validFields()
	fields["usl"] = "garbage"
	fields["lsl"] = json.Number("50.0")
	_, err = svc.Add(context.Background(), fields)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidNumber, verr.Code)
}

func TestAddDuplicateKeyCaseInsensitive(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, validFields())
	require.NoError(t, err)

	dup := validFields()
	dup["tool_name"] = "tool_a"
	dup["parameter_name"] = "TEMPERATURE"

	_, err = svc.Add(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateSpec)

	listed, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1, "rejected duplicate must not grow the store")
}

func TestAddSameToolDifferentParameter(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, validFields())
	require.NoError(t, err)

	second := validFields()
	second["parameter_name"] = "pressure"
	_, err = svc.Add(ctx, second)
	assert.NoError(t, err)
}

func TestAddExtraFieldsDiscarded(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["extra"] = "x"
	fields["another"] = 42

	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)

	// The normalized record is a fixed struct; marshal and check the keys
	// to make sure nothing extra leaks into the echoed result.
	data, err := json.Marshal(added)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Len(t, m, 7)
	assert.NotContains(t, m, "extra")
}

func TestAddRejectionLeavesStoreUntouched(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	fields := validFields()
	fields["usl"] = "garbage"
	_, err := svc.Add(ctx, fields)
	require.Error(t, err)

	listed, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAddStringifiesScalarToolName(t *testing.T) {
	svc := createTestService(t)

	fields := validFields()
	fields["tool_name"] = json.Number("12345")

	added, err := svc.Add(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, "12345", added.ToolName)
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}

func TestValidationErrorUnwrapsWithErrorsAs(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &ValidationError{Code: CodeEmptyField, Field: "tool_name"})
	var verr *ValidationError
	assert.True(t, errors.As(wrapped, &verr))
}
