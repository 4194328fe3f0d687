// ABOUTME: Tests for the CSV-backed store covering bootstrap, append, and re-read
// ABOUTME: Uses t.TempDir for isolated data files per test

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a CSV store under a temp directory.
func createTestStore(t *testing.T) (*CSVStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "parameter_specs.csv")
	s, err := NewCSVStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testSpec(tool, param string) ParameterSpec {
	return ParameterSpec{
		ToolName:      tool,
		ParameterName: param,
		USL:           100_000,
		LSL:           0,
		UCL:           90_000,
		LCL:           10_000,
		CL:            50_000,
	}
}

func TestReadAllMissingFile(t *testing.T) {
	s, path := createTestStore(t)

	specs, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.NotNil(t, specs, "missing file must read as empty slice, not nil")

	// ReadAll must not create the file as a side effect
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAppendBootstrapsFileWithHeader(t *testing.T) {
	s, path := createTestStore(t)

	require.NoError(t, s.Append(context.Background(), testSpec("TOOL_A", "temperature")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tool_name,parameter_name,usl,lsl,ucl,lcl,cl", lines[0])
	assert.Equal(t, "TOOL_A,temperature,100.000,0.000,90.000,10.000,50.000", lines[1])
}

func TestAppendThenReadAllRoundTrip(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	first := testSpec("TOOL_A", "temperature")
	second := testSpec("TOOL_B", "pressure")
	second.CL = 55_500 // 55.500

	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	specs, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, first, specs[0], "file order preserved")
	assert.Equal(t, second, specs[1])
}

func TestReadAllHeaderOnlyFile(t *testing.T) {
	s, path := createTestStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("tool_name,parameter_name,usl,lsl,ucl,lcl,cl\n"), 0o644))

	specs, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestReadAllRejectsUnexpectedHeader(t *testing.T) {
	s, path := createTestStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e,f,g\n"), 0o644))

	_, err := s.ReadAll(context.Background())
	assert.Error(t, err)
}

func TestReadAllRejectsMalformedRow(t *testing.T) {
	s, path := createTestStore(t)

	content := "tool_name,parameter_name,usl,lsl,ucl,lcl,cl\nTOOL_A,temp,not-a-number,0,90,10,50\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := s.ReadAll(context.Background())
	assert.Error(t, err)
}

func TestNewCSVStoreRequiresPath(t *testing.T) {
	_, err := NewCSVStore("", nil)
	assert.Error(t, err)
}
