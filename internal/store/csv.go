// ABOUTME: CSV-file implementation of the Store interface
// ABOUTME: Bootstraps the data directory and header row, serializes file access with a mutex

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// CSVStore persists parameter specs as a headered CSV file. Every read
// re-parses the file from scratch; the file is the only authoritative copy.
//
// File access within the process is serialized with a mutex. Nothing guards
// against concurrent writers in other processes; the deployment assumption
// is a single gateway process owning the file.
type CSVStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewCSVStore creates a CSV store backed by the file at path. The file and
// its directory are created lazily on the first append, so constructing a
// store never touches the filesystem.
func NewCSVStore(path string, logger *slog.Logger) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVStore{path: path, logger: logger}, nil
}

// ReadAll returns every stored record in file order. A missing file or
// directory yields an empty slice, as does a file holding only the header.
func (s *CSVStore) ReadAll(ctx context.Context) ([]ParameterSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAllLocked()
}

func (s *CSVStore) readAllLocked() ([]ParameterSpec, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []ParameterSpec{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening store file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing store file: %w", err)
	}
	if len(rows) == 0 {
		return []ParameterSpec{}, nil
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	specs := make([]ParameterSpec, 0, len(rows)-1)
	for i, row := range rows[1:] {
		spec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("parsing row %d: %w", i+2, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Append writes one record to the file, creating the directory and header
// first if needed. The caller has already validated the record.
func (s *CSVStore) Append(ctx context.Context, spec ParameterSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFileLocked(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening store file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(specRow(spec)); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing record: %w", err)
	}

	s.logger.Debug("appended parameter spec",
		"tool_name", spec.ToolName,
		"parameter_name", spec.ParameterName,
	)
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *CSVStore) Close() error {
	return nil
}

// ensureFileLocked creates the data directory and the header-only file if
// they do not exist yet.
func (s *CSVStore) ensureFileLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking store file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating store file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing header: %w", err)
	}

	s.logger.Info("created store file", "path", s.path)
	return nil
}

func checkHeader(row []string) error {
	if len(row) != len(Columns) {
		return fmt.Errorf("unexpected header with %d columns", len(row))
	}
	for i, col := range Columns {
		if row[i] != col {
			return fmt.Errorf("unexpected header column %q, want %q", row[i], col)
		}
	}
	return nil
}

func parseRow(row []string) (ParameterSpec, error) {
	if len(row) != len(Columns) {
		return ParameterSpec{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Columns))
	}

	spec := ParameterSpec{
		ToolName:      row[0],
		ParameterName: row[1],
	}

	limits := []struct {
		name string
		dst  *Limit
	}{
		{"usl", &spec.USL},
		{"lsl", &spec.LSL},
		{"ucl", &spec.UCL},
		{"lcl", &spec.LCL},
		{"cl", &spec.CL},
	}
	for i, l := range limits {
		v, err := ParseLimit(row[i+2])
		if err != nil {
			return ParameterSpec{}, fmt.Errorf("column %s: %w", l.name, err)
		}
		*l.dst = v
	}
	return spec, nil
}

func specRow(spec ParameterSpec) []string {
	return []string{
		spec.ToolName,
		spec.ParameterName,
		spec.USL.String(),
		spec.LSL.String(),
		spec.UCL.String(),
		spec.LCL.String(),
		spec.CL.String(),
	}
}
