// Package snapshot persists one CSV file per (table, day) under a root directory.
// Files are laid out as <root>/<YYYY-MM>/<table>_<YYYY-MM-DD>.csv and are never
// rewritten once they exist.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/table"
)

// Store is a directory of day snapshots
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created on first save.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory
func (s *Store) Root() string {
	return s.root
}

// Path returns the snapshot location for (tableName, day)
func (s *Store) Path(tableName string, day calendar.Date) string {
	return filepath.Join(s.root, day.MonthKey(), fmt.Sprintf("%s_%s.csv", tableName, day))
}

// Exists reports whether a snapshot for (tableName, day) is on disk
func (s *Store) Exists(tableName string, day calendar.Date) (bool, error) {
	_, err := os.Stat(s.Path(tableName, day))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat snapshot: %w", err)
}

// Load reads a snapshot back into a raw table
func (s *Store) Load(tableName string, day calendar.Date) (*table.Raw, error) {
	path := s.Path(tableName, day)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer file.Close()

	raw, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return raw, nil
}

// Save writes raw as the snapshot for (tableName, day). It returns false without
// touching the file when a snapshot already exists.
func (s *Store) Save(tableName string, day calendar.Date, raw *table.Raw) (bool, error) {
	exists, err := s.Exists(tableName, day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	path := s.Path(tableName, day)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return true, nil
}

// Write encodes raw as CSV with a header row
func Write(w io.Writer, raw *table.Raw) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(raw.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range raw.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	return nil
}

// Read decodes a CSV stream produced by Write
func Read(r io.Reader) (*table.Raw, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table.NewRaw(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	raw := table.NewRaw(header...)
	reader.FieldsPerRecord = len(header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		raw.Rows = append(raw.Rows, record)
	}
	return raw, nil
}
