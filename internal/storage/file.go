// Package storage provides table persistence with pluggable backends.
package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// utf8BOM prefixes every file so spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileStore keeps one CSV file per table under basePath.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

var _ interfaces.TableBackend = (*FileStore)(nil)

// NewFileStore creates a FileStore and ensures basePath exists.
func NewFileStore(logger *common.Logger, basePath string) (*FileStore, error) {
	if basePath == "" {
		basePath = "data"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("CSV FileStore opened")
	return &FileStore{basePath: basePath, logger: logger}, nil
}

// sanitizeKey makes a table name safe for use as a filename.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// Path returns the file backing the named table.
func (fs *FileStore) Path(name string) string {
	return filepath.Join(fs.basePath, sanitizeKey(name)+".csv")
}

// LoadTable reads a table. The first CSV record is the header.
func (fs *FileStore) LoadTable(_ context.Context, name string) (*models.Table, error) {
	path := fs.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewTable(name, nil), nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	t := models.NewTable(name, trimAll(records[0]))
	t.Rows = records[1:]
	return t, nil
}

// SaveTable writes the table atomically.
func (fs *FileStore) SaveTable(_ context.Context, t *models.Table) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	if err := fs.writeAtomic(fs.Path(t.Name), buf.Bytes()); err != nil {
		return err
	}
	fs.logger.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Msg("CSV table saved")
	return nil
}

// DeleteTable removes the table file.
func (fs *FileStore) DeleteTable(_ context.Context, name string) error {
	if err := os.Remove(fs.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// CopyTable copies src over dst byte for byte.
func (fs *FileStore) CopyTable(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(fs.Path(src))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return fs.writeAtomic(fs.Path(dst), data)
}

// Tables lists the stored table names.
func (fs *FileStore) Tables() ([]string, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", fs.basePath, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".csv") && !strings.HasPrefix(name, ".tmp-") {
			names = append(names, strings.TrimSuffix(name, ".csv"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for files.
func (fs *FileStore) Close() error { return nil }

// writeAtomic writes to a temp file in the same directory, then renames.
func (fs *FileStore) writeAtomic(target string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
