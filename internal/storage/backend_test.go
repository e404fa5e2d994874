package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/interfaces"
	"github.com/bobmcallan/stocktrack/internal/models"
)

func openBackend(t *testing.T, backend string) interfaces.TableBackend {
	t.Helper()
	cfg := &common.StorageConfig{Backend: backend, Path: t.TempDir()}
	b, err := NewTableBackend(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func sampleTable(name string) *models.Table {
	t := models.NewTable(name, []string{"date", "wind", "worker_strong_list"})
	t.Rows = [][]string{
		{"2024-12-03", "強風", "台積電、鴻海(CB)"},
		{"2024-12-02", "陣風", "quoted, \"cell\""},
	}
	return t
}

// Every backend honours the same contract.
func TestTableBackends_Contract(t *testing.T) {
	for _, backend := range []string{BackendCSV, BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			b := openBackend(t, backend)

			_, err := b.LoadTable(ctx, "daily_records")
			assert.True(t, errors.Is(err, models.ErrTableNotFound))

			require.NoError(t, b.SaveTable(ctx, sampleTable("daily_records")))
			got, err := b.LoadTable(ctx, "daily_records")
			require.NoError(t, err)
			assert.Equal(t, sampleTable("daily_records").Columns, got.Columns)
			assert.Equal(t, sampleTable("daily_records").Rows, got.Rows)

			// Save replaces the whole table.
			smaller := models.NewTable("daily_records", []string{"date"})
			smaller.Rows = [][]string{{"2024-12-04"}}
			require.NoError(t, b.CopyTable(ctx, "daily_records", "daily_records_backup"))
			require.NoError(t, b.SaveTable(ctx, smaller))

			got, err = b.LoadTable(ctx, "daily_records")
			require.NoError(t, err)
			assert.Equal(t, [][]string{{"2024-12-04"}}, got.Rows)

			backup, err := b.LoadTable(ctx, "daily_records_backup")
			require.NoError(t, err)
			assert.Len(t, backup.Rows, 2)

			require.NoError(t, b.CopyTable(ctx, "never_saved", "other"))
			_, err = b.LoadTable(ctx, "other")
			assert.True(t, errors.Is(err, models.ErrTableNotFound))

			require.NoError(t, b.DeleteTable(ctx, "daily_records"))
			require.NoError(t, b.DeleteTable(ctx, "daily_records"))
			_, err = b.LoadTable(ctx, "daily_records")
			assert.True(t, errors.Is(err, models.ErrTableNotFound))
		})
	}
}

func TestNewTableBackend_Unknown(t *testing.T) {
	_, err := NewTableBackend(context.Background(), common.NewSilentLogger(), &common.StorageConfig{Backend: "excel"})
	assert.Error(t, err)
}

func TestFileStore_WritesBOMAndReadsManualEdits(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(common.NewSilentLogger(), dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.SaveTable(ctx, sampleTable("daily_records")))
	raw, err := os.ReadFile(filepath.Join(dir, "daily_records.csv"))
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, raw[:3])

	// A hand-edited file with a ragged row and padded header still loads.
	edited := "\xEF\xBB\xBFdate , wind\n2024/1/5,陣風,extra\n2024-01-06\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edited.csv"), []byte(edited), 0644))
	tbl, err := fs.LoadTable(ctx, "edited")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "wind"}, tbl.Columns)
	assert.Equal(t, "2024/1/5", tbl.Cell(0, "date"))
	assert.Equal(t, "", tbl.Cell(1, "wind"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), []byte{}, 0644))
	tbl, err = fs.LoadTable(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	names, err := fs.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"daily_records", "edited", "empty"}, names)
}

func TestFileStore_CorruptFileIsReadError(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(common.NewSilentLogger(), dir)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "broken.csv"), 0755))

	_, err = fs.LoadTable(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrTableNotFound))
}

func TestManager_ArchiveOptional(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()

	m, err := NewManager(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer m.Close()
	assert.Nil(t, m.IndexArchive())
	assert.NotNil(t, m.Tables())

	cfg.Storage.ArchivePath = filepath.Join(cfg.Storage.Path, "archive")
	m2, err := NewManager(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer m2.Close()
	assert.NotNil(t, m2.IndexArchive())
}
