package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/models"
)

const cliPayload = `[
	{"col_01": "2024/12/02", "col_02": "Gust", "col_06": "台積電"},
	{"col_01": "2024/12/03", "col_02": "Storm", "col_06": "台積電"}
]`

func writeCLIConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	config := `
environment = "test"

[storage]
backend = "csv"
path = "` + filepath.Join(dir, "data") + `"

[sources.scrape]
enabled = false

[logging]
level = "error"
outputs = ["console"]
`
	path := filepath.Join(dir, "stocktrack.toml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))
	return path, dir
}

// run executes the root command once and returns its stdout.
func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	application = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", config}, args...))
	err := rootCmd.Execute()
	if application != nil {
		application.Close()
		application = nil
	}
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stocktrack ")
}

func TestImportThenRecords(t *testing.T) {
	config, dir := writeCLIConfig(t)
	payload := filepath.Join(dir, "ocr.json")
	require.NoError(t, os.WriteFile(payload, []byte(cliPayload), 0644))

	out, err := run(t, config, "import", payload)
	require.NoError(t, err)
	assert.Contains(t, out, `"imported": 2`)

	out, err = run(t, config, "records")
	require.NoError(t, err)
	var records []models.DailyRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "2024-12-03", records[0].Date)

	_, err = run(t, config, "records", "2024-12-09")
	assert.Error(t, err)
}

func TestClearAndRestore(t *testing.T) {
	config, dir := writeCLIConfig(t)
	payload := filepath.Join(dir, "ocr.json")
	require.NoError(t, os.WriteFile(payload, []byte(cliPayload), 0644))

	_, err := run(t, config, "import", payload)
	require.NoError(t, err)

	out, err := run(t, config, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared")

	out, err = run(t, config, "restore")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 2 records")
}

func TestImportMissingFile(t *testing.T) {
	config, dir := writeCLIConfig(t)
	_, err := run(t, config, "import", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
