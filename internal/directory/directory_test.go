package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/models"
)

func testDirectory() *Directory {
	return New(
		WithStocks(
			models.StockIdentity{Code: "1001", Name: "Alpha", Sector: "Chips", Aliases: []string{"ALP"}},
			models.StockIdentity{Code: "1002", Name: "Beta", Sector: "Boats"},
		),
		WithRenames(Rename{From: "OldBeta", To: "Beta"}),
		WithSectors(map[string]string{"Gamma": "Games"}),
	)
}

func TestResolve_StripsDecorations(t *testing.T) {
	d := testDirectory()
	want := d.Resolve("Alpha")

	for _, raw := range []string{" Alpha(CB) ", "Alpha（CB）", "*Alpha*", "Al pha", "alpha", "ALP", "1001"} {
		assert.Equal(t, want, d.Resolve(raw), raw)
	}
	assert.Equal(t, models.Resolution{Code: "1001", Name: "Alpha", Sector: "Chips", Found: true}, want)
}

func TestResolve_Idempotent(t *testing.T) {
	d := NewDefault()
	inputs := []string{"台積電", "2330", " 聯發科(CB)", "愛普*", "巨有科技", "不存在公司", "9999", "", "OldBeta"}
	for _, in := range inputs {
		first := d.Resolve(in)
		assert.Equal(t, first, d.Resolve(first.Name), in)
	}

	td := testDirectory()
	first := td.Resolve("OldBeta")
	assert.Equal(t, "Beta", first.Name)
	assert.Equal(t, first, td.Resolve(first.Name))
}

func TestResolve_ChainedRenames(t *testing.T) {
	d := New(
		WithStocks(models.StockIdentity{Code: "1111", Name: "Gamma", Sector: "S"}),
		WithRenames(Rename{From: "Alpha", To: "Beta"}, Rename{From: "Beta", To: "Gamma"}),
	)

	for _, in := range []string{"Alpha", "Beta", "Gamma"} {
		r := d.Resolve(in)
		assert.True(t, r.Found, in)
		assert.Equal(t, "1111", r.Code, in)
		assert.Equal(t, r, d.Resolve(r.Name), in)
	}
}

func TestResolve_RenameCycleStaysIdempotent(t *testing.T) {
	d := New(WithRenames(Rename{From: "Left", To: "Right"}, Rename{From: "Right", To: "Left"}))

	for _, in := range []string{"Left", "Right"} {
		r := d.Resolve(in)
		assert.Equal(t, r, d.Resolve(r.Name), in)
	}
}

func TestResolve_MissGetsOtherSector(t *testing.T) {
	d := testDirectory()

	r := d.Resolve("Unknown Co")
	assert.False(t, r.Found)
	assert.Equal(t, "UnknownCo", r.Name)
	assert.Equal(t, DefaultOtherSector, r.Sector)
	assert.False(t, r.HasCode())

	r = d.Resolve("9999")
	assert.False(t, r.Found)
	assert.Equal(t, DefaultOtherSector, r.Sector)
}

func TestResolve_SectorOnlyName(t *testing.T) {
	r := testDirectory().Resolve("Gamma(CB)")
	assert.True(t, r.Found)
	assert.Empty(t, r.Code)
	assert.Equal(t, "Games", r.Sector)
}

func TestNew_LaterCodeWinsForSameName(t *testing.T) {
	d := New(WithStocks(
		models.StockIdentity{Code: "2001", Name: "Merged", Sector: "Old"},
		models.StockIdentity{Code: "2002", Name: "Merged", Sector: "New"},
	))

	s, ok := d.ByName("Merged")
	require.True(t, ok)
	assert.Equal(t, "2002", s.Code)

	// The retired code still resolves, to the current listing.
	s, ok = d.ByCode("2001")
	require.True(t, ok)
	assert.Equal(t, "2002", s.Code)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, []string{"2002"}, d.Codes())
}

func TestNew_CodeRenamedDropsOldName(t *testing.T) {
	d := New(WithStocks(
		models.StockIdentity{Code: "3001", Name: "First"},
		models.StockIdentity{Code: "3001", Name: "Second"},
	))

	_, ok := d.ByName("First")
	assert.False(t, ok)
	s, ok := d.ByCode("3001")
	require.True(t, ok)
	assert.Equal(t, "Second", s.Name)
	assert.Equal(t, DefaultOtherSector, s.Sector)
}

func TestNewDefault_Bijection(t *testing.T) {
	d := NewDefault()
	require.Greater(t, d.Len(), 50)
	for _, e := range d.Entries() {
		byName, ok := d.ByName(e.Name)
		require.True(t, ok, e.Name)
		assert.Equal(t, e.Code, byName.Code)
	}
	assert.Equal(t, "晶圓代工", d.Sector("台積電"))
	assert.Equal(t, "IP/記憶體", d.Sector("愛普*"))
}

func TestReadFile_TOMLAndYAML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "stocks.toml")
	yamlPath := filepath.Join(dir, "stocks.yaml")

	require.NoError(t, os.WriteFile(tomlPath, []byte(`
other_sector = "Misc"

[[stocks]]
code = "4001"
name = "Delta"
sector = "Drones"
aliases = ["DLT"]

[[renamed]]
from = "Delta Old"
to = "Delta"
`), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
stocks:
  - code: "4001"
    name: Delta
    sector: Drones
    aliases: [DLT]
renamed:
  - from: Delta Old
    to: Delta
sectors:
  Epsilon: Energy
`), 0644))

	for _, path := range []string{tomlPath, yamlPath} {
		f, err := ReadFile(path)
		require.NoError(t, err, path)
		d := New(f.Options()...)

		assert.Equal(t, "4001", d.Resolve("DLT").Code, path)
		assert.Equal(t, "4001", d.Resolve("Delta Old").Code, path)
	}

	f, err := ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Energy", New(f.Options()...).Sector("Epsilon"))

	f, err = ReadFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "Misc", New(f.Options()...).Sector("nobody"))
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "stocks.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{}`), 0644))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}

func TestLoad_OverlaysSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[stocks]]
code = "2330"
name = "台積電"
sector = "Foundry"
`), 0644))

	d, err := Load(common.DirectoryConfig{File: path}, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, "Foundry", d.Sector("2330"))
	assert.Equal(t, "IC設計", d.Sector("聯發科"))

	_, err = Load(common.DirectoryConfig{File: filepath.Join(t.TempDir(), "x.toml")}, common.NewSilentLogger())
	assert.Error(t, err)
}
