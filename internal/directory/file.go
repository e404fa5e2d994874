package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/stocktrack/internal/common"
	"github.com/bobmcallan/stocktrack/internal/models"
)

// File is the on-disk directory layout, in TOML or YAML.
//
//	[[stocks]]
//	code = "2330"
//	name = "台積電"
//	sector = "晶圓代工"
//	aliases = ["TSMC"]
//
//	[[renamed]]
//	from = "舊名"
//	to = "新名"
//
//	[sectors]
//	"巨有科技" = "IP矽智財"
type File struct {
	OtherSector string                 `toml:"other_sector" yaml:"other_sector"`
	Stocks      []models.StockIdentity `toml:"stocks" yaml:"stocks"`
	Renamed     []Rename               `toml:"renamed" yaml:"renamed"`
	Sectors     map[string]string      `toml:"sectors" yaml:"sectors"`
}

// ReadFile parses a directory file, choosing the format by extension.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file %s: %w", path, err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported directory file format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory file %s: %w", path, err)
	}
	return &f, nil
}

// Options converts the file into builder options.
func (f *File) Options() []Option {
	return []Option{
		WithStocks(f.Stocks...),
		WithRenames(f.Renamed...),
		WithSectors(f.Sectors),
		WithOtherSector(f.OtherSector),
	}
}

// Load builds the directory from the seed tables overlaid with cfg.File.
// An empty path yields the seed directory.
func Load(cfg common.DirectoryConfig, logger *common.Logger) (*Directory, error) {
	opts := []Option{WithSeed(), WithOtherSector(cfg.OtherSector)}

	if cfg.File != "" {
		f, err := ReadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		opts = append(opts, f.Options()...)
		logger.Info().
			Str("path", cfg.File).
			Int("stocks", len(f.Stocks)).
			Int("renamed", len(f.Renamed)).
			Int("sectors", len(f.Sectors)).
			Msg("Directory file loaded")
	}

	d := New(opts...)
	logger.Info().Int("entries", d.Len()).Str("other_sector", d.OtherSector()).Msg("Stock directory ready")
	return d, nil
}
