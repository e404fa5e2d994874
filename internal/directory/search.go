package directory

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/bobmcallan/stocktrack/internal/models"
)

// SearchIndex is an in-memory full-text index over directory entries, used
// for operator lookups by partial code or name.
type SearchIndex struct {
	index bleve.Index
	dir   *Directory
}

// NewSearchIndex indexes every current entry of d.
func NewSearchIndex(d *Directory) (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create directory index: %w", err)
	}

	batch := index.NewBatch()
	for _, s := range d.Entries() {
		doc := map[string]interface{}{
			"code":    s.Code,
			"name":    fold(s.Name),
			"sector":  fold(s.Sector),
			"aliases": foldAll(s.Aliases),
		}
		if err := batch.Index(s.Code, doc); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", s.Code, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to build directory index: %w", err)
	}

	return &SearchIndex{index: index, dir: d}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	stockMapping := bleve.NewDocumentMapping()

	// Whole-value tokens so CJK names match by substring wildcard.
	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	exact.Store = false

	stockMapping.AddFieldMappingsAt("code", exact)
	stockMapping.AddFieldMappingsAt("name", exact)
	stockMapping.AddFieldMappingsAt("sector", exact)
	stockMapping.AddFieldMappingsAt("aliases", exact)

	indexMapping.DefaultMapping = stockMapping
	return indexMapping
}

// Search returns up to limit entries matching q by code prefix, exact name,
// name substring, alias or sector, best match first.
func (s *SearchIndex) Search(q string, limit int) ([]models.StockIdentity, error) {
	q = fold(Clean(strings.NewReplacer("?", "", "\\", "").Replace(q)))
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	searchRequest := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	res, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("directory search failed: %w", err)
	}

	out := make([]models.StockIdentity, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := s.dir.ByCode(hit.ID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func buildQuery(q string) query.Query {
	exactCode := bleve.NewTermQuery(q)
	exactCode.SetField("code")
	exactCode.SetBoost(10)

	prefixCode := bleve.NewPrefixQuery(q)
	prefixCode.SetField("code")
	prefixCode.SetBoost(5)

	exactName := bleve.NewTermQuery(q)
	exactName.SetField("name")
	exactName.SetBoost(8)

	partialName := bleve.NewWildcardQuery("*" + q + "*")
	partialName.SetField("name")
	partialName.SetBoost(3)

	alias := bleve.NewTermQuery(q)
	alias.SetField("aliases")
	alias.SetBoost(6)

	sector := bleve.NewWildcardQuery("*" + q + "*")
	sector.SetField("sector")
	sector.SetBoost(1)

	return bleve.NewDisjunctionQuery(exactCode, prefixCode, exactName, partialName, alias, sector)
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	return s.index.Close()
}

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fold(s)
	}
	return out
}
