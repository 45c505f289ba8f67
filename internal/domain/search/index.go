// Package search provides per-session lookup over the normalized table:
// a memory-only bleve index for query-syntax searches plus a plain
// substring filter for single-term lookups.
package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Index wraps a bleve memory index over the table's records. Records are
// kept alongside so hits can be returned as full rows.
type Index struct {
	idx     bleve.Index
	records []map[string]string
}

// New indexes the given records in memory. Each record is one table row,
// keyed by row position.
func New(records []map[string]string) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}

	batch := idx.NewBatch()
	for i, record := range records {
		if err := batch.Index(strconv.Itoa(i), record); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("index row %d: %w", i, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("commit search batch: %w", err)
	}

	return &Index{idx: idx, records: records}, nil
}

// Query runs a bleve query-string search and returns the matching rows,
// best match first.
func (s *Index) Query(q string, limit int) ([]map[string]string, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), limit, 0, false)
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	rows := make([]map[string]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(s.records) {
			continue
		}
		rows = append(rows, s.records[i])
	}
	return rows, nil
}

// Filter returns the rows where any cell fuzzily matches the term, case
// and diacritic insensitive, preserving table order.
func (s *Index) Filter(term string) []map[string]string {
	var rows []map[string]string
	for _, record := range s.records {
		for _, value := range record {
			if fuzzy.MatchNormalizedFold(term, value) {
				rows = append(rows, record)
				break
			}
		}
	}
	return rows
}

func (s *Index) Close() error {
	if s == nil || s.idx == nil {
		return nil
	}
	return s.idx.Close()
}
