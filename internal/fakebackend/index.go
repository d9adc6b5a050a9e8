package fakebackend

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// indexedDoc is the part of a Document that is searchable.
type indexedDoc struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// termIndex is an in-memory full-text index over the documents registered
// for one mode. It answers queries that were never registered explicitly.
type termIndex struct {
	index   bleve.Index
	docs    map[string]Document // doc ID -> document
	byQuery map[string][]string // normalised registered query -> doc IDs
	nextID  int
}

func newTermIndex() (*termIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &termIndex{
		index:   idx,
		docs:    make(map[string]Document),
		byQuery: make(map[string][]string),
	}, nil
}

// replace indexes docs as the registration for key, dropping whatever key
// registered before.
func (t *termIndex) replace(key string, docs []Document) error {
	batch := t.index.NewBatch()
	for _, id := range t.byQuery[key] {
		batch.Delete(id)
		delete(t.docs, id)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		t.nextID++
		// Zero-padded so sorting by ID keeps registration order.
		id := fmt.Sprintf("%08d", t.nextID)
		if err := batch.Index(id, indexedDoc{Title: d.Title, Summary: d.Summary}); err != nil {
			return fmt.Errorf("failed to index document %s: %w", id, err)
		}
		t.docs[id] = d
		ids = append(ids, id)
	}
	t.byQuery[key] = ids

	if err := t.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

// search returns the documents containing every analysed term of q, one per
// URL. Ranked results are ordered by TF-IDF score and carry it; unranked
// results keep registration order.
func (t *termIndex) search(q string, ranked bool) ([]Document, error) {
	out := []Document{}
	if strings.TrimSpace(q) == "" || len(t.docs) == 0 {
		return out, nil
	}

	match := bleve.NewMatchQuery(q)
	match.SetOperator(query.MatchQueryOperatorAnd)

	req := bleve.NewSearchRequestOptions(match, len(t.docs), 0, false)
	if !ranked {
		req.SortBy([]string{"_id"})
	}
	res, err := t.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	seen := make(map[string]bool)
	for _, hit := range res.Hits {
		d, ok := t.docs[hit.ID]
		if !ok || (d.URL != "" && seen[d.URL]) {
			continue
		}
		seen[d.URL] = true
		if ranked {
			score := hit.Score
			d.Score = &score
		}
		out = append(out, d)
	}
	return out, nil
}
