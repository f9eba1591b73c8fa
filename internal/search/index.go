// Package search provides a Bleve keyword index over stored documents.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// Document is what gets indexed for one stored file.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Hit is a single search result.
type Hit struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Index is a keyword search index over stored documents.
type Index struct {
	index bleve.Index
}

// Open creates or opens a Bleve index at path. An existing index is reused so
// unchanged documents are not re-indexed across restarts. If the mapping in
// code changes, remove the index directory to force a rebuild.
func Open(path string) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact words
	// from paper titles match what the user types.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open search index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{index: index}, nil
}

// Put indexes (or re-indexes) a document by id.
func (x *Index) Put(ctx context.Context, doc *Document) error {
	return x.index.Index(doc.ID, doc)
}

// Delete removes a document from the index. Unknown ids are a no-op.
func (x *Index) Delete(ctx context.Context, id string) error {
	return x.index.Delete(id)
}

// Search runs a match query over title and content and returns up to limit hits.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]*Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"title"}
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	hits := make([]*Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := &Hit{ID: h.ID, Score: h.Score}
		if title, ok := h.Fields["title"].(string); ok {
			hit.Title = title
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DocCount returns the number of indexed documents.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close closes the index.
func (x *Index) Close() error {
	return x.index.Close()
}
