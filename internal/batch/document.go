package batch

import (
	"fmt"
	"path/filepath"

	"github.com/lisun-ai/DocAgent/internal/assets"
	"github.com/lisun-ai/DocAgent/internal/doctree"
	"github.com/lisun-ai/DocAgent/internal/record"
)

// Document bundles one loaded document: its tree and its asset store.
type Document struct {
	Tree  *doctree.Tree
	Store *assets.Store
}

// LoadDocument reads a preprocessed document directory (records.jsonl,
// figures/, page_images/) and builds the document model.
func LoadDocument(dataDir, docID string, maxSectionDepth int) (*Document, error) {
	dir := filepath.Join(dataDir, docID)

	store, err := assets.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open asset store for %s: %w", docID, err)
	}

	records, err := record.Load(filepath.Join(dir, "records.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("load records for %s: %w", docID, err)
	}

	tree, err := doctree.Build(records, maxSectionDepth)
	if err != nil {
		return nil, fmt.Errorf("build tree for %s: %w", docID, err)
	}
	tree.NumPages = store.NumPages()

	return &Document{Tree: tree, Store: store}, nil
}
