// Package corpus defines the document records fed to the indexer: typed
// catalog entries loaded from JSON, a chunker for long texts, and a
// deterministic generator for synthetic catalogs.
package corpus

import (
	"fmt"

	"github.com/askcatalog/askcatalog/internal/errors"
	"github.com/askcatalog/askcatalog/internal/store"
)

// Record kinds.
const (
	KindProduct = "product"
	KindFaq     = "faq"
	KindManual  = "manual_chunk"
)

// Record is one corpus entry: the text representation that gets indexed
// plus its original metadata. Record order is significant; it becomes the
// positional join key between the lexical and semantic indices.
type Record struct {
	ID   string         `json:"doc_id"`
	Kind string         `json:"type"`
	Text string         `json:"content"`
	Meta map[string]any `json:"metadata"`
}

// ToDocuments converts records to store documents, assigning positions by
// record order. Blank IDs, blank texts, and duplicate IDs are caller
// contract violations, rejected before any index mutation.
func ToDocuments(records []Record) ([]*store.Document, error) {
	docs := make([]*store.Document, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		if rec.ID == "" {
			return nil, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
				fmt.Sprintf("record %d has an empty doc_id", i))
		}
		if rec.Text == "" {
			return nil, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
				fmt.Sprintf("record %q has empty content", rec.ID))
		}
		if seen[rec.ID] {
			return nil, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
				fmt.Sprintf("duplicate doc_id %q", rec.ID))
		}
		seen[rec.ID] = true

		meta := rec.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		if rec.Kind != "" {
			// Keep the record kind queryable alongside the original metadata.
			if _, exists := meta["type"]; !exists {
				meta["type"] = rec.Kind
			}
		}

		docs = append(docs, &store.Document{
			Position: i,
			ID:       rec.ID,
			Text:     rec.Text,
			Metadata: meta,
		})
	}

	return docs, nil
}
