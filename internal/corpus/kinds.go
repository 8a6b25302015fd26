package corpus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askcatalog/askcatalog/internal/errors"
)

// Typed catalog entries. Each kind carries its own field set and converts
// to and from the generic Record form that gets persisted and indexed, so
// producers work with real fields instead of poking at metadata maps.

// Product is one catalog row. Well-known fields are explicit; everything
// else (brand, processor, storage, ...) lives in Specs.
type Product struct {
	SKU      string
	Name     string
	Category string
	Price    float64
	RAMGB    int
	Specs    map[string]any
}

// Record renders the product as an indexable record: a pipe-joined
// "field: value" row as text, with the full row kept in metadata.
func (p Product) Record() Record {
	row := map[string]any{
		"product_id": p.SKU,
		"category":   p.Category,
		"model":      p.Name,
		"ram_gb":     p.RAMGB,
		"price_usd":  p.Price,
	}
	for k, v := range p.Specs {
		row[k] = v
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s: %s", k, formatRowValue(row[k])))
	}

	return Record{
		ID:   p.SKU,
		Kind: KindProduct,
		Text: strings.Join(fields, " | "),
		Meta: map[string]any{
			"doc_type": "product",
			"row_data": row,
		},
	}
}

// ProductFromRecord decodes a product record back into its typed form.
func ProductFromRecord(r Record) (Product, error) {
	if r.Kind != KindProduct {
		return Product{}, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
			fmt.Sprintf("record %q is %q, not a product", r.ID, r.Kind))
	}
	row, ok := r.Meta["row_data"].(map[string]any)
	if !ok {
		return Product{}, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
			fmt.Sprintf("product record %q has no row_data", r.ID))
	}

	p := Product{
		SKU:      metaString(row["product_id"]),
		Name:     metaString(row["model"]),
		Category: metaString(row["category"]),
		Price:    metaFloat(row["price_usd"]),
		RAMGB:    metaInt(row["ram_gb"]),
		Specs:    map[string]any{},
	}
	for k, v := range row {
		switch k {
		case "product_id", "model", "category", "price_usd", "ram_gb":
		default:
			p.Specs[k] = v
		}
	}
	return p, nil
}

// Faq is one customer-support question/answer pair.
type Faq struct {
	Question string
	Answer   string
}

// Record renders the pair as an indexable record under the given ID.
func (f Faq) Record(id string) Record {
	return Record{
		ID:   id,
		Kind: KindFaq,
		Text: fmt.Sprintf("Question: %s\nAnswer: %s", f.Question, f.Answer),
		Meta: map[string]any{
			"doc_type": "faq",
			"question": f.Question,
			"answer":   f.Answer,
		},
	}
}

// FaqFromRecord decodes an FAQ record back into its typed form.
func FaqFromRecord(r Record) (Faq, error) {
	if r.Kind != KindFaq {
		return Faq{}, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
			fmt.Sprintf("record %q is %q, not an faq", r.ID, r.Kind))
	}
	return Faq{
		Question: metaString(r.Meta["question"]),
		Answer:   metaString(r.Meta["answer"]),
	}, nil
}

// ManualChunk is one chunk of a manual document: Product names the parent
// document, Section the heading the chunk was cut from, Seq its order
// within the parent.
type ManualChunk struct {
	Product string
	Section string
	Seq     int
	Text    string
}

// Record renders the chunk as an indexable record.
func (m ManualChunk) Record() Record {
	return Record{
		ID:   fmt.Sprintf("%s_chunk_%d", m.Product, m.Seq),
		Kind: KindManual,
		Text: m.Text,
		Meta: map[string]any{
			"doc_type":   "manual",
			"parent_doc": m.Product,
			"section":    m.Section,
			"chunk_id":   m.Seq,
		},
	}
}

// ManualChunkFromRecord decodes a manual chunk back into its typed form.
func ManualChunkFromRecord(r Record) (ManualChunk, error) {
	if r.Kind != KindManual {
		return ManualChunk{}, errors.ContractViolation(errors.ErrCodeInvalidCorpus,
			fmt.Sprintf("record %q is %q, not a manual chunk", r.ID, r.Kind))
	}
	return ManualChunk{
		Product: metaString(r.Meta["parent_doc"]),
		Section: metaString(r.Meta["section"]),
		Seq:     metaInt(r.Meta["chunk_id"]),
		Text:    r.Text,
	}, nil
}

func formatRowValue(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprintf("%v", v)
}

// Metadata values arrive as int before a JSON round trip and float64
// after it; the accessors absorb both.

func metaString(v any) string {
	s, _ := v.(string)
	return s
}

func metaInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func metaFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
