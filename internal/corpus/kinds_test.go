package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcatalog/askcatalog/internal/errors"
)

func TestProduct_RecordRoundTrip(t *testing.T) {
	p := Product{
		SKU:      "LAP-0001",
		Name:     "Dell Inspiron 15",
		Category: "Laptop",
		Price:    1249.99,
		RAMGB:    16,
		Specs: map[string]any{
			"brand":      "Dell",
			"processor":  "Intel Core i7-13th Gen",
			"storage_gb": 512,
		},
	}

	rec := p.Record()
	assert.Equal(t, "LAP-0001", rec.ID)
	assert.Equal(t, KindProduct, rec.Kind)
	assert.Contains(t, rec.Text, "ram_gb: 16")
	assert.Contains(t, rec.Text, "price_usd: 1249.99")
	assert.Contains(t, rec.Text, "brand: Dell")

	decoded, err := ProductFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestProduct_SurvivesJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	p := Product{
		SKU:      "PHN-0002",
		Name:     "Galaxy Ultra 14",
		Category: "Smartphone",
		Price:    999.5,
		RAMGB:    12,
		Specs:    map[string]any{"brand": "Samsung"},
	}

	require.NoError(t, Save(path, []Record{p.Record()}))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	// JSON turns the numbers into float64; decoding absorbs that.
	decoded, err := ProductFromRecord(loaded[0])
	require.NoError(t, err)
	assert.Equal(t, p.SKU, decoded.SKU)
	assert.Equal(t, p.RAMGB, decoded.RAMGB)
	assert.Equal(t, p.Price, decoded.Price)
	assert.Equal(t, "Samsung", decoded.Specs["brand"])
}

func TestFaq_RecordRoundTrip(t *testing.T) {
	f := Faq{Question: "What is your return policy?", Answer: "30 days."}

	rec := f.Record("faq_0")
	assert.Equal(t, KindFaq, rec.Kind)
	assert.Equal(t, "Question: What is your return policy?\nAnswer: 30 days.", rec.Text)

	decoded, err := FaqFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestManualChunk_RecordRoundTrip(t *testing.T) {
	m := ManualChunk{
		Product: "product_care_guide",
		Section: "Battery care and charging",
		Seq:     3,
		Text:    "Lithium-ion batteries perform best between 20 and 80 percent.",
	}

	rec := m.Record()
	assert.Equal(t, "product_care_guide_chunk_3", rec.ID)
	assert.Equal(t, KindManual, rec.Kind)

	decoded, err := ManualChunkFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestKindDecoders_RejectWrongKind(t *testing.T) {
	rec := Faq{Question: "q", Answer: "a"}.Record("faq_0")

	_, err := ProductFromRecord(rec)
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))

	_, err = ManualChunkFromRecord(rec)
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))

	_, err = FaqFromRecord(Product{SKU: "LAP-1"}.Record())
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
}

func TestGenerator_RecordsDecodeToTypedKinds(t *testing.T) {
	records := NewGenerator(42).Generate(10, 512, 50)

	for _, rec := range records {
		switch rec.Kind {
		case KindProduct:
			p, err := ProductFromRecord(rec)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, p.SKU)
			assert.Greater(t, p.Price, 0.0)
			assert.Greater(t, p.RAMGB, 0)
		case KindFaq:
			f, err := FaqFromRecord(rec)
			require.NoError(t, err)
			assert.NotEmpty(t, f.Question)
			assert.NotEmpty(t, f.Answer)
		case KindManual:
			m, err := ManualChunkFromRecord(rec)
			require.NoError(t, err)
			assert.Equal(t, "product_care_guide", m.Product)
			assert.NotEmpty(t, m.Section)
		default:
			t.Fatalf("unexpected kind %q", rec.Kind)
		}
	}
}
