package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `Offert NAP
Date: 2025-04-30
Default alloy: Rå
Surface treatment: Anodized
Raw material price: 2,43 Euro

Profil          Vikt   Längd  Art   Antal   Pris   Legering
Glaskil         1.055  20.2   1     68000   2.42   Raw
`

func TestParseDocumentSingleLine(t *testing.T) {
	p := NewParser("company_alpha")

	quotes, dropped, err := p.ParseDocument([]string{sampleDoc}, "PdfNAP (1).pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "company_alpha", q.UserID)
	assert.Equal(t, "2025-04-30", q.QuoteDate)
	assert.Equal(t, "PdfNAP (1).pdf", q.SourceFile)
	assert.Equal(t, "Glaskil", q.ProfileRef)
	assert.Equal(t, 1.055, q.WeightKgM)
	assert.Equal(t, 20.2, q.LengthM)
	assert.Equal(t, 68000, q.Quantity)
	assert.Equal(t, 2.42, q.QuotedPriceSEK)
	assert.Equal(t, "Raw", q.Alloy)
	require.NotNil(t, q.SurfaceTreatment)
	assert.Equal(t, "Anodized", *q.SurfaceTreatment)
	require.NotNil(t, q.RawMaterialPriceEURKg)
	assert.Equal(t, 2.43, *q.RawMaterialPriceEURKg)
	assert.Equal(t, "SEK", q.Currency)
	assert.True(t, q.IsValid)
}

func TestParseDocumentSwedishMarkers(t *testing.T) {
	doc := `Datum: 2025-03-15
Legering: EN-AW-6063
Ytbehandling: Powder Coated
Råvara: 2,50 Euro

Hörnvinkel   1,12   23,5   2   50000   2,82   xyz
`
	p := NewParser("company_alpha")
	quotes, dropped, err := p.ParseDocument([]string{doc}, "quote_02.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "Hörnvinkel", q.ProfileRef)
	assert.Equal(t, 1.12, q.WeightKgM)
	assert.Equal(t, 23.5, q.LengthM)
	// "xyz" is not a recognizable alloy, so the document default applies.
	assert.Equal(t, "EN-AW-6063", q.Alloy)
}

func TestParseDocumentMissingDate(t *testing.T) {
	doc := `Default alloy: Rå
Glaskil 1.055 20.2 1 68000 2.42 Raw
`
	p := NewParser("company_alpha")
	quotes, _, err := p.ParseDocument([]string{doc}, "quote_03.pdf")
	require.Error(t, err)
	assert.Empty(t, quotes)

	var derr *DocumentError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "quote_03.pdf", derr.Source)
}

func TestParseDocumentNoPages(t *testing.T) {
	p := NewParser("company_alpha")
	quotes, dropped, err := p.ParseDocument(nil, "scanned.pdf")
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Equal(t, 0, dropped)
}

func TestParseDocumentInvalidLineSkipped(t *testing.T) {
	doc := `Date: 2025-04-30
Default alloy: Rå
Glaskil    1.055  20.2  1  68000  2.42  Raw
Ytterram   0,00   24.0  1  50000  3.02  Raw
Karmlist   1.20   22.0  1  40000  2.97  Raw
`
	p := NewParser("company_alpha")
	quotes, dropped, err := p.ParseDocument([]string{doc}, "quote_04.pdf")
	require.NoError(t, err)

	// The zero-weight line fails validation and is dropped; the other two survive.
	assert.Equal(t, 1, dropped)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Glaskil", quotes[0].ProfileRef)
	assert.Equal(t, "Karmlist", quotes[1].ProfileRef)
}

func TestParseDocumentIdempotentIDs(t *testing.T) {
	p := NewParser("company_alpha")

	first, _, err := p.ParseDocument([]string{sampleDoc}, "PdfNAP (1).pdf")
	require.NoError(t, err)
	second, _, err := p.ParseDocument([]string{sampleDoc}, "PdfNAP (1).pdf")
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].QuoteID, second[0].QuoteID)
	assert.Equal(t, first[0], second[0])

	// The id embeds the source file stem.
	assert.Contains(t, first[0].QuoteID, "PdfNAP (1)_")
}

func TestParseDocumentMultiplePages(t *testing.T) {
	page1 := "Date: 2025-04-30\nDefault alloy: Rå\n"
	page2 := "Glaskil 1.055 20.2 1 68000 2.42 Raw\n"

	p := NewParser("company_alpha")
	quotes, _, err := p.ParseDocument([]string{page1, page2}, "multi.pdf")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
}

func TestCleanFloat(t *testing.T) {
	v, err := cleanFloat("2,43")
	require.NoError(t, err)
	assert.Equal(t, 2.43, v)

	v, err = cleanFloat("1.055")
	require.NoError(t, err)
	assert.Equal(t, 1.055, v)

	_, err = cleanFloat("abc")
	assert.Error(t, err)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "PdfNAP (1)", fileStem("data/quotes/PdfNAP (1).pdf"))
	assert.Equal(t, "quote", fileStem("quote.pdf"))
}
