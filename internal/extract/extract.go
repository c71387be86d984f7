// Package extract parses quote line items out of PDF page text.
package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// DocumentError reports a document that cannot produce quote rows, e.g. a
// missing date marker. The rest of the batch continues.
type DocumentError struct {
	Source string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("extract: %s: %s", e.Source, e.Reason)
}

// Document-level marker lines. Quote PDFs come in Swedish or English layouts;
// each marker is matched independently and all but the date are optional.
var (
	dateMarkers     = []string{"Datum:", "Date:"}
	alloyMarkers    = []string{"Legering:", "Default alloy:"}
	surfaceMarkers  = []string{"Ytbehandling:", "Surface treatment:"}
	rawPriceMarkers = []string{"Råvara:", "Raw material price:"}
)

// rawPricePattern pulls the numeric EUR/kg value out of a raw material line,
// decimal comma accepted ("2,43 Euro").
var rawPricePattern = regexp.MustCompile(`([\d.,]+)\s*(?:Euro|EUR)`)

// linePattern matches one product line: profile code, weight, length, one
// ignored numeric column, quantity, unit price, alloy token.
var linePattern = regexp.MustCompile(
	`(?P<profile>[A-Za-zÅÄÖåäö\-]{3,}(?:profil)?)\s+` +
		`(?P<weight>[\d.,]+)\s+` +
		`(?P<length>[\d.,]+)\s+` +
		`[\d.,]+\s+` +
		`(?P<quantity>\d+)\s+` +
		`(?P<price>[\d.,]+)\s+` +
		`(?P<alloy>[A-Za-z0-9ÅÄÖåäö\-]+)`,
)

// knownAlloys are the alloy tokens a product line may carry itself. Anything
// else falls back to the document's default alloy.
var knownAlloys = map[string]bool{
	"Rå":         true,
	"Raw":        true,
	"EN-AW-6060": true,
	"EN-AW-6063": true,
	"EN-AW-6082": true,
}

// docFields holds the shared metadata parsed from a document's marker lines.
type docFields struct {
	quoteDate        string
	defaultAlloy     string
	surfaceTreatment *string
	rawPriceEURKg    *float64
}

// Parser turns the page texts of quote documents into validated Quotes.
type Parser struct {
	tenant string
}

// NewParser creates a Parser emitting quotes for the given tenant.
func NewParser(tenant string) *Parser {
	return &Parser{tenant: tenant}
}

// ParseDocument parses one source document's page texts into valid Quotes.
// It returns the quotes, the number of lines dropped by parse or validation
// failure, and a *DocumentError when the document has no date marker.
// A document with zero extractable pages yields zero quotes and no error.
func (p *Parser) ParseDocument(pages []string, sourceFile string) ([]model.Quote, int, error) {
	if len(pages) == 0 {
		zap.L().Info("extract: no extractable pages", zap.String("source", sourceFile))
		return nil, 0, nil
	}
	text := strings.Join(pages, "\n")

	fields, err := parseDocFields(text, sourceFile)
	if err != nil {
		return nil, 0, err
	}

	stem := fileStem(sourceFile)
	var quotes []model.Quote
	dropped := 0

	for _, m := range linePattern.FindAllStringSubmatchIndex(text, -1) {
		offset := m[0]
		q, err := p.parseLine(text, m, fields, sourceFile, stem, offset)
		if err != nil {
			dropped++
			zap.L().Warn("extract: skipping line",
				zap.String("source", sourceFile),
				zap.Int("offset", offset),
				zap.Error(err),
			)
			continue
		}
		if err := q.Validate(); err != nil {
			dropped++
			zap.L().Warn("extract: dropping invalid quote",
				zap.String("source", sourceFile),
				zap.String("quote_id", q.QuoteID),
				zap.Error(err),
			)
			continue
		}
		quotes = append(quotes, *q)
	}

	return quotes, dropped, nil
}

// parseDocFields scans the document for marker lines. Only the date is
// mandatory.
func parseDocFields(text, sourceFile string) (*docFields, error) {
	fields := &docFields{}

	for _, line := range strings.Split(text, "\n") {
		if v, ok := markerValue(line, dateMarkers); ok && fields.quoteDate == "" {
			fields.quoteDate = v
		}
		if v, ok := markerValue(line, alloyMarkers); ok && fields.defaultAlloy == "" {
			fields.defaultAlloy = v
		}
		if v, ok := markerValue(line, surfaceMarkers); ok && fields.surfaceTreatment == nil {
			fields.surfaceTreatment = model.Ptr(v)
		}
		if _, ok := markerValue(line, rawPriceMarkers); ok && fields.rawPriceEURKg == nil {
			if m := rawPricePattern.FindStringSubmatch(line); m != nil {
				if price, err := cleanFloat(m[1]); err == nil {
					fields.rawPriceEURKg = model.Ptr(price)
				}
			}
		}
	}

	if fields.quoteDate == "" {
		return nil, &DocumentError{Source: sourceFile, Reason: "no date marker found"}
	}
	return fields, nil
}

// parseLine builds a candidate Quote from one regex match. The quote id is
// derived from the file stem and the match's character offset, so re-running
// over unchanged input reproduces identical ids.
func (p *Parser) parseLine(text string, m []int, fields *docFields, sourceFile, stem string, offset int) (*model.Quote, error) {
	group := func(name string) string {
		i := linePattern.SubexpIndex(name)
		return text[m[2*i]:m[2*i+1]]
	}

	weight, err := cleanFloat(group("weight"))
	if err != nil {
		return nil, fmt.Errorf("weight %q: %w", group("weight"), err)
	}
	length, err := cleanFloat(group("length"))
	if err != nil {
		return nil, fmt.Errorf("length %q: %w", group("length"), err)
	}
	quantity, err := strconv.Atoi(group("quantity"))
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", group("quantity"), err)
	}
	price, err := cleanFloat(group("price"))
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", group("price"), err)
	}

	alloy := group("alloy")
	if !knownAlloys[alloy] && fields.defaultAlloy != "" {
		alloy = fields.defaultAlloy
	}

	q := &model.Quote{
		UserID:                p.tenant,
		QuoteID:               fmt.Sprintf("%s_%d", stem, offset),
		QuoteDate:             fields.quoteDate,
		SourceFile:            filepath.Base(sourceFile),
		ProfileRef:            group("profile"),
		WeightKgM:             weight,
		LengthM:               length,
		Quantity:              quantity,
		SurfaceTreatment:      fields.surfaceTreatment,
		Alloy:                 alloy,
		RawMaterialPriceEURKg: fields.rawPriceEURKg,
		QuotedPriceSEK:        price,
	}
	q.Normalize()
	return q, nil
}

// markerValue returns the value after the first matching marker prefix.
func markerValue(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(line[idx+len(marker):]), true
	}
	return "", false
}

// cleanFloat parses a number that may use a decimal comma.
func cleanFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// fileStem returns the file name without directory or extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
