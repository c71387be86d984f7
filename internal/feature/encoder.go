// Package feature converts validated quote records into fixed-width numeric
// feature matrices for model training and inference.
package feature

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// TargetColumn is the regression target.
const TargetColumn = "quoted_price_sek"

// numericColumns come first in every matrix, in this order.
var numericColumns = []string{"weight_kg_m", "length_m", "quantity", "raw_material_price_eur_kg"}

// categoricalColumns are one-hot expanded into `<column>_<value>` dummies.
var categoricalColumns = []string{"profile_ref", "surface_treatment", "alloy"}

// ErrColumnMismatch is returned when apply-mode encoding is handed an
// unusable column contract.
var ErrColumnMismatch = eris.New("feature: column list mismatch")

// Matrix is a fixed-width numeric feature matrix plus the target vector.
type Matrix struct {
	Columns []string
	Rows    [][]float64
	Target  []float64
}

// RowsFromQuotes projects quotes onto feature rows, dropping any quote with a
// missing predictive field. The second return is the drop count.
func RowsFromQuotes(quotes []model.Quote) ([]model.FeatureRow, int) {
	rows := make([]model.FeatureRow, 0, len(quotes))
	dropped := 0
	for i := range quotes {
		row, ok := model.FeatureRowFromQuote(&quotes[i])
		if !ok {
			dropped++
			zap.L().Debug("feature: dropping incomplete quote", zap.String("quote_id", quotes[i].QuoteID))
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

// Fit encodes rows in fit mode: the categorical value sets are derived from
// this batch (sorted for a deterministic column order) and the resulting
// ordered column list becomes part of the model metadata.
func Fit(rows []model.FeatureRow) *Matrix {
	columns := append([]string{}, numericColumns...)
	for _, cat := range categoricalColumns {
		seen := map[string]bool{}
		for _, r := range rows {
			seen[categoricalValue(r, cat)] = true
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, v := range values {
			columns = append(columns, dummyName(cat, v))
		}
	}

	m, err := Apply(rows, columns)
	if err != nil {
		// Apply over columns derived from the same rows cannot misalign.
		panic(err)
	}
	return m
}

// Apply encodes rows in apply mode: projection onto an externally supplied
// column list. Categorical values unseen at fit time contribute to no column;
// expected columns absent from this batch are filled with zero; column order
// matches the supplied list exactly. This keeps single-row inference
// compatible with a model trained on a full batch.
func Apply(rows []model.FeatureRow, columns []string) (*Matrix, error) {
	if len(columns) == 0 {
		return nil, eris.Wrap(ErrColumnMismatch, "empty column list")
	}

	m := &Matrix{
		Columns: append([]string{}, columns...),
		Rows:    make([][]float64, len(rows)),
		Target:  make([]float64, len(rows)),
	}

	for i, r := range rows {
		values := map[string]float64{
			"weight_kg_m":               r.WeightKgM,
			"length_m":                  r.LengthM,
			"quantity":                  float64(r.Quantity),
			"raw_material_price_eur_kg": r.RawMaterialPriceEURKg,
		}
		for _, cat := range categoricalColumns {
			values[dummyName(cat, categoricalValue(r, cat))] = 1
		}

		encoded := make([]float64, len(columns))
		for j, col := range columns {
			encoded[j] = values[col] // absent -> 0
		}
		m.Rows[i] = encoded
		m.Target[i] = r.QuotedPriceSEK
	}

	return m, nil
}

func categoricalValue(r model.FeatureRow, column string) string {
	switch column {
	case "profile_ref":
		return r.ProfileRef
	case "surface_treatment":
		return r.SurfaceTreatment
	case "alloy":
		return r.Alloy
	}
	return ""
}

func dummyName(column, value string) string {
	return fmt.Sprintf("%s_%s", column, value)
}
