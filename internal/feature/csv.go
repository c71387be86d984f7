package feature

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/odens-ab/pricing-cli/internal/model"
)

// quoteCSVHeader is the raw labeled-row layout used by the quote-submission
// path: the seven predictive fields plus the target.
var quoteCSVHeader = []string{
	"weight_kg_m", "length_m", "quantity", "raw_material_price_eur_kg",
	"surface_treatment", "alloy", "profile_ref", TargetColumn,
}

// SaveMatrixCSV writes an encoded matrix to path, header first, target last.
func SaveMatrixCSV(path string, m *Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "feature: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "feature: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, m.Columns...), TargetColumn)); err != nil {
		return eris.Wrap(err, "feature: write header")
	}
	for i, row := range m.Rows {
		record := make([]string, 0, len(row)+1)
		for _, v := range row {
			record = append(record, formatFloat(v))
		}
		record = append(record, formatFloat(m.Target[i]))
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "feature: write row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "feature: flush csv")
	}
	return nil
}

// LoadMatrixCSV reads a matrix written by SaveMatrixCSV. The target column
// must be last.
func LoadMatrixCSV(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "feature: open csv")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "feature: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("feature: csv is empty")
	}

	header := records[0]
	if len(header) < 2 || header[len(header)-1] != TargetColumn {
		return nil, eris.Wrapf(ErrColumnMismatch, "last column must be %s", TargetColumn)
	}

	m := &Matrix{Columns: append([]string{}, header[:len(header)-1]...)}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, eris.Wrapf(ErrColumnMismatch, "row %d has %d columns, want %d", i+1, len(record), len(header))
		}
		row := make([]float64, len(record)-1)
		for j, s := range record[:len(record)-1] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "feature: row %d column %s", i+1, header[j])
			}
			row[j] = v
		}
		target, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "feature: row %d target", i+1)
		}
		m.Rows = append(m.Rows, row)
		m.Target = append(m.Target, target)
	}

	return m, nil
}

// AppendQuoteCSV appends one labeled quote row to the tenant's feature CSV,
// creating the file and header row if absent.
func AppendQuoteCSV(path string, row model.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "feature: create data dir")
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "feature: open csv for append")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(quoteCSVHeader); err != nil {
			return eris.Wrap(err, "feature: write header")
		}
	}
	record := []string{
		formatFloat(row.WeightKgM),
		formatFloat(row.LengthM),
		strconv.Itoa(row.Quantity),
		formatFloat(row.RawMaterialPriceEURKg),
		row.SurfaceTreatment,
		row.Alloy,
		row.ProfileRef,
		formatFloat(row.QuotedPriceSEK),
	}
	if err := w.Write(record); err != nil {
		return eris.Wrap(err, "feature: append row")
	}
	w.Flush()
	return eris.Wrap(w.Error(), "feature: flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
