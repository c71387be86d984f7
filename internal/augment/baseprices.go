package augment

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadBasePricesXLSX reads a profile base-price table from the first sheet of
// an xlsx workbook. Column A is the profile reference, column B the base unit
// price; a non-numeric first row is treated as a header and skipped.
func LoadBasePricesXLSX(path string) (map[string]float64, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "augment: open base-price xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("augment: base-price xlsx has no sheets")
	}

	prices := make(map[string]float64)
	for i, row := range f.Sheets[0].Rows {
		if len(row.Cells) < 2 {
			continue
		}
		profile := strings.TrimSpace(row.Cells[0].String())
		raw := strings.TrimSpace(row.Cells[1].String())
		if profile == "" || raw == "" {
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, eris.Wrapf(err, "augment: row %d: bad base price %q for %q", i+1, raw, profile)
		}
		if price <= 0 {
			return nil, eris.Errorf("augment: row %d: base price for %q must be positive", i+1, profile)
		}
		prices[profile] = price
	}

	if len(prices) == 0 {
		return nil, eris.New("augment: base-price xlsx contains no usable rows")
	}
	return prices, nil
}
