package export

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/xuri/excelize/v2"
)

// TotalsSheet is the worksheet name used for the totals table.
const TotalsSheet = "Totals"

var totalsHeader = []any{"Category", "Total"}

func writeXLSXFile(path string, totals *core.Totals) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("write output %s: close: %w", path, cerr))
		}
	}()

	if err := f.SetSheetName("Sheet1", TotalsSheet); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := f.SetSheetRow(TotalsSheet, "A1", &totalsHeader); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	for i, category := range totals.Keys() {
		total, _ := totals.Get(category)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		row := []any{category, cellValue(total)}
		if err := f.SetSheetRow(TotalsSheet, cell, &row); err != nil {
			return fmt.Errorf("write output %s: row %d: %w", path, i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// cellValue keeps totals numeric in the sheet. Integers beyond int64 are
// written as text so no digit is lost.
func cellValue(t *core.Total) any {
	if !t.IsInteger() {
		return t.Float64()
	}
	n, ok := new(big.Int).SetString(t.Decimal(), 10)
	if ok && n.IsInt64() {
		return n.Int64()
	}
	return t.Decimal()
}

// ReadTotalsXLSX returns the category and total columns of a workbook
// written by WriteTotalsFile, as displayed text.
func ReadTotalsXLSX(path string) ([][2]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(TotalsSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", TotalsSheet, err)
	}

	var out [][2]string
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		out = append(out, [2]string{row[0], row[1]})
	}
	return out, nil
}
