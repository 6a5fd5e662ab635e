package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter implements Writer by saving an .xlsx file per ticker.
type ExcelWriter struct {
	dir string
}

// NewExcelWriter creates an ExcelWriter that writes into dir.
func NewExcelWriter(dir string) *ExcelWriter {
	return &ExcelWriter{dir: dir}
}

// Write renders the workbook and saves it as <dir>/<ticker>.xlsx.
func (w *ExcelWriter) Write(ctx context.Context, ticker string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("renaming default sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet.Name, err)
		}

		for rowIdx, row := range sheet.Rows {
			if len(row) == 0 {
				continue
			}
			cellRef, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("addressing row %d of %s: %w", rowIdx+1, sheet.Name, err)
			}
			if err := f.SetSheetRow(sheet.Name, cellRef, &row); err != nil {
				return fmt.Errorf("writing row %d of %s: %w", rowIdx+1, sheet.Name, err)
			}
		}
	}

	path := filepath.Join(w.dir, ticker+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
