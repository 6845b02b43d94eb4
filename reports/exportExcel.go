package reports

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName       = "Sheet1"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExcelExporter is one row of an export.
type ExcelExporter interface {
	GetCellValues() []interface{}
}

// WriteExcel writes a single-sheet workbook: headings in row 1, one row per
// record below.
func WriteExcel(w io.Writer, rows []ExcelExporter, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for col, value := range row.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
