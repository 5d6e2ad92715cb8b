package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Technologies"

// MarshalXLSX renders the document's technology records as an Excel
// workbook with the same column layout as the CSV export.
func MarshalXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", xlsxSheet)

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %v", err)
	}

	for i, t := range doc.Technologies {
		row := []interface{}{
			t.ID,
			t.Title,
			t.Description,
			t.Category,
			t.Difficulty,
			string(t.Status),
			xlsxOptInt(t.Progress),
			t.Deadline,
			xlsxOptInt(t.DaysLeft),
			t.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %v", err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %v", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workbook: %v", err)
	}
	return buf.Bytes(), nil
}

// xlsxOptInt mirrors the CSV rendering of optional numeric columns
func xlsxOptInt(v *int) interface{} {
	if v == nil || *v == 0 {
		return ""
	}
	return *v
}
