package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

// Dataset is a titled table ready for export.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Export encodes ds in the given report format.
func Export(format string, ds Dataset) ([]byte, error) {
	switch format {
	case models.FormatCSV:
		return exportCSV(ds)
	case models.FormatXLSX:
		return exportXLSX(ds)
	case models.FormatPDF:
		return RenderTablePDF(ds)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func ContentType(format string) string {
	switch format {
	case models.FormatCSV:
		return "text/csv"
	case models.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case models.FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

func exportCSV(ds Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ds.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(ds.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportXLSX(ds Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range ds.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	if len(ds.Headers) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(ds.Headers), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
