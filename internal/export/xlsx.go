package export

import (
	"fmt"

	"github.com/alvmarrod/domain-finder/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the ranked records
const SheetName = "Expired Domains"

const columnWidth = 15

// XLSXWriter writes a spreadsheet with one header row and one row per record
type XLSXWriter struct{}

// Extension implements Writer
func (XLSXWriter) Extension() string { return FormatXLSX }

// Write implements Writer
func (XLSXWriter) Write(path string, records []domain.EvaluationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, columnWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(i+1, rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
