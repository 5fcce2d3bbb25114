// Package export writes the bills listing to a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/garyjia/billed/internal/application/bills"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SheetName is the name of the listing sheet
const SheetName = "Notes de frais"

// Header is the first row of the sheet, in the listing's column order
var Header = []any{"Type", "Nom", "Date", "Montant", "Statut", "Justificatif"}

// XLSXWriter renders listing rows as an .xlsx workbook
type XLSXWriter struct {
	logger *zap.Logger
}

// NewXLSXWriter creates a new writer
func NewXLSXWriter(logger *zap.Logger) *XLSXWriter {
	return &XLSXWriter{logger: logger}
}

// Write renders rows, in the given order, into a workbook written to w
func (x *XLSXWriter) Write(w io.Writer, rows []bills.BillView) error {
	f, err := x.build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile renders rows into a workbook saved at path
func (x *XLSXWriter) WriteFile(path string, rows []bills.BillView) error {
	f, err := x.build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	x.logger.Info("Bills exported", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

func (x *XLSXWriter) build(rows []bills.BillView) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}

		proof := ""
		if row.Bill.FileName != nil {
			proof = *row.Bill.FileName
		}
		values := []any{row.Bill.Type, row.Bill.Name, row.Date, row.Bill.Amount, row.Status, proof}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "F", 20); err != nil {
		x.logger.Warn("Failed to set column width", zap.Error(err))
	}
	return f, nil
}
