// Package xlsx exports the ledger snapshot and the valuation history to an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetPositions = "Positions"
	SheetHistory   = "History"

	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var positionHeaders = []string{"Category", "Symbol", "Name", "Quantity", "Unit Price", "Currency", "Market Value", "Notes", "ID"}

// Snapshot is the data written to the workbook
type Snapshot struct {
	Positions   []domain.Position
	History     []domain.ValuePoint // oldest first
	GeneratedAt time.Time
}

// Build creates the workbook. The caller must close it.
func Build(snap Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPositions); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writePositions(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetHistory); err != nil {
		f.Close()
		return nil, fmt.Errorf("create history sheet: %w", err)
	}
	if err := writeHistory(f, snap.History); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w
func Write(w io.Writer, snap Snapshot) error {
	f, err := Build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteFile builds the workbook and saves it to path
func WriteFile(path string, snap Snapshot) error {
	f, err := Build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writePositions(f *excelize.File, snap Snapshot) error {
	if err := f.SetSheetRow(SheetPositions, "A1", &positionHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	total := decimal.Zero
	for idx, p := range snap.Positions {
		row := []any{
			string(p.Category),
			p.SymbolOrEmpty(),
			p.Name,
			p.Quantity.InexactFloat64(),
			p.UnitPrice.InexactFloat64(),
			p.Currency,
			p.MarketValue().InexactFloat64(),
			p.NotesOrEmpty(),
			p.ID.String(),
		}
		if err := f.SetSheetRow(SheetPositions, fmt.Sprintf("A%d", idx+2), &row); err != nil {
			return fmt.Errorf("write position %s: %w", p.ID, err)
		}
		total = total.Add(p.MarketValue())
	}

	totalRow := len(snap.Positions) + 3
	f.SetCellValue(SheetPositions, fmt.Sprintf("F%d", totalRow), "Total")
	f.SetCellValue(SheetPositions, fmt.Sprintf("G%d", totalRow), total.InexactFloat64())
	if !snap.GeneratedAt.IsZero() {
		f.SetCellValue(SheetPositions, fmt.Sprintf("A%d", totalRow), "Generated "+snap.GeneratedAt.UTC().Format(time.RFC3339))
	}

	f.SetColWidth(SheetPositions, "A", "A", 14)
	f.SetColWidth(SheetPositions, "C", "C", 24)
	f.SetColWidth(SheetPositions, "D", "G", 14)
	f.SetColWidth(SheetPositions, "H", "H", 30)
	f.SetColWidth(SheetPositions, "I", "I", 38)
	return nil
}

func writeHistory(f *excelize.File, points []domain.ValuePoint) error {
	f.SetCellValue(SheetHistory, "A1", "Date")
	f.SetCellValue(SheetHistory, "B1", "Total Value")
	for idx, p := range points {
		row := idx + 2
		f.SetCellValue(SheetHistory, fmt.Sprintf("A%d", row), p.Key)
		if err := f.SetCellValue(SheetHistory, fmt.Sprintf("B%d", row), p.Value); err != nil {
			return fmt.Errorf("write history %s: %w", p.Key, err)
		}
	}
	f.SetColWidth(SheetHistory, "A", "B", 14)
	return nil
}
