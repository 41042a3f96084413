package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/arunkumar2k5/clapclient/internal/parts"
)

// Workbook accumulates one sheet per processed batch: columns are
// components, rows are attributes, plus an appended free-text
// justification column.
type Workbook struct {
	file   *excelize.File
	sheets int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet writes one batch comparison. The generated justification
// text, if any, lands in the extra column on the first data row, even
// when the table itself is empty (generation-only batches have a
// write-up but no attributes).
func (w *Workbook) AddSheet(name string, table parts.Table, justification string) error {
	if name == "" {
		name = fmt.Sprintf("Batch %d", w.sheets+1)
	}

	if w.sheets == 0 {
		// Reuse the default sheet excelize creates.
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}
	w.sheets++

	header := []any{"Attribute"}
	for _, col := range table.Columns {
		header = append(header, col.Name)
	}
	header = append(header, "Justification")
	if err := w.setRow(name, 1, header); err != nil {
		return err
	}

	for i, attr := range table.Attributes {
		row := []any{attr}
		for _, col := range table.Columns {
			row = append(row, col.Values[i])
		}
		if err := w.setRow(name, i+2, row); err != nil {
			return err
		}
	}

	if justification != "" {
		cell, err := excelize.CoordinatesToCellName(len(table.Columns)+2, 2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := w.file.SetCellValue(name, cell, justification); err != nil {
			return fmt.Errorf("set justification on %s: %w", name, err)
		}
	}
	return nil
}

func (w *Workbook) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d on %s: %w", row, sheet, err)
	}
	return nil
}

// Save writes the workbook to path.
func (w *Workbook) Save(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying file resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}
