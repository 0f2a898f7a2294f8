package result

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/i18n"
)

// Sheet names used by ExportWorkbook.
const (
	SheetPreferred    = "preferred"
	SheetAlternatives = "alternatives"
)

// ExportWorkbook writes the preferred and alternative tables to w as an
// .xlsx workbook, one sheet per table. Probabilities are stored as numbers
// with a percent format.
func ExportWorkbook(w io.Writer, rec *api.Recommendations, p *i18n.Printer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPreferred); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAlternatives); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	pct, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	var preferred, alternatives []api.RecItem
	if rec != nil {
		preferred, alternatives = rec.Preferred, rec.Alternatives
	}
	for sheet, items := range map[string][]api.RecItem{SheetPreferred: preferred, SheetAlternatives: alternatives} {
		if err := writeSheet(f, sheet, items, pct, p); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, items []api.RecItem, pct int, p *i18n.Printer) error {
	header := make([]any, 0, 7)
	for _, h := range HeaderRow(p) {
		header = append(header, h)
	}
	header = append(header, "tags")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{i + 1, it.University, it.Major, it.Probability, it.Competitiveness, it.Bucket, strings.Join(it.Tags, ", ")}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	if len(items) > 0 {
		end, _ := excelize.CoordinatesToCellName(4, len(items)+1)
		if err := f.SetCellStyle(sheet, "D2", end, pct); err != nil {
			return fmt.Errorf("styling %s: %w", sheet, err)
		}
	}
	return nil
}
