package ledger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheet = "NDF Confirmations"

var headers = []string{
	"ID",
	"Original Filename",
	"New Filename",
	"Issuer",
	"Process Date",
	"tasa_fwd",
	"valor_nominal_usd",
	"fecha_inicio",
	"Error",
	"Warnings",
}

// WorkbookName returns the run-stamped ledger filename.
func WorkbookName(day time.Time) string {
	return fmt.Sprintf("cartas_ndf_%s.xlsx", day.Format("020106"))
}

// WriteXLSX renders the batch ledger as an XLSX workbook, one row per record
// in the order they were assembled.
func WriteXLSX(records []Record, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.ID)
		write(2, r.OriginalFilename)
		write(3, r.NewFilename)
		write(4, string(r.Issuer))
		write(5, r.ProcessDate)
		write(6, r.TasaFwd)
		write(7, r.ValorNominalUSD)
		write(8, r.FechaInicio)
		write(9, r.ErrorMessage)
		// Advisory validator flags: a row for review, not a failure.
		write(10, strings.Join(r.Warnings, "; "))
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "B", "C", 42) // filenames
	_ = f.SetColWidth(sheet, "D", "D", 20) // issuer
	_ = f.SetColWidth(sheet, "E", "E", 14) // date
	_ = f.SetColWidth(sheet, "F", "H", 18) // extracted fields
	_ = f.SetColWidth(sheet, "I", "J", 48) // error, warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("ledger.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
