// Package report exports validation reports as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/validator"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Summary"
	SheetFiles   = "Files"
	SheetIssues  = "Issues"
)

var fileHeaders = []string{
	"File", "Mode", "Valid", "Outputs",
	"Input Messages", "Output Messages", "Input Dups", "Output Dups",
	"Input Checksum", "Output Checksum",
}

var issueHeaders = []string{"File", "Level", "Message"}

// XLSX renders rep as a workbook with summary, per-file and issue sheets.
func XLSX(rep *validator.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}
	for _, name := range []string{SheetFiles, SheetIssues} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("report: new sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("report: style: %w", err)
	}

	writeSummary(f, rep, bold)
	writeRows(f, SheetFiles, fileHeaders, fileRows(rep), bold)
	writeRows(f, SheetIssues, issueHeaders, issueRows(rep), bold)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, rep *validator.Report, bold int) {
	status := "PASSED"
	if !rep.Valid() {
		status = "FAILED"
	}
	s := rep.Summary
	rows := [][]any{
		{"Run ID", rep.RunID},
		{"Input Directory", rep.InputDir},
		{"Output Directory", rep.OutputDir},
		{"Started", rep.Started.Format(time.RFC3339)},
		{"Finished", rep.Finished.Format(time.RFC3339)},
		{"Overall Status", status},
		{"Total Files", s.Files},
		{"Valid Files", s.Valid},
		{"Invalid Files", s.Invalid},
		{"Total Input Messages", s.InputMessages},
		{"Total Output Messages", s.OutputMessages},
		{"Input Duplicates", s.InputDuplicates},
		{"Output Duplicates", s.OutputDuplicates},
	}
	for i, row := range rows {
		label, _ := excelize.CoordinatesToCellName(1, i+1)
		value, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(SheetSummary, label, row[0])
		f.SetCellValue(SheetSummary, value, row[1])
		f.SetCellStyle(SheetSummary, label, label, bold)
	}
	for i, msg := range rep.GlobalErrors {
		label, _ := excelize.CoordinatesToCellName(1, len(rows)+2+i)
		value, _ := excelize.CoordinatesToCellName(2, len(rows)+2+i)
		f.SetCellValue(SheetSummary, label, "Global Error")
		f.SetCellValue(SheetSummary, value, msg)
	}
	f.SetColWidth(SheetSummary, "A", "A", 24)
	f.SetColWidth(SheetSummary, "B", "B", 48)
}

func fileRows(rep *validator.Report) [][]any {
	rows := make([][]any, 0, len(rep.Files))
	for _, r := range rep.Files {
		outputs := make([]string, 0, len(r.OutputFiles))
		for _, o := range r.OutputFiles {
			outputs = append(outputs, filepath.Base(o))
		}
		rows = append(rows, []any{
			r.RelPath, string(r.Mode), strconv.FormatBool(r.Valid), strings.Join(outputs, ", "),
			r.InputMessages, r.OutputMessages, r.InputDuplicates, r.OutputDuplicates,
			r.InputChecksum, r.OutputChecksum,
		})
	}
	return rows
}

func issueRows(rep *validator.Report) [][]any {
	rows := make([][]any, 0)
	for _, r := range rep.Files {
		for _, e := range r.Errors {
			rows = append(rows, []any{r.RelPath, "ERROR", e})
		}
		for _, w := range r.Warnings {
			rows = append(rows, []any{r.RelPath, "WARNING", w})
		}
		for _, in := range r.Info {
			rows = append(rows, []any{r.RelPath, "INFO", in})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any, bold int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, bold)
	}
	for rowIdx, row := range rows {
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(h) + 4)
		if width < 12 {
			width = 12
		}
		f.SetColWidth(sheet, col, col, width)
	}
}
