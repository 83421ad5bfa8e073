// Package parsers reads tabular input files into the shared table model
// and provides the header-tolerant readers used by reconciliation.
// Engine choice is by extension: XLSX/XLSM through excelize, CSV through
// the standard csv reader.
package parsers

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/models"
	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// ReadTable reads the first sheet of a spreadsheet, or a CSV file, into
// a table. The first non-empty row is taken as the header row.
func ReadTable(path string) (*models.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcelTable(path)
	case ".csv":
		return readCSVTable(path)
	default:
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path,
			"unsupported file type (expected .xlsx, .xlsm or .csv)", nil)
	}
}

func readExcelTable(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidData, path, "failed to read sheet rows", err)
	}

	table := tableFromRows(rows)
	logger.GetGlobalLogger().WithComponent("parsers").WithFields(logger.Fields{
		"file":    path,
		"sheet":   sheets[0],
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Info("Input sheet loaded")
	return table, nil
}

func readCSVTable(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path, "malformed CSV", err)
		}
		rows = append(rows, record)
	}

	table := tableFromRows(rows)
	logger.GetGlobalLogger().WithComponent("parsers").WithFields(logger.Fields{
		"file":    path,
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Info("Input CSV loaded")
	return table, nil
}

// tableFromRows builds a table from raw cell rows. The first row with
// any content becomes the header row; fully blank data rows are dropped.
func tableFromRows(raw [][]string) *models.Table {
	headerIdx := -1
	for i, row := range raw {
		if !rowIsBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return &models.Table{}
	}

	headers := make([]string, 0, len(raw[headerIdx]))
	for _, h := range raw[headerIdx] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := &models.Table{Columns: headers}
	for _, row := range raw[headerIdx+1:] {
		if rowIsBlank(row) {
			continue
		}
		record := make(models.Row, len(headers))
		for c, header := range headers {
			if header == "" {
				continue
			}
			if c < len(row) {
				record[header] = row[c]
			}
		}
		table.Rows = append(table.Rows, record)
	}
	return table
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
