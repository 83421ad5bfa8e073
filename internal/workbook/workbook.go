// Package workbook writes builder output into a copy of the official
// GSTR-1 template. Writing into a copy keeps the template's dropdowns,
// validations and styling intact; only data cells are touched.
package workbook

import (
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/builders"
	"gst-filing-service/internal/enrich"
	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// Template header and data positions, 1-based Excel rows. Every sheet of
// the official template carries its headers in row 4 with data from row 5.
const (
	headerRowIndex    = 4
	dataStartRowIndex = 5
)

// Writer populates a template copy sheet by sheet.
type Writer struct {
	outputPath string
	file       *excelize.File
	log        logger.Logger
}

// NewWriter copies the template to the output path and opens the copy.
func NewWriter(templatePath, outputPath string) (*Writer, error) {
	if err := copyFile(templatePath, outputPath); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, outputPath, err)
	}

	return &Writer{
		outputPath: outputPath,
		file:       f,
		log:        logger.GetGlobalLogger().WithComponent("workbook"),
	}, nil
}

// WriteAll runs every builder against its template sheet. Builders whose
// sheet is missing from the template are skipped with a warning; empty
// build results leave the sheet untouched. Row-level validation errors
// from all builders are collected and returned alongside.
func (w *Writer) WriteAll(records []enrich.Record, sheetBuilders []builders.Builder) ([]builders.RowError, error) {
	var allErrors []builders.RowError

	for _, builder := range sheetBuilders {
		sheetName := builder.SheetName()
		idx, err := w.file.GetSheetIndex(sheetName)
		if err != nil || idx < 0 {
			w.log.WithField("sheet", sheetName).Warn("Skipping missing template sheet")
			continue
		}

		headers, err := w.sheetHeaders(sheetName)
		if err != nil {
			return allErrors, err
		}

		rows, rowErrors := builder.Build(records, headers)
		allErrors = append(allErrors, rowErrors...)
		if len(rows) == 0 {
			w.log.WithField("sheet", sheetName).Debug("No rows for sheet")
			continue
		}

		if err := w.writeRows(sheetName, headers, rows); err != nil {
			return allErrors, err
		}
		w.log.WithFields(logger.Fields{
			"sheet":  sheetName,
			"rows":   len(rows),
			"errors": len(rowErrors),
		}).Info("Sheet populated")
	}

	return allErrors, nil
}

// Save persists the workbook.
func (w *Writer) Save() error {
	if err := w.file.Save(); err != nil {
		return apperrors.TransformError(apperrors.CodeWriteFailed, "workbook save", err)
	}
	return w.file.Close()
}

// sheetHeaders reads the template's header row for one sheet.
func (w *Writer) sheetHeaders(sheetName string) ([]string, error) {
	rows, err := w.file.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidData, w.outputPath, "failed to read template sheet "+sheetName, err)
	}
	if len(rows) < headerRowIndex {
		return nil, apperrors.ParseError(apperrors.CodeHeaderNotFound, w.outputPath,
			"template sheet "+sheetName+" has no header row", nil)
	}
	return rows[headerRowIndex-1], nil
}

func (w *Writer) writeRows(sheetName string, headers []string, rows []builders.OutputRow) error {
	for rowOffset, row := range rows {
		excelRow := dataStartRowIndex + rowOffset
		for colOffset, header := range headers {
			value, ok := row[header]
			if !ok || value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colOffset+1, excelRow)
			if err != nil {
				return apperrors.InternalError(apperrors.CodeUnexpectedError, "cell addressing", err)
			}
			if err := w.file.SetCellValue(sheetName, cell, value); err != nil {
				return apperrors.TransformError(apperrors.CodeWriteFailed, "sheet "+sheetName, err)
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperrors.FileError(apperrors.CodeFileNotFound, src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return apperrors.FileError(apperrors.CodeFilePermission, dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return apperrors.FileError(apperrors.CodeDirectoryError, dst, err)
	}
	return out.Close()
}
