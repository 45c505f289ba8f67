// Package parser decodes uploaded spreadsheet billing exports into raw
// sheets. It gates on file extension and reads the first suitable worksheet.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are not Excel files.
	ErrUnsupportedFormat = errors.New("unsupported file format: expected .xlsx or .xls")
	// ErrEmptyWorkbook is returned when a workbook contains no sheets.
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// Sheet is the raw grid read from one worksheet: the original header row
// plus data rows, untyped and untrimmed.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SupportedExtension reports whether the filename carries a spreadsheet
// extension this pipeline accepts.
func SupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xls"
}

// ParseWorkbook decodes an uploaded spreadsheet and returns its billing
// sheet. The first row is treated as the header row. A workbook whose data
// region is empty yields a Sheet with no rows, not an error.
func ParseWorkbook(data []byte, filename string) (*Sheet, error) {
	if !SupportedExtension(filename) {
		return nil, ErrUnsupportedFormat
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", filename, err)
	}
	defer f.Close()

	name := findBillingSheet(f)
	if name == "" {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	sheet := &Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Headers = rows[0]
	if len(rows) > 1 {
		sheet.Rows = rows[1:]
	}
	return sheet, nil
}

// findBillingSheet picks the sheet most likely to hold billing data,
// preferring well-known names and falling back to the first sheet.
func findBillingSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	preferredNames := []string{
		"billing", "invoices", "transactions", "data", "sheet1",
	}
	for _, preferred := range preferredNames {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}

	return sheets[0]
}
