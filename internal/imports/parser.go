package imports

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	extCSV  = ".csv"
	extXLSX = ".xlsx"
	extXLS  = ".xls"
)

// ParsedFile is the format-neutral output of a catalog file parse. Headers
// keep the file's column order; row values are keyed by normalized header.
type ParsedFile struct {
	Headers []string
	Rows    []map[string]string
}

// SupportedExtension reports whether the filename carries an importable extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extCSV, extXLSX, extXLS:
		return true
	default:
		return false
	}
}

// ParseFile reads a spooled upload into headers and rows, dispatching on the
// file extension.
func ParseFile(path string) (*ParsedFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case extCSV:
		return parseCSV(path)
	case extXLSX, extXLS:
		return parseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

func parseCSV(path string) (*ParsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

func parseXLSX(path string) (*ParsedFile, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*ParsedFile, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	headers := make([]string, 0, len(records[0]))
	for i, raw := range records[0] {
		if i == 0 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		headers = append(headers, normalizeHeader(raw))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(record) {
				continue
			}
			row[header] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}

	return &ParsedFile{Headers: headers, Rows: rows}, nil
}

func normalizeHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
