package imports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestParseCSV(t *testing.T) {
	path := writeTempFile(t, "items.csv", "SKU,Name,unit_price\nA-1,Widget,9.99\nA-2,Gadget,12.50\n")

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if len(parsed.Headers) != 3 || parsed.Headers[0] != "sku" || parsed.Headers[2] != "unit_price" {
		t.Fatalf("headers not normalized: %v", parsed.Headers)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(parsed.Rows))
	}
	if parsed.Rows[1]["name"] != "Gadget" {
		t.Fatalf("unexpected row value: %v", parsed.Rows[1])
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	path := writeTempFile(t, "items.csv", "\ufeffsku,name,unit_price\nA-1,Widget,9.99\n")

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if parsed.Headers[0] != "sku" {
		t.Fatalf("BOM not stripped from first header: %q", parsed.Headers[0])
	}
}

func TestParseCSVToleratesRaggedRows(t *testing.T) {
	path := writeTempFile(t, "items.csv", "sku,name,unit_price,color\nA-1,Widget,9.99\n")

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if _, ok := parsed.Rows[0]["color"]; ok {
		t.Fatalf("short row must not carry the missing column: %v", parsed.Rows[0])
	}
}

func TestParseXLSX(t *testing.T) {
	file := excelize.NewFile()
	_ = file.SetCellValue("Sheet1", "A1", "sku")
	_ = file.SetCellValue("Sheet1", "B1", "name")
	_ = file.SetCellValue("Sheet1", "C1", "unit_price")
	_ = file.SetCellValue("Sheet1", "A2", "B-1")
	_ = file.SetCellValue("Sheet1", "B2", "Bolt")
	_ = file.SetCellValue("Sheet1", "C2", "0.25")
	path := filepath.Join(t.TempDir(), "items.xlsx")
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if len(parsed.Rows) != 1 || parsed.Rows[0]["sku"] != "B-1" {
		t.Fatalf("unexpected parse result: %+v", parsed.Rows)
	}
}

func TestParseFileRejectsUnknownExtension(t *testing.T) {
	path := writeTempFile(t, "items.txt", "sku,name\n")
	if _, err := ParseFile(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestSupportedExtension(t *testing.T) {
	cases := map[string]bool{
		"catalog.csv":  true,
		"catalog.XLSX": true,
		"catalog.xls":  true,
		"catalog.pdf":  false,
		"catalog":      false,
	}
	for name, want := range cases {
		if got := SupportedExtension(name); got != want {
			t.Errorf("SupportedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}
