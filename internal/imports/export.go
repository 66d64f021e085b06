package imports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

const exportSheet = "Items"

var exportCoreHeaders = []string{"sku", "name", "description", "unit_price", "reorder_level", "category_id"}

// ExportItems renders the full item catalog as an XLSX workbook. Custom field
// columns follow the core columns in display order.
func (s *service) ExportItems(ctx context.Context) ([]byte, string, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	fields, err := s.repo.ListCustomFields(ctx)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list custom fields")
	}

	headers := make([]string, 0, len(exportCoreHeaders)+len(fields))
	headers = append(headers, exportCoreHeaders...)
	for _, field := range fields {
		headers = append(headers, field.FieldKey)
	}

	file := excelize.NewFile()
	defer file.Close()
	file.SetSheetName("Sheet1", exportSheet)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve header cell")
		}
		if err := file.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header cell")
		}
	}

	for rowIdx, item := range items {
		values := []any{
			item.SKU,
			item.Name,
			stringOrEmpty(item.Description),
			item.UnitPrice.StringFixed(2),
			item.ReorderLevel,
			int64OrEmpty(item.CategoryID),
		}
		for _, field := range fields {
			value := ""
			if raw, ok := item.CustomData[field.FieldKey]; ok {
				value = fmt.Sprint(raw)
			}
			values = append(values, value)
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve data cell")
			}
			if err := file.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write data cell")
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook")
	}
	return buf.Bytes(), "items_export.xlsx", nil
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func int64OrEmpty(value *int64) any {
	if value == nil {
		return ""
	}
	return *value
}
