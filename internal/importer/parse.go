package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"buildsite/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// Logical columns and the header spellings accepted for each. Headers are
// compared case-insensitively with spaces, hyphens and underscores removed.
var headerSynonyms = map[string][]string{
	"item_name": {"itemname", "item", "name", "product", "material"},
	"quantity":  {"quantity", "qty", "amount", "count"},
	"unit":      {"unit", "uom", "units", "measure"},
	"price":     {"price", "cost", "unitprice", "rate", "currentprice"},
}

// ParseCSV reads an uploaded CSV file into raw rows. The first record is the
// header; display row numbers start at 2.
func ParseCSV(r io.Reader, requirePrice bool) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperror.Validation("Could not parse CSV file: %v", err)
	}

	return rowsFromRecords(records, requirePrice)
}

// ParseXLSX reads the first sheet of an uploaded spreadsheet into raw rows.
func ParseXLSX(r io.Reader, requirePrice bool) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Validation("Could not parse spreadsheet file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.Validation("Spreadsheet has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.Validation("Could not read spreadsheet rows: %v", err)
	}

	return rowsFromRecords(records, requirePrice)
}

func rowsFromRecords(records [][]string, requirePrice bool) ([]RawRow, error) {
	if len(records) == 0 {
		return nil, apperror.Validation("File is empty")
	}

	columns, missing := matchHeaders(records[0], requirePrice)
	if len(missing) > 0 {
		return nil, apperror.Validation("Missing required columns: %s", strings.Join(missing, ", "))
	}

	if len(records)-1 > MaxRows {
		return nil, apperror.Validation("Import exceeds the maximum of %d rows", MaxRows)
	}

	rows := make([]RawRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		rows = append(rows, RawRow{
			ItemName:   cell(record, columns["item_name"]),
			Quantity:   cell(record, columns["quantity"]),
			Unit:       cell(record, columns["unit"]),
			Price:      cell(record, columns["price"]),
			DisplayRow: i + 2, // 1-based, offset by the header row
		})
	}

	return rows, nil
}

// matchHeaders maps logical columns to header indexes. item_name and quantity
// are always required; price is required only for the warehouse variant.
func matchHeaders(header []string, requirePrice bool) (map[string]int, []string) {
	columns := map[string]int{"item_name": -1, "quantity": -1, "unit": -1, "price": -1}

	for idx, h := range header {
		canonical := canonicalHeader(h)
		for logical, synonyms := range headerSynonyms {
			if columns[logical] != -1 {
				continue
			}
			for _, syn := range synonyms {
				if canonical == syn {
					columns[logical] = idx
					break
				}
			}
		}
	}

	var missing []string
	if columns["item_name"] == -1 {
		missing = append(missing, "item name")
	}
	if columns["quantity"] == -1 {
		missing = append(missing, "quantity")
	}
	if requirePrice && columns["price"] == -1 {
		missing = append(missing, "price")
	}

	return columns, missing
}

func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, h)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
