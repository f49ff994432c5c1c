package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
)

// ReadWorkbook parses an .xlsx stream into candidate rows.
//
// The header row of the first sheet must be set-equal to the configured
// column names (order-independent, exact comparison — stray whitespace in a
// header cell is a mismatch). Any mismatch aborts the whole import before a
// single data row is read.
func ReadWorkbook(reader io.Reader, columns []string) ([]Candidate, error) {
	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, apperr.ValidationError("Cannot read spreadsheet: " + err.Error())
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, apperr.ValidationError("Spreadsheet contains no sheets")
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, apperr.ValidationError("Cannot read spreadsheet rows: " + err.Error())
	}
	if len(rows) == 0 {
		return nil, apperr.ValidationError("Spreadsheet is missing the header row")
	}

	header := rows[0]
	if err := checkHeader(header, columns); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		candidate := Candidate{}
		for position, column := range header {
			if position < len(row) && row[position] != "" {
				candidate[column] = row[position]
			}
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// checkHeader enforces set-equality between the actual and expected columns.
func checkHeader(header, columns []string) error {
	expected := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		expected[column] = struct{}{}
	}

	actual := make(map[string]struct{}, len(header))
	for _, cell := range header {
		actual[cell] = struct{}{}
	}

	if len(actual) == len(expected) {
		match := true
		for column := range expected {
			if _, found := actual[column]; !found {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}

	sorted := append([]string(nil), columns...)
	sort.Strings(sorted)
	return apperr.ValidationError(fmt.Sprintf(
		"Spreadsheet header does not match the expected column set: %s (check for extra columns, typos, or stray spaces)",
		strings.Join(sorted, ", "),
	))
}

// isBlankRow reports whether every cell in the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
