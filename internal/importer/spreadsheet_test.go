package importer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/asmelnik/bookvault/internal/importer"
	"github.com/asmelnik/bookvault/internal/platform/apperr"
)

var importColumns = []string{
	"title", "publication_year", "genre", "price", "author", "description", "cover_image",
}

// buildWorkbook writes rows (header first) into an in-memory .xlsx stream.
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buffer, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buffer.Bytes())
}

func headerRow() []any {
	row := make([]any, len(importColumns))
	for i, column := range importColumns {
		row[i] = column
	}
	return row
}

/*
TestReadWorkbook_HappyPath maps data cells to their header columns and skips
empty cells.
*/
func TestReadWorkbook_HappyPath(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		headerRow(),
		{"Dune", "1965", "sci-fi", "999", "Frank Herbert", "", ""},
		{"Hyperion", "1989", "sci-fi,space opera", "1299", "", "", ""},
	})

	candidates, err := importer.ReadWorkbook(reader, importColumns)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Dune", candidates[0]["title"])
	assert.Equal(t, "1965", candidates[0]["publication_year"])
	assert.Equal(t, "Frank Herbert", candidates[0]["author"])

	// Empty cells are omitted, not stored as empty strings.
	_, present := candidates[0]["description"]
	assert.False(t, present)
}

/*
TestReadWorkbook_HeaderMismatch aborts the whole batch before reading any
data row: missing columns, extra columns, and stray whitespace all fail.
*/
func TestReadWorkbook_HeaderMismatch(t *testing.T) {
	tests := []struct {
		name   string
		header []any
	}{
		{"missing_column", []any{"title", "publication_year", "genre", "price", "author", "description"}},
		{"extra_column", append(headerRow(), "isbn")},
		{"typo", []any{"titel", "publication_year", "genre", "price", "author", "description", "cover_image"}},
		{"stray_whitespace", []any{"title ", "publication_year", "genre", "price", "author", "description", "cover_image"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := buildWorkbook(t, [][]any{
				tt.header,
				{"Dune", "1965", "sci-fi", "999", "", "", ""},
			})

			_, err := importer.ReadWorkbook(reader, importColumns)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

/*
TestReadWorkbook_HeaderOrderIrrelevant accepts any column permutation.
*/
func TestReadWorkbook_HeaderOrderIrrelevant(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"price", "title", "genre", "publication_year", "cover_image", "description", "author"},
		{"999", "Dune", "sci-fi", "1965", "", "", ""},
	})

	candidates, err := importer.ReadWorkbook(reader, importColumns)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Dune", candidates[0]["title"])
	assert.Equal(t, "999", candidates[0]["price"])
}

/*
TestReadWorkbook_SkipsBlankRows ignores fully empty rows between records.
*/
func TestReadWorkbook_SkipsBlankRows(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		headerRow(),
		{"", "", "", "", "", "", ""},
		{"Dune", "1965", "sci-fi", "999", "", "", ""},
	})

	candidates, err := importer.ReadWorkbook(reader, importColumns)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

/*
TestReadWorkbook_NotASpreadsheet rejects arbitrary bytes with a validation
error rather than a panic or opaque failure.
*/
func TestReadWorkbook_NotASpreadsheet(t *testing.T) {
	_, err := importer.ReadWorkbook(bytes.NewReader([]byte("definitely not xlsx")), importColumns)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
