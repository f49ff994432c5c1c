package importer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmelnik/bookvault/internal/book"
	"github.com/asmelnik/bookvault/internal/history"
	"github.com/asmelnik/bookvault/internal/importer"
)

// fakeCatalog implements book.Repository; only BulkInsertDedup matters here.
type fakeCatalog struct {
	existingTitles map[string]struct{}
	insertErr      error
	inserted       []*book.Book
}

func (f *fakeCatalog) Create(context.Context, *book.Book) error     { return nil }
func (f *fakeCatalog) Archive(context.Context, string) (string, error) {
	return "", nil
}
func (f *fakeCatalog) Get(context.Context, string) (*book.Book, error) { return nil, nil }
func (f *fakeCatalog) Update(context.Context, string, book.Patch) (*book.Book, bool, error) {
	return nil, false, nil
}
func (f *fakeCatalog) List(context.Context, book.Filter, int, int) ([]*book.Book, error) {
	return nil, nil
}

func (f *fakeCatalog) BulkInsertDedup(_ context.Context, candidates []*book.Book) ([]*book.Book, []*book.Book, error) {
	if f.insertErr != nil {
		return nil, nil, f.insertErr
	}
	novel, duplicates := book.PartitionByTitle(f.existingTitles, candidates)
	for i, b := range novel {
		b.ID = string(rune('a' + i))
	}
	f.inserted = novel
	return novel, duplicates, nil
}

// fakeHistoryLedger implements history.Repository; only BulkAppend matters.
type fakeHistoryLedger struct {
	appended  []history.Point
	appendErr error
}

func (f *fakeHistoryLedger) Append(context.Context, string, int) error { return nil }
func (f *fakeHistoryLedger) ListByBook(context.Context, string, int, int) ([]*history.Entry, error) {
	return nil, nil
}
func (f *fakeHistoryLedger) DeleteByBook(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeHistoryLedger) BulkAppend(_ context.Context, points []history.Point) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, points...)
	return nil
}

func newReconciler(catalog *fakeCatalog, ledger *fakeHistoryLedger) *importer.Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	years := book.YearBounds{Min: 1457, Max: 2100}
	return importer.NewReconciler(catalog, ledger, years, logger)
}

func candidate(title string, year int) importer.Candidate {
	return importer.Candidate{
		"title":            title,
		"publication_year": year,
		"genre":            []string{"sci-fi"},
		"price":            999,
	}
}

/*
TestReconcile_Partition verifies the three-way split: valid novel rows are
loaded, known titles land in duplicates, broken rows in invalid.
*/
func TestReconcile_Partition(t *testing.T) {
	catalog := &fakeCatalog{existingTitles: map[string]struct{}{"Hyperion": {}}}
	ledger := &fakeHistoryLedger{}
	reconciler := newReconciler(catalog, ledger)

	batch := []importer.Candidate{
		candidate("Dune", 1965),
		candidate("Hyperion", 1989),                 // already in the catalog
		{"title": "No Year", "genre": "fantasy"},    // missing publication_year
	}

	result, err := reconciler.Reconcile(context.Background(), batch)
	require.NoError(t, err)

	require.Len(t, result.Loaded, 1)
	assert.Equal(t, "Dune", result.Loaded[0].Title)
	assert.NotEmpty(t, result.Loaded[0].ID)

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "Hyperion", result.Duplicates[0].Title)

	require.Len(t, result.Invalid, 1)
	assert.Equal(t, "No Year", result.Invalid[0].Values["title"])
	assert.Contains(t, result.Invalid[0].Error, "publication_year")
}

/*
TestReconcile_InvalidRows covers the per-row validation failures; one bad
row never aborts the batch.
*/
func TestReconcile_InvalidRows(t *testing.T) {
	tests := []struct {
		name        string
		row         importer.Candidate
		wantProblem string
	}{
		{
			"missing_title",
			importer.Candidate{"publication_year": 1965, "genre": "sci-fi"},
			"title",
		},
		{
			"year_out_of_range",
			importer.Candidate{"title": "Old", "publication_year": 1200, "genre": "history"},
			"publication_year",
		},
		{
			"empty_genre",
			importer.Candidate{"title": "Tagless", "publication_year": 2000},
			"genre",
		},
		{
			"negative_price",
			importer.Candidate{"title": "Cheap", "publication_year": 2000, "genre": "thriller", "price": -5},
			"price",
		},
		{
			"non_integer_year",
			importer.Candidate{"title": "Odd", "publication_year": "not-a-year", "genre": "mystery"},
			"publication_year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{}
			reconciler := newReconciler(catalog, &fakeHistoryLedger{})

			result, err := reconciler.Reconcile(context.Background(), []importer.Candidate{tt.row, candidate("Anchor", 2001)})
			require.NoError(t, err)

			require.Len(t, result.Invalid, 1)
			assert.Contains(t, result.Invalid[0].Error, tt.wantProblem)

			// The well-formed row in the same batch still loads.
			require.Len(t, result.Loaded, 1)
			assert.Equal(t, "Anchor", result.Loaded[0].Title)
		})
	}
}

/*
TestReconcile_InitialSnapshots verifies each loaded book gets one history
point carrying its import price (zero when absent).
*/
func TestReconcile_InitialSnapshots(t *testing.T) {
	catalog := &fakeCatalog{}
	ledger := &fakeHistoryLedger{}
	reconciler := newReconciler(catalog, ledger)

	free := importer.Candidate{"title": "Freebie", "publication_year": 2010, "genre": "promo"}
	result, err := reconciler.Reconcile(context.Background(), []importer.Candidate{
		candidate("Dune", 1965),
		free,
	})
	require.NoError(t, err)
	require.Len(t, result.Loaded, 2)

	require.Len(t, ledger.appended, 2)
	assert.Equal(t, result.Loaded[0].ID, ledger.appended[0].BookID)
	assert.Equal(t, 999, ledger.appended[0].Price)
	assert.Equal(t, 0, ledger.appended[1].Price)
}

/*
TestReconcile_GenreString verifies delimited genre text is split into tags.
*/
func TestReconcile_GenreString(t *testing.T) {
	catalog := &fakeCatalog{}
	reconciler := newReconciler(catalog, &fakeHistoryLedger{})

	row := importer.Candidate{
		"title":            "Split Me",
		"publication_year": 2015,
		"genre":            "sci-fi, adventure , space opera",
	}

	result, err := reconciler.Reconcile(context.Background(), []importer.Candidate{row})
	require.NoError(t, err)
	require.Len(t, result.Loaded, 1)
	assert.Equal(t, []string{"sci-fi", "adventure", "space opera"}, result.Loaded[0].Genre)
}

/*
TestReconcile_InsertFault propagates a store failure; nothing reaches the
ledger.
*/
func TestReconcile_InsertFault(t *testing.T) {
	catalog := &fakeCatalog{insertErr: errors.New("store down")}
	ledger := &fakeHistoryLedger{}
	reconciler := newReconciler(catalog, ledger)

	_, err := reconciler.Reconcile(context.Background(), []importer.Candidate{candidate("Dune", 1965)})
	require.Error(t, err)
	assert.Empty(t, ledger.appended)
}

/*
TestReconcile_LedgerFault surfaces a snapshot failure after the insert; the
inserted rows are not rolled back.
*/
func TestReconcile_LedgerFault(t *testing.T) {
	catalog := &fakeCatalog{}
	ledger := &fakeHistoryLedger{appendErr: errors.New("ledger down")}
	reconciler := newReconciler(catalog, ledger)

	_, err := reconciler.Reconcile(context.Background(), []importer.Candidate{candidate("Dune", 1965)})
	require.Error(t, err)
	assert.Len(t, catalog.inserted, 1)
}

/*
TestReconcile_EmptyBatch normalizes to empty, non-nil partitions.
*/
func TestReconcile_EmptyBatch(t *testing.T) {
	reconciler := newReconciler(&fakeCatalog{}, &fakeHistoryLedger{})

	result, err := reconciler.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Loaded)
	assert.NotNil(t, result.Invalid)
	assert.NotNil(t, result.Duplicates)
	assert.Empty(t, result.Loaded)
}
