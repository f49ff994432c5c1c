package book_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmelnik/bookvault/internal/book"
	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/pkg/pointer"
)

// fakeRepository is an in-memory book.Repository with just enough behavior
// for service-level tests.
type fakeRepository struct {
	books map[string]*book.Book
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[string]*book.Book)}
}

func (r *fakeRepository) Create(_ context.Context, b *book.Book) error {
	for _, existing := range r.books {
		// Mirrors the store's dberr mapping of a unique violation.
		if existing.Title == b.Title {
			return apperr.ValidationError("create_book: duplicate key value (constraint books_title_key)")
		}
	}
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *fakeRepository) Archive(_ context.Context, id string) (string, error) {
	b, found := r.books[id]
	if !found {
		return "", apperr.NotFound("Resource")
	}
	b.Archived = true
	return id, nil
}

func (r *fakeRepository) Get(_ context.Context, id string) (*book.Book, error) {
	b, found := r.books[id]
	if !found {
		return nil, apperr.NotFound("Resource")
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepository) Update(_ context.Context, id string, patch book.Patch) (*book.Book, bool, error) {
	b, found := r.books[id]
	if !found {
		return nil, false, apperr.NotFound("Resource")
	}

	priceChanged := patch.Price != nil && (b.Price == nil || *b.Price != *patch.Price)

	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.PublicationYear != nil {
		b.PublicationYear = *patch.PublicationYear
	}
	if patch.Genre != nil {
		b.Genre = patch.Genre
	}
	if patch.Author != nil {
		b.Author = patch.Author
	}
	if patch.Description != nil {
		b.Description = patch.Description
	}
	if patch.CoverImage != nil {
		b.CoverImage = patch.CoverImage
	}
	if patch.Price != nil {
		b.Price = patch.Price
	}

	clone := *b
	return &clone, priceChanged, nil
}

func (r *fakeRepository) List(_ context.Context, f book.Filter, limit, offset int) ([]*book.Book, error) {
	out := []*book.Book{}
	for _, b := range r.books {
		if b.Archived {
			continue
		}
		if f.Title != "" && b.Title != f.Title {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeRepository) BulkInsertDedup(_ context.Context, candidates []*book.Book) ([]*book.Book, []*book.Book, error) {
	existing := make(map[string]struct{}, len(r.books))
	for _, b := range r.books {
		existing[b.Title] = struct{}{}
	}
	novel, duplicates := book.PartitionByTitle(existing, candidates)
	for i, b := range novel {
		b.ID = string(rune('a' + i))
		clone := *b
		r.books[b.ID] = &clone
	}
	return novel, duplicates, nil
}

// fakeRecorder captures price snapshots appended by the service.
type fakeRecorder struct {
	appends []struct {
		BookID string
		Price  int
	}
}

func (f *fakeRecorder) Append(_ context.Context, bookID string, price int) error {
	f.appends = append(f.appends, struct {
		BookID string
		Price  int
	}{bookID, price})
	return nil
}

func newService(t *testing.T) (*book.Service, *fakeRepository, *fakeRecorder) {
	t.Helper()
	repo := newFakeRepository()
	recorder := &fakeRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := book.NewService(repo, recorder, nil, book.YearBounds{Min: 1457, Max: 2100}, logger)
	return svc, repo, recorder
}

func validInput() book.Input {
	return book.Input{
		Title:           "Dune",
		PublicationYear: 1965,
		Genre:           []string{"sci-fi"},
		Price:           pointer.To(999),
	}
}

/*
TestService_Create_ThenGet verifies the round trip: the stored book comes
back identical to the created one.
*/
func TestService_Create_ThenGet(t *testing.T) {
	svc, _, recorder := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.PublicationYear, fetched.PublicationYear)
	assert.Equal(t, created.Genre, fetched.Genre)
	assert.Equal(t, *created.Price, *fetched.Price)

	// Creation records exactly one initial snapshot at the creation price.
	require.Len(t, recorder.appends, 1)
	assert.Equal(t, created.ID, recorder.appends[0].BookID)
	assert.Equal(t, 999, recorder.appends[0].Price)
}

/*
TestService_Create_DefaultsPriceToZero verifies an absent price becomes an
explicit zero so the initial snapshot is well-defined.
*/
func TestService_Create_DefaultsPriceToZero(t *testing.T) {
	svc, _, recorder := newService(t)

	input := validInput()
	input.Price = nil

	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, created.Price)
	assert.Equal(t, 0, *created.Price)

	require.Len(t, recorder.appends, 1)
	assert.Equal(t, 0, recorder.appends[0].Price)
}

/*
TestService_Create_YearBounds exercises the configured publication-year
range at and just outside its boundaries.
*/
func TestService_Create_YearBounds(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		isValid bool
	}{
		{"at_minimum", 1457, true},
		{"at_maximum", 2100, true},
		{"below_minimum", 1456, false},
		{"above_maximum", 2101, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(t)

			input := validInput()
			input.PublicationYear = tt.year

			_, err := svc.Create(context.Background(), input)
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			}
		})
	}
}

/*
TestService_Create_Invalid rejects missing titles, empty genre lists,
negative prices, and malformed cover URLs.
*/
func TestService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*book.Input)
	}{
		{"empty_title", func(i *book.Input) { i.Title = "" }},
		{"empty_genre", func(i *book.Input) { i.Genre = nil }},
		{"negative_price", func(i *book.Input) { i.Price = pointer.To(-1) }},
		{"bad_cover_url", func(i *book.Input) { i.CoverImage = pointer.To("not a url") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, recorder := newService(t)

			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

			// Nothing reaches the ledger on validation failure.
			assert.Empty(t, recorder.appends)
		})
	}
}

/*
TestService_Create_DuplicateTitle verifies a title collision is rejected as
invalid input, the title staying taken even after archiving.
*/
func TestService_Create_DuplicateTitle(t *testing.T) {
	svc, _, recorder := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	recorder.appends = nil

	_, err = svc.Create(context.Background(), validInput())
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, 400, ae.HTTPStatus)
	assert.Empty(t, recorder.appends)

	// Archiving does not free the title for reuse.
	_, err = svc.Archive(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Update_PriceChange verifies a changed price appends exactly one
ledger entry carrying the requested price.
*/
func TestService_Update_PriceChange(t *testing.T) {
	svc, _, recorder := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	recorder.appends = nil

	updated, err := svc.Update(context.Background(), created.ID, book.Patch{Price: pointer.To(1299)})
	require.NoError(t, err)
	assert.Equal(t, 1299, *updated.Price)

	require.Len(t, recorder.appends, 1)
	assert.Equal(t, created.ID, recorder.appends[0].BookID)
	assert.Equal(t, 1299, recorder.appends[0].Price)
}

/*
TestService_Update_SamePrice verifies re-submitting the stored price leaves
the ledger untouched.
*/
func TestService_Update_SamePrice(t *testing.T) {
	svc, _, recorder := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	recorder.appends = nil

	_, err = svc.Update(context.Background(), created.ID, book.Patch{Price: pointer.To(999)})
	require.NoError(t, err)
	assert.Empty(t, recorder.appends)
}

/*
TestService_Update_NoPriceField verifies updates that never mention the
price append nothing, whatever other fields change.
*/
func TestService_Update_NoPriceField(t *testing.T) {
	svc, _, recorder := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	recorder.appends = nil

	updated, err := svc.Update(context.Background(), created.ID, book.Patch{
		Title:  pointer.To("Dune Messiah"),
		Author: pointer.To("Frank Herbert"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Empty(t, recorder.appends)
}

/*
TestService_Update_GenreSentinel verifies the interactive placeholder list
is treated as "field not supplied" rather than stored.
*/
func TestService_Update_GenreSentinel(t *testing.T) {
	svc, _, _ := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, book.Patch{
		Genre: []string{book.GenreNoChange},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-fi"}, updated.Genre)
}

/*
TestService_Update_NotFound maps an unknown id to NOT_FOUND.
*/
func TestService_Update_NotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Update(context.Background(), "missing", book.Patch{Price: pointer.To(100)})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_Archive verifies soft deletion: the row survives, Get still
works, and listings exclude it.
*/
func TestService_Archive(t *testing.T) {
	svc, repo, _ := newService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	archivedID, err := svc.Archive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, archivedID)

	// The record is still readable by id.
	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Archived)

	// Re-archiving succeeds: the row is still present.
	_, err = svc.Archive(context.Background(), created.ID)
	assert.NoError(t, err)

	assert.Len(t, repo.books, 1)
}

/*
TestService_List_EmptyIsNotFound preserves the product decision that a
filter matching nothing is a 404, not an empty page.
*/
func TestService_List_EmptyIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.List(context.Background(), book.Filter{Title: "No Such Book"}, 10, 0)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_List_ReturnsMatches is the happy path for a filtered listing.
*/
func TestService_List_ReturnsMatches(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	books, err := svc.List(context.Background(), book.Filter{Title: "Dune"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}
