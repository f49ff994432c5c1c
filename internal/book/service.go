package book

import (
	"context"
	"log/slog"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/internal/platform/validate"
	"github.com/asmelnik/bookvault/pkg/uuidv7"
)

// PriceRecorder appends price snapshots to the price-history ledger. It is
// satisfied by the history service; the indirection keeps this package from
// importing the history domain.
type PriceRecorder interface {
	Append(ctx context.Context, bookID string, price int) error
}

// Cache is the optional read-through cache in front of single-book fetches.
type Cache interface {
	GetBook(ctx context.Context, id string) (*Book, bool)
	SetBook(ctx context.Context, b *Book)
	InvalidateBook(ctx context.Context, id string)
}

// YearBounds is the configured inclusive range for publication_year.
type YearBounds struct {
	Min int
	Max int
}

type Service struct {
	repo   Repository
	prices PriceRecorder
	cache  Cache // may be nil
	years  YearBounds
	logger *slog.Logger
}

func NewService(repo Repository, prices PriceRecorder, cache Cache, years YearBounds, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		cache:  cache,
		years:  years,
		logger: logger,
	}
}

// Create validates the input, persists the book, and records the initial
// price snapshot in the history ledger.
func (service *Service) Create(ctx context.Context, input Input) (*Book, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title)
	validator.Range(FieldPublicationYear, input.PublicationYear, service.years.Min, service.years.Max)
	validator.NonEmptyList(FieldGenre, input.Genre)
	if input.Price != nil {
		validator.NonNegative(FieldPrice, *input.Price)
	}
	if input.CoverImage != nil {
		validator.URL(FieldCoverImage, *input.CoverImage)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	price := 0
	if input.Price != nil {
		price = *input.Price
	}

	b := &Book{
		ID:              uuidv7.New(),
		Title:           input.Title,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		Author:          input.Author,
		Description:     input.Description,
		CoverImage:      input.CoverImage,
		Price:           &price,
	}

	if err := service.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// Initial snapshot. The book is already committed; a ledger fault
	// surfaces as an error without undoing the insert.
	if err := service.prices.Append(ctx, b.ID, price); err != nil {
		return nil, err
	}

	service.logger.Info("book_created", slog.String("book_id", b.ID), slog.String("title", b.Title))
	return b, nil
}

// Archive soft-deletes a book. History rows are never touched: purging them
// is a separate, explicit operation on the history domain.
func (service *Service) Archive(ctx context.Context, id string) (string, error) {
	archivedID, err := service.repo.Archive(ctx, id)
	if err != nil {
		return "", err
	}

	if service.cache != nil {
		service.cache.InvalidateBook(ctx, id)
	}

	service.logger.Warn("book_archived", slog.String("book_id", archivedID))
	return archivedID, nil
}

// Get fetches one book by id, archived or not, through the cache when one
// is configured.
func (service *Service) Get(ctx context.Context, id string) (*Book, error) {
	if service.cache != nil {
		if cached, ok := service.cache.GetBook(ctx, id); ok {
			return cached, nil
		}
	}

	b, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		service.cache.SetBook(ctx, b)
	}
	return b, nil
}

// Update applies a partial update and, when the requested price differs from
// the stored one, appends exactly one history entry carrying the requested
// price.
//
// The update itself and the history append are two separate persistence
// steps: a ledger fault after a committed update surfaces as an error
// without rolling the update back.
func (service *Service) Update(ctx context.Context, id string, patch Patch) (*Book, error) {
	patch = stripGenreSentinel(patch)

	validator := &validate.Validator{}
	if patch.Title != nil {
		validator.Required(FieldTitle, *patch.Title)
	}
	if patch.PublicationYear != nil {
		validator.Range(FieldPublicationYear, *patch.PublicationYear, service.years.Min, service.years.Max)
	}
	if patch.Genre != nil {
		validator.NonEmptyList(FieldGenre, patch.Genre)
	}
	if patch.Price != nil {
		validator.NonNegative(FieldPrice, *patch.Price)
	}
	if patch.CoverImage != nil {
		validator.URL(FieldCoverImage, *patch.CoverImage)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, priceChanged, err := service.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		service.cache.InvalidateBook(ctx, id)
	}

	if priceChanged {
		// Deliberately the caller-supplied price, not the re-read stored
		// value; the two are equal on the success path.
		if err := service.prices.Append(ctx, id, *patch.Price); err != nil {
			return nil, err
		}
		service.logger.Info("price_changed",
			slog.String("book_id", id),
			slog.Int("new_price", *patch.Price),
		)
	}

	return updated, nil
}

// List returns a filtered page of the catalog. An empty result set is
// surfaced as NotFound — intentional, if unusual, product behavior.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Book, error) {
	books, err := service.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	if len(books) == 0 {
		return nil, apperr.NotFound("Book matching the given filters")
	}

	return books, nil
}

// stripGenreSentinel drops a genre list consisting solely of the interactive
// placeholder, turning it into "field not supplied".
func stripGenreSentinel(patch Patch) Patch {
	if len(patch.Genre) == 1 && patch.Genre[0] == GenreNoChange {
		patch.Genre = nil
	}
	return patch
}
