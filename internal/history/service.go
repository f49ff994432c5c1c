package history

import (
	"context"
	"log/slog"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Append records a single price snapshot. It also satisfies the catalog's
// PriceRecorder contract.
func (service *Service) Append(ctx context.Context, bookID string, price int) error {
	if err := service.repo.Append(ctx, bookID, price); err != nil {
		return err
	}

	service.logger.Info("price_history_appended",
		slog.String("book_id", bookID),
		slog.Int("price", price),
	)
	return nil
}

// BulkAppend records the initial snapshots for freshly imported books.
func (service *Service) BulkAppend(ctx context.Context, points []Point) error {
	if err := service.repo.BulkAppend(ctx, points); err != nil {
		return err
	}

	service.logger.Info("price_history_bulk_appended", slog.Int("count", len(points)))
	return nil
}

// ListByBook returns a page of the book's snapshots, oldest first. A book
// with no snapshots is surfaced as NotFound.
func (service *Service) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]*Entry, error) {
	entries, err := service.repo.ListByBook(ctx, bookID, limit, offset)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, apperr.NotFound("Price history for the book")
	}

	return entries, nil
}

// DeleteByBook purges every snapshot for the book. This is the only way
// history rows vanish: archiving a book never cascades here.
func (service *Service) DeleteByBook(ctx context.Context, bookID string) (string, error) {
	deletedFor, err := service.repo.DeleteByBook(ctx, bookID)
	if err != nil {
		return "", err
	}

	service.logger.Warn("price_history_deleted", slog.String("book_id", deletedFor))
	return deletedFor, nil
}
