package history

import "context"

// Repository defines the data access contract for the price-history ledger.
type Repository interface {
	// Append inserts one snapshot row. Any fault, including a referential-
	// integrity failure on an unknown book id, surfaces as a classified
	// persistence error.
	Append(ctx context.Context, bookID string, price int) error

	// BulkAppend inserts the given snapshots as one atomic batch.
	BulkAppend(ctx context.Context, points []Point) error

	// ListByBook returns the book's snapshots ordered by updated_at
	// ascending. An empty result comes back as an empty slice.
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]*Entry, error)

	// DeleteByBook removes every snapshot for the book and returns the book
	// id. Fails NotFound when no rows existed.
	DeleteByBook(ctx context.Context, bookID string) (string, error)
}
