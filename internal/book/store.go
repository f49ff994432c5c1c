package book

import "context"

// Repository defines the data access contract for the book catalog.
//
// # Architecture
//
// The interface lives in the domain package because the service layer (the
// consumer) defines what it needs; the Postgres implementation sits alongside
// in store_postgres.go. Every method runs in its own transaction with
// commit-on-success and rollback-on-any-failure.
type Repository interface {
	// Create persists a new book. The caller generates and sets the ID.
	// Constraint faults (title uniqueness, year range, negative price) come
	// back classified by the dberr taxonomy.
	Create(ctx context.Context, b *Book) error

	// Archive flips the archived flag and returns the id. It fails NotFound
	// only when no row with that id exists; re-archiving an already archived
	// book succeeds (the row is still present).
	Archive(ctx context.Context, id string) (string, error)

	// Get returns the book with the given id regardless of archived state.
	Get(ctx context.Context, id string) (*Book, error)

	// Update applies the non-nil patch fields atomically and reports whether
	// the patch specified a price different from the one stored before the
	// update. Fails NotFound when the row is absent.
	Update(ctx context.Context, id string, patch Patch) (*Book, bool, error)

	// List returns non-archived books matching the filter, ordered by id
	// ascending. An empty result is returned as an empty slice; the service
	// layer decides how to surface it.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Book, error)

	// BulkInsertDedup partitions candidates against the set of all existing
	// titles (archived included) plus earlier candidates in the same batch,
	// then inserts the novel ones as one atomic batch. IDs are assigned to
	// inserted books only. Nothing is inserted if any insert fails; the
	// unique index on title remains the arbiter under concurrent imports.
	BulkInsertDedup(ctx context.Context, candidates []*Book) (inserted []*Book, duplicates []*Book, err error)
}
