package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/internal/platform/dberr"
	"github.com/asmelnik/bookvault/pkg/uuidv7"
)

const bookColumns = `id, title, publication_year, genre, author, description, cover_image, price, archived, created_at, updated_at`

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(ctx context.Context, b *Book) error {
	query := `
		INSERT INTO books (id, title, publication_year, genre, author, description, cover_image, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING archived, created_at, updated_at
	`

	err := repository.db.QueryRow(ctx, query,
		b.ID, b.Title, b.PublicationYear, b.Genre, b.Author, b.Description, b.CoverImage, b.Price,
	).Scan(&b.Archived, &b.CreatedAt, &b.UpdatedAt)

	return dberr.Wrap(err, "create_book")
}

func (repository *PostgresRepository) Archive(ctx context.Context, id string) (string, error) {
	// The row's presence decides NotFound, not its archived state: archiving
	// an already archived book succeeds and leaves the flag set.
	query := `UPDATE books SET archived = true, updated_at = now() WHERE id = $1 RETURNING id`

	var archivedID string
	if err := repository.db.QueryRow(ctx, query, id).Scan(&archivedID); err != nil {
		return "", dberr.Wrap(err, "archive_book")
	}

	return archivedID, nil
}

func (repository *PostgresRepository) Get(ctx context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)

	b := &Book{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.PublicationYear, &b.Genre, &b.Author,
		&b.Description, &b.CoverImage, &b.Price, &b.Archived, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_book")
	}

	return b, nil
}

func (repository *PostgresRepository) Update(ctx context.Context, id string, patch Patch) (*Book, bool, error) {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return nil, false, dberr.Wrap(err, "update_book_begin")
	}
	defer tx.Rollback(ctx)

	// Lock the current row; the price-changed flag is evaluated against the
	// values stored before the patch is applied.
	current := &Book{}
	selectQuery := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 FOR UPDATE`, bookColumns)
	err = tx.QueryRow(ctx, selectQuery, id).Scan(
		&current.ID, &current.Title, &current.PublicationYear, &current.Genre, &current.Author,
		&current.Description, &current.CoverImage, &current.Price, &current.Archived,
		&current.CreatedAt, &current.UpdatedAt,
	)
	if err != nil {
		return nil, false, dberr.Wrap(err, "update_book_fetch")
	}

	priceChanged := patch.Price != nil &&
		(current.Price == nil || *current.Price != *patch.Price)

	setClauses := []string{}
	args := []any{id}
	argn := 2

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argn))
		args = append(args, value)
		argn++
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.PublicationYear != nil {
		addSet("publication_year", *patch.PublicationYear)
	}
	if patch.Genre != nil {
		addSet("genre", patch.Genre)
	}
	if patch.Author != nil {
		addSet("author", *patch.Author)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.CoverImage != nil {
		addSet("cover_image", *patch.CoverImage)
	}
	if patch.Price != nil {
		addSet("price", *patch.Price)
	}

	if len(setClauses) == 0 {
		// Nothing to write; the fetch already confirmed the row exists.
		if err := tx.Commit(ctx); err != nil {
			return nil, false, dberr.Wrap(err, "update_book_commit")
		}
		return current, false, nil
	}

	setClauses = append(setClauses, "updated_at = now()")

	updateQuery := fmt.Sprintf(`UPDATE books SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "), bookColumns)

	updated := &Book{}
	err = tx.QueryRow(ctx, updateQuery, args...).Scan(
		&updated.ID, &updated.Title, &updated.PublicationYear, &updated.Genre, &updated.Author,
		&updated.Description, &updated.CoverImage, &updated.Price, &updated.Archived,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		return nil, false, dberr.Wrap(err, "update_book_write")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, dberr.Wrap(err, "update_book_commit")
	}

	return updated, priceChanged, nil
}

func (repository *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE archived = false`, bookColumns)

	args := []any{}
	argn := 1

	addClause := func(clause string, value any) {
		query += fmt.Sprintf(" AND "+clause, argn)
		args = append(args, value)
		argn++
	}

	if f.Title != "" {
		addClause("title = $%d", f.Title)
	}
	if f.Price != nil {
		addClause("price = $%d", *f.Price)
	}
	if f.Author != "" {
		addClause("author = $%d", f.Author)
	}
	if f.Description != "" {
		addClause("description ILIKE $%d", "%"+f.Description+"%")
	}
	if len(f.Genres) > 0 {
		// The book's genre set must contain every requested tag.
		addClause("genre @> $%d", f.Genres)
	}
	if len(f.GenresNot) > 0 {
		// The book's genre set must contain none of the excluded tags.
		addClause("NOT (genre && $%d)", f.GenresNot)
	}

	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argn, argn+1)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b := &Book{}
		if err := rows.Scan(
			&b.ID, &b.Title, &b.PublicationYear, &b.Genre, &b.Author,
			&b.Description, &b.CoverImage, &b.Price, &b.Archived, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_book")
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}

	return books, nil
}

func (repository *PostgresRepository) BulkInsertDedup(ctx context.Context, candidates []*Book) ([]*Book, []*Book, error) {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "bulk_insert_begin")
	}
	defer tx.Rollback(ctx)

	// Snapshot every existing title, archived rows included, within the same
	// transaction the inserts will run in. This pre-check is an optimization;
	// the unique index on title is the correctness guarantee when two imports
	// race on the same titles.
	existing, err := snapshotTitles(ctx, tx)
	if err != nil {
		return nil, nil, err
	}

	novel, duplicates := PartitionByTitle(existing, candidates)
	if len(novel) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, dberr.Wrap(err, "bulk_insert_commit")
		}
		return nil, duplicates, nil
	}

	insertQuery := `
		INSERT INTO books (id, title, publication_year, genre, author, description, cover_image, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING archived, created_at, updated_at
	`

	batch := &pgx.Batch{}
	for _, b := range novel {
		b.ID = uuidv7.New()
		batch.Queue(insertQuery,
			b.ID, b.Title, b.PublicationYear, b.Genre, b.Author, b.Description, b.CoverImage, b.Price)
	}

	results := tx.SendBatch(ctx, batch)
	for _, b := range novel {
		if err := results.QueryRow().Scan(&b.Archived, &b.CreatedAt, &b.UpdatedAt); err != nil {
			_ = results.Close()
			return nil, nil, wrapBulkInsertError(err, b.Title)
		}
	}
	if err := results.Close(); err != nil {
		return nil, nil, wrapBulkInsertError(err, "")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, dberr.Wrap(err, "bulk_insert_commit")
	}

	return novel, duplicates, nil
}

// wrapBulkInsertError classifies a failed batch insert. A unique violation
// here means a concurrent import claimed the title after our snapshot; the
// row passed the in-transaction dedup, so this is a lost race rather than
// bad input, and the whole batch rolls back for the caller to retry.
func wrapBulkInsertError(err error, title string) error {
	if dberr.IsUniqueViolation(err) {
		if title != "" {
			return apperr.OperationFailed(fmt.Errorf("concurrent import claimed title %q, retry the import: %w", title, err))
		}
		return apperr.OperationFailed(fmt.Errorf("concurrent import claimed a title in this batch, retry the import: %w", err))
	}
	return dberr.Wrap(err, "bulk_insert_book")
}

// snapshotTitles reads all titles visible to the transaction into a set.
func snapshotTitles(ctx context.Context, tx pgx.Tx) (map[string]struct{}, error) {
	rows, err := tx.Query(ctx, `SELECT title FROM books`)
	if err != nil {
		return nil, dberr.Wrap(err, "snapshot_titles")
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, dberr.Wrap(err, "snapshot_titles")
		}
		titles[title] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "snapshot_titles")
	}

	return titles, nil
}
