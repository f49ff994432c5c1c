package history

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asmelnik/bookvault/internal/platform/dberr"
	"github.com/asmelnik/bookvault/pkg/uuidv7"
)

const insertQuery = `INSERT INTO price_history (id, book_id, price) VALUES ($1, $2, $3)`

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Append(ctx context.Context, bookID string, price int) error {
	_, err := repository.db.Exec(ctx, insertQuery, uuidv7.New(), bookID, price)
	return dberr.Wrap(err, "append_price_history")
}

func (repository *PostgresRepository) BulkAppend(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "bulk_append_begin")
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, point := range points {
		batch.Queue(insertQuery, uuidv7.New(), point.BookID, point.Price)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, "bulk_append_price_history")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "bulk_append_commit")
	}

	return nil
}

func (repository *PostgresRepository) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT id, book_id, price, updated_at
		FROM price_history
		WHERE book_id = $1
		ORDER BY updated_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := repository.db.Query(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "list_price_history")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.BookID, &entry.Price, &entry.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_price_history")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_price_history")
	}

	return entries, nil
}

func (repository *PostgresRepository) DeleteByBook(ctx context.Context, bookID string) (string, error) {
	cmd, err := repository.db.Exec(ctx, `DELETE FROM price_history WHERE book_id = $1`, bookID)
	if err != nil {
		return "", dberr.Wrap(err, "delete_price_history")
	}

	if cmd.RowsAffected() == 0 {
		return "", dberr.ErrNotFound
	}

	return bookID, nil
}
