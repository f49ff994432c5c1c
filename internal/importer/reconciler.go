package importer

import (
	"context"
	"log/slog"

	"github.com/asmelnik/bookvault/internal/book"
	"github.com/asmelnik/bookvault/internal/history"
)

// InvalidRow is a candidate that failed schema validation, tagged with the
// failure description and the original (possibly malformed) values.
type InvalidRow struct {
	Values Candidate `json:"values"`
	Error  string    `json:"error"`
}

// Result is the three-way partition of one bulk import.
type Result struct {
	Loaded     []*book.Book `json:"loaded_books"`
	Invalid    []InvalidRow `json:"invalid_books"`
	Duplicates []*book.Book `json:"duplicates"`
}

// Reconciler turns loosely-typed bulk input into validated store operations
// plus a validation report.
//
// # Pipeline
//
//  1. Each row is validated independently — one bad row never aborts the batch.
//  2. Valid rows go through the catalog's dedup insert in one transaction.
//  3. Initial price snapshots are bulk-appended strictly after that
//     transaction commits; a snapshot fault surfaces as an error but does not
//     undo the insert (no compensating transaction).
type Reconciler struct {
	books   book.Repository
	ledger  history.Repository
	years   book.YearBounds
	logger  *slog.Logger
}

func NewReconciler(books book.Repository, ledger history.Repository, years book.YearBounds, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		books:  books,
		ledger: ledger,
		years:  years,
		logger: logger,
	}
}

// Reconcile runs the full import pipeline over a raw candidate batch.
func (reconciler *Reconciler) Reconcile(ctx context.Context, candidates []Candidate) (*Result, error) {
	valid := make([]*book.Book, 0, len(candidates))
	invalid := []InvalidRow{}

	for _, candidate := range candidates {
		coerced, problem := reconciler.coerce(candidate)
		if problem != "" {
			invalid = append(invalid, InvalidRow{Values: candidate, Error: problem})
			continue
		}
		valid = append(valid, coerced)
	}

	inserted, duplicates, err := reconciler.books.BulkInsertDedup(ctx, valid)
	if err != nil {
		return nil, err
	}

	if len(inserted) > 0 {
		points := make([]history.Point, 0, len(inserted))
		for _, b := range inserted {
			points = append(points, history.Point{BookID: b.ID, Price: *b.Price})
		}

		// The catalog insert is already committed; a ledger fault here
		// surfaces to the caller with the inserted rows left in place.
		if err := reconciler.ledger.BulkAppend(ctx, points); err != nil {
			reconciler.logger.Error("import_snapshot_append_failed",
				slog.Int("inserted", len(inserted)),
				slog.Any("error", err),
			)
			return nil, err
		}
	}

	reconciler.logger.Info("import_finished",
		slog.Int("loaded", len(inserted)),
		slog.Int("invalid", len(invalid)),
		slog.Int("duplicates", len(duplicates)),
	)

	if inserted == nil {
		inserted = []*book.Book{}
	}
	if duplicates == nil {
		duplicates = []*book.Book{}
	}

	return &Result{Loaded: inserted, Invalid: invalid, Duplicates: duplicates}, nil
}

// coerce validates a single candidate against the book schema and converts
// it into a catalog record. The returned problem string is empty on success.
func (reconciler *Reconciler) coerce(candidate Candidate) (*book.Book, string) {
	errs := rowErrors{}

	title := stringField(candidate, colTitle, &errs)
	if title == nil {
		errs.addf("%s: this field is required", colTitle)
	}

	year, yearPresent := intField(candidate, colYear, &errs)
	if !yearPresent {
		errs.addf("%s: this field is required", colYear)
	} else if year < reconciler.years.Min || year > reconciler.years.Max {
		errs.addf("%s: %d is outside [%d, %d]", colYear, year, reconciler.years.Min, reconciler.years.Max)
	}

	genre := genreField(candidate, &errs)
	if len(genre) == 0 {
		errs.addf("%s: at least one tag is required", colGenre)
	}

	// Absent price defaults to zero so the initial snapshot is well-defined.
	price, pricePresent := intField(candidate, colPrice, &errs)
	if pricePresent && price < 0 {
		errs.addf("%s: must be zero or positive", colPrice)
	}

	author := stringField(candidate, colAuthor, &errs)
	description := stringField(candidate, colDescription, &errs)
	coverImage := stringField(candidate, colCoverImage, &errs)

	if len(errs) > 0 {
		return nil, errs.join()
	}

	return &book.Book{
		Title:           *title,
		PublicationYear: year,
		Genre:           genre,
		Author:          author,
		Description:     description,
		CoverImage:      coverImage,
		Price:           &price,
	}, ""
}
