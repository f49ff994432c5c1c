package book

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
)

/*
TestWrapBulkInsertError_LostRace verifies a unique violation inside the bulk
batch is reported as a lost concurrent-import race, not as invalid input.
*/
func TestWrapBulkInsertError_LostRace(t *testing.T) {
	raceErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "books_title_key",
		Message:        "duplicate key value violates unique constraint",
	}

	wrapped := wrapBulkInsertError(raceErr, "Dune")
	ae := apperr.As(wrapped)
	require.NotNil(t, ae)

	assert.Equal(t, "OPERATION_FAILED", ae.Code)
	assert.Contains(t, ae.Message, "Dune")
	assert.Contains(t, ae.Message, "retry")
}

/*
TestWrapBulkInsertError_OtherFaults fall through to the usual taxonomy
mapping.
*/
func TestWrapBulkInsertError_OtherFaults(t *testing.T) {
	checkErr := &pgconn.PgError{
		Code:    pgerrcode.CheckViolation,
		Message: "new row violates check constraint",
	}
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(wrapBulkInsertError(checkErr, "Dune")).Code)

	plainErr := errors.New("driver fault")
	assert.Equal(t, "OPERATION_FAILED", apperr.As(wrapBulkInsertError(plainErr, "")).Code)
}
