// Copyright (c) 2026 Bookvault. All rights reserved.
// Author: a.smelnik.dev@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
// The SQLSTATE of a [pgconn.PgError] decides the taxonomy bucket: unique,
// check, and data violations all become validation failures (a duplicate
// title is invalid input, not a conflicting resource state), connection-class
// faults become store-unavailable, everything else becomes a generic
// operation failure carrying the original message.
package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// The action tag names the failed operation for constraint messages.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Not Found mapping.
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// Connection pool gave up before the query ran.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.StoreUnavailable(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation,
			pgErr.Code == pgerrcode.CheckViolation,
			pgErr.Code == pgerrcode.NotNullViolation,
			pgerrcode.IsDataException(pgErr.Code):
			return apperr.ValidationError(constraintMessage(pgErr, action))

		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code):
			return apperr.StoreUnavailable(err)
		}
	}

	if pgconn.Timeout(err) {
		return apperr.StoreUnavailable(err)
	}

	return apperr.OperationFailed(err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Used by bulk insert to recognise a dedup race lost against a
// concurrent import.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// constraintMessage builds a client-facing description of a constraint fault.
func constraintMessage(pgErr *pgconn.PgError, action string) string {
	var b strings.Builder
	b.WriteString(action)
	b.WriteString(": ")
	b.WriteString(pgErr.Message)
	if pgErr.ConstraintName != "" {
		b.WriteString(" (constraint ")
		b.WriteString(pgErr.ConstraintName)
		b.WriteString(")")
	}
	return b.String()
}
