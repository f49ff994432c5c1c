// Copyright (c) 2026 Bookvault. All rights reserved.
// Author: a.smelnik.dev@gmail.com

/*
Package apperr defines the centralized error handling framework for Bookvault.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: VALIDATION_ERROR, NOT_FOUND, OPERATION_FAILED,
    STORE_UNAVAILABLE, EXTERNAL_FETCH_FAILED.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the Bookvault API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Diagnostics
//
// Persistence faults deliberately surface the underlying message to the
// client (Message includes it); the raw Cause is additionally retained for
// server-side logging and [errors.Is] chains.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description returned to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-facing message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
// Duplicate-title rejections use this code too: a colliding title is invalid
// input, not a conflicting resource state.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Server Errors (5xx)

// OperationFailed creates a 500 [AppError] for an unexpected persistence
// fault. Per the error-handling contract the underlying message travels to
// the client for diagnostics.
func OperationFailed(cause error) *AppError {
	msg := "Operation failed"
	if cause != nil {
		msg = "Operation failed: " + cause.Error()
	}
	return &AppError{
		Code:       "OPERATION_FAILED",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// Unlike [OperationFailed], the cause is stored for logging but never sent to
// the client (used for panics and non-storage faults).
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// StoreUnavailable creates a 503 [AppError] for datastore connectivity or
// transaction-level failures. The cause propagates unmodified in the chain so
// upstream layers can inspect it.
func StoreUnavailable(cause error) *AppError {
	msg := "Datastore unavailable"
	if cause != nil {
		msg = "Datastore unavailable: " + cause.Error()
	}
	return &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// ExternalFetchFailed creates a 502 [AppError] for an unreachable or
// non-2xx remote source, so import callers can distinguish "nothing to
// import" from "source unreachable".
func ExternalFetchFailed(cause error) *AppError {
	msg := "External source fetch failed"
	if cause != nil {
		msg = "External source fetch failed: " + cause.Error()
	}
	return &AppError{
		Code:       "EXTERNAL_FETCH_FAILED",
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
