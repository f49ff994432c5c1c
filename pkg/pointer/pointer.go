// Copyright (c) 2026 Bookvault. All rights reserved.
// Author: a.smelnik.dev@gmail.com

// Package pointer provides tiny generic helpers for working with optional
// (pointer-typed) values, used heavily by partial-update patches and tests.
package pointer

// To returns a pointer to the given value.
func To[T any](value T) *T {
	return &value
}

// Deref returns the pointed-to value, or the zero value if p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DerefOr returns the pointed-to value, or fallback if p is nil.
func DerefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
