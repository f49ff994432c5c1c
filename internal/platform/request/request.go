// Copyright (c) 2026 Bookvault. All rights reserved.
// Author: a.smelnik.dev@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/internal/platform/validate"
	"github.com/asmelnik/bookvault/pkg/uuidv7"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter and checks that it is a UUID.

Returns:
  - error: apperr.ValidationError when the parameter does not parse as a UUID
*/
func ID(request *http.Request, name string) (string, error) {
	raw := chi.URLParam(request, name)
	if !uuidv7.IsValid(raw) {
		return "", apperr.ValidationError("Path parameter '" + name + "' must be a UUID")
	}
	return raw, nil
}

/*
QueryInt parses an optional integer query parameter.

Returns:
  - *int: nil when the parameter is absent
  - error: apperr.ValidationError when present but not an integer
*/
func QueryInt(request *http.Request, name string) (*int, error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.ValidationError("Query parameter '" + name + "' must be an integer")
	}
	return &n, nil
}
