package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/asmelnik/bookvault/internal/platform/constants"
)

// Candidate is one loosely-typed import row keyed by column name. Feed rows
// arrive as decoded JSON objects; spreadsheet rows are normalized into the
// same shape by ReadWorkbook.
type Candidate map[string]any

// Import column names. They double as the required spreadsheet header set
// (configurable via IMPORT_COLUMNS) and as the feed object keys.
const (
	colTitle       = "title"
	colYear        = "publication_year"
	colGenre       = "genre"
	colPrice       = "price"
	colAuthor      = "author"
	colDescription = "description"
	colCoverImage  = "cover_image"
)

// rowErrors accumulates human-readable problems for one candidate row.
type rowErrors []string

func (e *rowErrors) addf(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

func (e rowErrors) join() string {
	return strings.Join(e, "; ")
}

// stringField reads an optional string-typed column. A missing key, nil, or
// blank value yields nil.
func stringField(c Candidate, key string, errs *rowErrors) *string {
	raw, present := c[key]
	if !present || raw == nil {
		return nil
	}

	value, ok := raw.(string)
	if !ok {
		errs.addf("%s: expected text, got %T", key, raw)
		return nil
	}

	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// intField reads an integer-typed column, coercing JSON numbers (float64)
// and spreadsheet cells (string).
func intField(c Candidate, key string, errs *rowErrors) (int, bool) {
	raw, present := c[key]
	if !present || raw == nil {
		return 0, false
	}

	switch value := raw.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		if value != math.Trunc(value) {
			errs.addf("%s: expected an integer, got %v", key, value)
			return 0, false
		}
		return int(value), true
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			errs.addf("%s: expected an integer, got %q", key, value)
			return 0, false
		}
		return n, true
	default:
		errs.addf("%s: expected an integer, got %T", key, raw)
		return 0, false
	}
}

// genreField reads the genre column. A delimited string is split into a tag
// list; list-shaped input passes through unchanged.
func genreField(c Candidate, errs *rowErrors) []string {
	raw, present := c[colGenre]
	if !present || raw == nil {
		return nil
	}

	switch value := raw.(type) {
	case []string:
		return value
	case []any:
		tags := make([]string, 0, len(value))
		for _, element := range value {
			tag, ok := element.(string)
			if !ok {
				errs.addf("%s: expected a list of text tags, got element %T", colGenre, element)
				return nil
			}
			tags = append(tags, tag)
		}
		return tags
	case string:
		parts := strings.Split(value, constants.GenreDelimiter)
		tags := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	default:
		errs.addf("%s: expected a list or delimited text, got %T", colGenre, raw)
		return nil
	}
}
