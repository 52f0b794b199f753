package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

/* Error is a field-level validation failure */
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

/* NewError creates a validation error */
func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

/* ValidateUUID checks that value is a well-formed UUID */
func ValidateUUID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return NewError(field, "must be a valid UUID")
	}
	return nil
}

/* Pagination holds parsed limit/offset query parameters */
type Pagination struct {
	Limit  int
	Offset int
}

/* ParsePagination parses limit/offset with bounds. Out-of-range values are
   clamped rather than rejected. */
func ParsePagination(query url.Values) Pagination {
	p := Pagination{Limit: 20}

	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			p.Limit = limit
		}
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > 100 {
		p.Limit = 100
	}

	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			p.Offset = offset
		}
	}

	return p
}

/* ParseFloat parses an optional float query parameter */
func ParseFloat(query url.Values, key string) float64 {
	if raw := query.Get(key); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			return value
		}
	}
	return 0
}
