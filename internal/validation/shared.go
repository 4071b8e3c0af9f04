package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

// Error collects field-level validation messages. It unwraps to
// apperrors.ErrValidation so handlers can map it to a 400.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error { return apperrors.ErrValidation }

func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
