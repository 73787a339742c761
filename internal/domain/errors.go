package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// ValidationError reports structurally invalid input or output. It aborts the whole run.
type ValidationError struct {
	Stage  string   // "bookings", "forecasts", "segments", "offers"
	Fields []string // missing or invalid field names, sorted
	Detail string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed for %s", e.Stage)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": missing or invalid fields [%s]", strings.Join(e.Fields, ", "))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
