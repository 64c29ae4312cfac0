package billing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup by id or filter matches zero rows.
var ErrNotFound = errors.New("billing detail not found")

// ValidationError reports missing or malformed request fields. It is always
// raised before any statement touches storage.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Fields, ", "))
}
