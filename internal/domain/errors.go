package domain

import (
	"fmt"
	"strings"
)

// MissingColumnsError is returned when an uploaded table lacks one or more
// required columns. It aborts the whole request; there are no partial results.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}
