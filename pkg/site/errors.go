package site

import (
	"fmt"
)

// MalformedError is returned when a document lacks an element that an operation needs.
type MalformedError struct {
	Document string
	Missing  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: missing %s", e.Document, e.Missing)
}
