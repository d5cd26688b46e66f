package publish

import (
	"fmt"
)

// PackageExistsError is returned when registering a name that is already listed.
type PackageExistsError struct {
	Name string
}

func (e *PackageExistsError) Error() string {
	return fmt.Sprintf("package %q already exists", e.Name)
}

// PackageNotFoundError is returned when updating or deleting a name that is not listed.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q does not exist", e.Name)
}
