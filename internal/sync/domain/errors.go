package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a chart package or release does not exist
// upstream.
type NotFoundError struct {
	Resource string
	Version  string
}

// NewNotFoundError creates a NotFoundError for a resource at a version.
func NewNotFoundError(resource, version string) *NotFoundError {
	return &NotFoundError{Resource: resource, Version: version}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for version %s", e.Resource, e.Version)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
