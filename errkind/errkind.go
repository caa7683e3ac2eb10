// Package errkind holds the three kinds of failure the build tools report.
// Errors returned by the other packages wrap exactly one of these, so callers
// can tell a missing file from a broken one with errors.Is.
package errkind

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound  error = notFound{}
	ErrMalformed       = errors.New("malformed")
	ErrIO              = errors.New("i/o error")
)

// notFound also matches fs.ErrNotExist, so wrapped os errors and our own
// sentinel classify the same way.
type notFound struct{}

func (notFound) Error() string { return "not found" }

func (notFound) Is(target error) bool {
	return target == fs.ErrNotExist
}

// FromOS classifies an error from the os package.
func FromOS(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return ErrIO
}

// Wrap tags an os error with its kind while keeping the original in the chain.
func Wrap(context string, err error) error {
	return fmt.Errorf("%s: %w: %w", context, FromOS(err), err)
}
