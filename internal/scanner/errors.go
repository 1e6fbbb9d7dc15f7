package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound reports a scan target that does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotAFile reports a scan target that exists but is not a regular
	// file, such as a directory or a device node.
	ErrNotAFile = errors.New("not a regular file")
)

// PathError is a failed path validation. It is raised before any network
// I/O and aborts only the file it belongs to, never the batch.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *PathError) Unwrap() error { return e.Err }

// IsPathError reports whether err came from path validation.
func IsPathError(err error) bool {
	var pathErr *PathError
	return errors.As(err, &pathErr)
}
