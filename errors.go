package seedicon

import (
	"io/fs"

	"github.com/go-errors/errors"
)

// ErrLinkHasNoTarget is returned by Classify for a shortcut that has neither
// an icon location nor a target.
var ErrLinkHasNoTarget = errors.Errorf("shortcut has no icon location or target")

// IsIOError reports whether err came from the filesystem rather than from
// the contents of a file.
func IsIOError(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}
