package clone

import (
	"context"
	"errors"
	"fmt"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
	"github.com/tilsley/cgs/apps/cgs/internal/locator"
)

// Error taxonomy. Listing-side errors are recovered per subtree; download and
// filesystem errors abort the run.
var (
	ErrInvalidURL             = locator.ErrInvalidURL
	ErrMissingPathSegment     = locator.ErrMissingPathSegment
	ErrAPIRequestFailed       = gitrepo.ErrAPIRequestFailed
	ErrResponsePayloadInvalid = gitrepo.ErrResponsePayloadInvalid
	ErrDownloadFailed         = gitrepo.ErrDownloadFailed

	ErrInvalidAPIResponse = errors.New("invalid api response")
	ErrUnknownEntryType   = errors.New("unknown entry type")
	ErrFileSystemFailed   = errors.New("file system operation failed")
	ErrMaxDepthExceeded   = errors.New("maximum directory depth exceeded")
	ErrOutsideWorkDir     = errors.New("path escapes the working directory")
)

// UnknownEntryTypeError is returned when a listing entry's type is neither
// "dir" nor "file".
type UnknownEntryTypeError struct {
	Path string
	Type string
}

// Error implements the error interface.
func (e *UnknownEntryTypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("no file type in the response item %q", e.Path)
	}
	return fmt.Sprintf("unknown file type %q for %q", e.Type, e.Path)
}

// Unwrap lets errors.Is match ErrUnknownEntryType.
func (e *UnknownEntryTypeError) Unwrap() error {
	return ErrUnknownEntryType
}

// FileSystemError wraps a failed filesystem operation on Path.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrFileSystemFailed and the underlying cause.
func (e *FileSystemError) Unwrap() []error {
	return []error{ErrFileSystemFailed, e.Err}
}

// IsFatal reports whether err must abort the whole run rather than just the
// subtree it occurred in. Cancellation is fatal too.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDownloadFailed) ||
		errors.Is(err, ErrFileSystemFailed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
