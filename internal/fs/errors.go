package fs

import (
	"errors"
	"fmt"
	"net/textproto"
	"os"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
)

var (
	// ErrNotExist indicates the path has no entry on the backend
	ErrNotExist = errors.New("path does not exist")

	// ErrBadPattern indicates a glob pattern that cannot be parsed
	ErrBadPattern = errors.New("malformed glob pattern")

	// ErrNotDirectory indicates a listing was requested for a non-directory
	ErrNotDirectory = errors.New("not a directory")
)

// Error wraps a backend failure with the operation and path involved.
type Error struct {
	Op   string // Operation that failed (e.g., "glob", "list")
	Path string // Affected path
	Err  error  // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotExist) match every backend's own
// not-found error once it has been wrapped.
func (e *Error) Is(target error) bool {
	return target == ErrNotExist && IsNotExist(e.Err)
}

// NewError creates an Error for the given operation and path
func NewError(op string, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Operation names used in Error values and log lines
const (
	OpGlob    = "glob"
	OpList    = "list"
	OpStat    = "stat"
	OpLookup  = "lookup"
	OpConnect = "connect"
)

// IsNotExist reports whether err means the path is missing, whichever
// backend produced it.
func IsNotExist(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return true
	}

	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == uint32(sftp.ErrSSHFxNoSuchFile)
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code == ftp.StatusFileUnavailable
	}
	return false
}
