package lib

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrorKind identifies which step of the capture pipeline failed.
type ErrorKind int

const (
	// ErrUnknown is the catch-all kind for failures that cannot be
	// attributed to a specific syscall.
	ErrUnknown ErrorKind = iota
	// ErrProcessSpawn means spawning the child process failed.
	ErrProcessSpawn
	// ErrChannelCreation means allocating a kernel pipe failed.
	ErrChannelCreation
	// ErrDescriptorDuplicate means duplicating a descriptor while wiring a
	// standard stream onto a pipe failed.
	ErrDescriptorDuplicate
	// ErrDescriptorClose means closing an unused descriptor failed.
	ErrDescriptorClose
	// ErrRead means a byte-level read from a pipe failed for a reason
	// other than end-of-stream.
	ErrRead
	// ErrChannelNotReadable means a read was attempted on a pipe that has
	// not been assigned as consumer. This is a contract violation by the
	// caller, not an I/O error.
	ErrChannelNotReadable
	// ErrProcessStatusQuery means the non-blocking child status query
	// itself failed.
	ErrProcessStatusQuery
)

func (k ErrorKind) String() string {
	switch k {
	case ErrProcessSpawn:
		return "spawning the child process failed"
	case ErrChannelCreation:
		return "pipe() failed"
	case ErrDescriptorDuplicate:
		return "dup() failed"
	case ErrDescriptorClose:
		return "close() failed"
	case ErrRead:
		return "read() failed"
	case ErrChannelNotReadable:
		return "the pipe is not yet marked as read end"
	case ErrProcessStatusQuery:
		return "waitpid() failed"
	default:
		return "unknown error"
	}
}

// Error is the only error type surfaced by this library. Errno carries the
// originating OS error code where one exists.
type Error struct {
	Kind  ErrorKind
	Errno unix.Errno
	Err   error
}

func (e *Error) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s with error code %d (%s)", e.Kind, int(e.Errno), e.Errno.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewSyscallError wraps err into an Error of the given kind, extracting the
// errno if err carries one.
func NewSyscallError(kind ErrorKind, err error) *Error {
	var errno unix.Errno
	errors.As(err, &errno)
	return &Error{Kind: kind, Errno: errno, Err: err}
}

// IsKind reports whether err is (or wraps) a library Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
