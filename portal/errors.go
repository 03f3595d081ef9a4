package portal

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Error conditions.
var (
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrNoMessage indicates an in-process queue is empty.
	ErrNoMessage error = unix.ENOMSG

	// ErrNotSupported indicates the backend does not support an operation.
	ErrNotSupported error = unix.ENOTSUP

	// ErrNoControlResponse indicates a route request was not answered with a control message.
	ErrNoControlResponse error = unix.EBADMSG

	// ErrClosed indicates the portal has been closed.
	ErrClosed error = unix.EBADF
)

// ErrorCode converts an error to an errno-style code.
// nil yields zero. Errors wrapping unix.Errno yield its value. Other errors yield EIO.
func ErrorCode(e error) int {
	if e == nil {
		return 0
	}
	var errno unix.Errno
	if errors.As(e, &errno) {
		return int(errno)
	}
	return int(unix.EIO)
}
