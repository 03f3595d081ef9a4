package l3

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Error conditions.
// They carry errno values so that callers can report an integer status.
var (
	ErrTimeout    error = unix.ETIMEDOUT
	ErrWouldBlock error = unix.EAGAIN
	ErrClosed     error = unix.EPIPE
)

// ErrMaxFwFaces indicates the forwarder cannot accept more faces.
var ErrMaxFwFaces = errors.New("too many FwFaces")
