package l3

import (
	"strconv"
	"time"
)

// Timeout is a per-call timeout of a blocking operation, in microseconds.
type Timeout int64

// Special Timeout values.
const (
	// Never waits indefinitely.
	Never Timeout = -1
	// Immediate does not wait.
	Immediate Timeout = 0
)

// Microseconds creates a Timeout of n microseconds.
func Microseconds(n uint64) Timeout {
	return Timeout(n)
}

// FromDuration creates a Timeout from time.Duration.
// Negative duration means Never.
func FromDuration(d time.Duration) Timeout {
	if d < 0 {
		return Never
	}
	return Timeout(d / time.Microsecond)
}

// IsNever determines whether the timeout waits indefinitely.
func (t Timeout) IsNever() bool {
	return t < 0
}

// Duration converts to time.Duration.
// Never converts to a negative duration.
func (t Timeout) Duration() time.Duration {
	if t.IsNever() {
		return -1
	}
	return time.Duration(t) * time.Microsecond
}

func (t Timeout) String() string {
	switch {
	case t.IsNever():
		return "never"
	case t == Immediate:
		return "immediate"
	}
	return strconv.FormatInt(int64(t), 10) + "us"
}

// wait returns a channel that fires when the timeout expires, or nil if it never expires.
func (t Timeout) wait() (expire <-chan time.Time, stop func()) {
	if t.IsNever() {
		return nil, func() {}
	}
	timer := time.NewTimer(t.Duration())
	return timer.C, func() { timer.Stop() }
}
