// Package nnduration provides JSON-compatible non-negative duration types.
package nnduration

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

func parse(input string, unit time.Duration) (value uint64, e error) {
	if d, e := time.ParseDuration(input); e == nil {
		if d < 0 {
			return 0, strconv.ErrRange
		}
		return uint64(d / unit), nil
	}
	return strconv.ParseUint(input, 10, 64)
}

func unmarshalJSON(p []byte, unit time.Duration) (uint64, error) {
	return parse(strings.Trim(string(p), `"`), unit)
}

// Milliseconds is a duration in milliseconds unit.
// It can be unmarshaled from a number or a duration string.
type Milliseconds uint64

// Duration converts to time.Duration.
func (d Milliseconds) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// DurationOr converts to time.Duration, or returns dflt if d is zero.
func (d Milliseconds) DurationOr(dflt Milliseconds) time.Duration {
	if d == 0 {
		return dflt.Duration()
	}
	return d.Duration()
}

// MarshalJSON implements json.Marshaler interface.
func (d Milliseconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(d))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Milliseconds) UnmarshalJSON(p []byte) error {
	v, e := unmarshalJSON(p, time.Millisecond)
	*d = Milliseconds(v)
	return e
}

// Microseconds is a duration in microseconds unit.
// It can be unmarshaled from a number or a duration string.
type Microseconds uint64

// Duration converts to time.Duration.
func (d Microseconds) Duration() time.Duration {
	return time.Duration(d) * time.Microsecond
}

// DurationOr converts to time.Duration, or returns dflt if d is zero.
func (d Microseconds) DurationOr(dflt Microseconds) time.Duration {
	if d == 0 {
		return dflt.Duration()
	}
	return d.Duration()
}

// MarshalJSON implements json.Marshaler interface.
func (d Microseconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(d))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Microseconds) UnmarshalJSON(p []byte) error {
	v, e := unmarshalJSON(p, time.Microsecond)
	*d = Microseconds(v)
	return e
}

// ParseMicroseconds parses a number or a duration string as Microseconds.
func ParseMicroseconds(input string) (Microseconds, error) {
	v, e := parse(input, time.Microsecond)
	return Microseconds(v), e
}
