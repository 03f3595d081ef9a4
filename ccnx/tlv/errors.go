package tlv

import (
	"errors"
	"fmt"
)

// Simple error conditions.
var (
	ErrIncomplete = errors.New("incomplete input")
	ErrTail       = errors.New("junk after end of TLV")
	ErrType       = errors.New("TLV-TYPE out of range")
	ErrLength     = errors.New("TLV-LENGTH exceeds 65535")
	ErrRange      = errors.New("number out of range")
	ErrErrorField = errors.New("error in encoded field")
)

// ErrTypeExpect returns an error that indicates TLV-TYPE is not the expected value.
func ErrTypeExpect(expect uint16) error {
	return fmt.Errorf("TLV-TYPE is not 0x%04X", expect)
}
