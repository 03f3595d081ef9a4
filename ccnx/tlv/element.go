// Package tlv implements the CCNx type-length-value encoding.
//
// Every element has a 2-octet TLV-TYPE and a 2-octet TLV-LENGTH, both in network byte order.
package tlv

import (
	"encoding/binary"
	"math"
)

// HeaderSize is the size of TLV-TYPE plus TLV-LENGTH.
const HeaderSize = 4

// MaxLength is the maximum TLV-LENGTH.
const MaxLength = math.MaxUint16

// Element represents a TLV element.
type Element struct {
	// Type is the TLV-TYPE.
	Type uint16
	// Value is the TLV-VALUE.
	Value []byte
}

// MakeElement constructs Element from TLV-TYPE and TLV-VALUE.
func MakeElement(typ uint16, value []byte) (element Element) {
	element.Type = typ
	element.Value = value
	return element
}

// Size returns encoded size.
func (element Element) Size() int {
	return HeaderSize + len(element.Value)
}

// Length returns TLV-LENGTH.
func (element Element) Length() int {
	return len(element.Value)
}

// Field implements Fielder interface.
func (element Element) Field() Field {
	return TLVBytes(element.Type, element.Value)
}

// UnmarshalTLV implements Unmarshaler interface.
func (element *Element) UnmarshalTLV(typ uint16, value []byte) error {
	element.Type = typ
	element.Value = value
	return nil
}

func decodeHeader(wire []byte) (typ uint16, length int, e error) {
	if len(wire) < HeaderSize {
		return 0, 0, ErrIncomplete
	}
	typ = binary.BigEndian.Uint16(wire)
	length = int(binary.BigEndian.Uint16(wire[2:]))
	if len(wire) < HeaderSize+length {
		return 0, 0, ErrIncomplete
	}
	return typ, length, nil
}
