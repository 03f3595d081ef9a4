package tlv

import (
	"encoding/binary"
)

// NNI is a non-negative integer.
// It is encoded in network byte order with the minimal number of octets, at least one.
type NNI uint64

// Size returns the encoded size.
func (n NNI) Size() int {
	size := 1
	for v := uint64(n) >> 8; v > 0; v >>= 8 {
		size++
	}
	return size
}

// Encode appends this number to a buffer.
func (n NNI) Encode(b []byte) []byte {
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], uint64(n))
	return append(b, full[8-n.Size():]...)
}

// Field implements Fielder interface.
func (n NNI) Field() Field {
	return Field{typ: fieldTypeNNI, integer: uint64(n)}
}

// MarshalBinary encodes this number.
func (n NNI) MarshalBinary() (value []byte, e error) {
	return n.Encode(nil), nil
}

// UnmarshalBinary decodes this number.
func (n *NNI) UnmarshalBinary(wire []byte) error {
	if len(wire) == 0 || len(wire) > 8 {
		return ErrRange
	}
	var v uint64
	for _, b := range wire {
		v = v<<8 | uint64(b)
	}
	*n = NNI(v)
	return nil
}
