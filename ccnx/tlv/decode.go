package tlv

// Unmarshaler is the interface implemented by an object that can decode a TLV element representation of itself.
type Unmarshaler interface {
	UnmarshalTLV(typ uint16, value []byte) error
}

// DecodingElement represents a decoded TLV element.
type DecodingElement struct {
	Element
	// Wire is the complete encoding of this element.
	Wire []byte
	// After is the input after this element.
	After []byte
}

// Unmarshal unmarshals this element into an Unmarshaler.
func (de DecodingElement) Unmarshal(u Unmarshaler) error {
	return u.UnmarshalTLV(de.Type, de.Value)
}

// UnmarshalValue unmarshals TLV-VALUE of this element into an Unmarshaler with BinaryUnmarshaler interface.
func (de DecodingElement) UnmarshalValue(u interface{ UnmarshalBinary([]byte) error }) error {
	return u.UnmarshalBinary(de.Value)
}

// UnmarshalNNI decodes TLV-VALUE as NNI, checking its range.
func (de DecodingElement) UnmarshalNNI(max uint64, err *error, rangeErr error) (v uint64) {
	var n NNI
	if e := n.UnmarshalBinary(de.Value); e != nil {
		*err = e
		return 0
	}
	if v = uint64(n); v > max {
		*err = rangeErr
		return 0
	}
	*err = nil
	return v
}

// DecodingBuffer recognizes TLV elements.
type DecodingBuffer []byte

// Rest returns unconsumed input.
func (d DecodingBuffer) Rest() []byte {
	return []byte(d)
}

// EOF returns true if decoder is at end of input.
func (d DecodingBuffer) EOF() bool {
	return len(d) == 0
}

// ErrUnlessEOF returns an error if there is unconsumed input.
func (d DecodingBuffer) ErrUnlessEOF() error {
	if d.EOF() {
		return nil
	}
	return ErrTail
}

// Element recognizes the next element.
func (d *DecodingBuffer) Element() (de DecodingElement, e error) {
	wire := []byte(*d)
	typ, length, e := decodeHeader(wire)
	if e != nil {
		return de, e
	}
	size := HeaderSize + length
	de.Type = typ
	de.Value = wire[HeaderSize:size]
	de.Wire = wire[:size]
	de.After = wire[size:]
	*d = DecodingBuffer(de.After)
	return de, nil
}

// Elements recognizes elements until an error occurs or the end of input.
// Use ErrUnlessEOF to check whether the whole input has been consumed.
func (d *DecodingBuffer) Elements() (list []DecodingElement) {
	for !d.EOF() {
		de, e := d.Element()
		if e != nil {
			break
		}
		list = append(list, de)
	}
	return list
}

// Decode unmarshals a buffer that contains exactly one TLV element.
func Decode(wire []byte, u Unmarshaler) error {
	d := DecodingBuffer(wire)
	de, e := d.Element()
	if e != nil {
		return e
	}
	if e = de.Unmarshal(u); e != nil {
		return e
	}
	return d.ErrUnlessEOF()
}
