package ccnx

import (
	"fmt"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// Interest represents an Interest message.
type Interest struct {
	Name             Name
	KeyIDRestriction []byte
	Payload          []byte
}

// NewInterest creates an Interest.
func NewInterest(name Name, payload []byte) *Interest {
	return &Interest{
		Name:    name,
		Payload: payload,
	}
}

// ToMessage wraps this Interest as a Message.
func (interest *Interest) ToMessage() *Message {
	return &Message{Interest: interest}
}

func (interest Interest) String() string {
	return fmt.Sprintf("I %s", interest.Name)
}

// Field implements tlv.Fielder interface.
func (interest Interest) Field() tlv.Field {
	fields := []tlv.Field{interest.Name.Field()}
	if len(interest.KeyIDRestriction) > 0 {
		fields = append(fields, tlv.TLVBytes(an.TtKeyIDRestriction, interest.KeyIDRestriction))
	}
	if len(interest.Payload) > 0 {
		fields = append(fields, tlv.TLVBytes(an.TtPayload, interest.Payload))
	}
	return tlv.TLV(an.TtInterest, fields...)
}

// UnmarshalBinary decodes TLV-VALUE of Interest message.
func (interest *Interest) UnmarshalBinary(wire []byte) error {
	*interest = Interest{}
	d := tlv.DecodingBuffer(wire)
	for _, de := range d.Elements() {
		switch de.Type {
		case an.TtName:
			if e := de.UnmarshalValue(&interest.Name); e != nil {
				return e
			}
		case an.TtKeyIDRestriction:
			interest.KeyIDRestriction = de.Value
		case an.TtPayload:
			interest.Payload = de.Value
		}
	}
	return d.ErrUnlessEOF()
}
