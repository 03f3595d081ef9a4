// Package ccnx implements CCNx names and messages.
package ccnx

import (
	"encoding/binary"
	"fmt"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// L3Message represents a message that can be wrapped as Message.
type L3Message interface {
	ToMessage() *Message
}

// Message represents a CCNx message.
// Exactly one of Interest, ContentObject, Control should be set.
type Message struct {
	Interest      *Interest
	ContentObject *ContentObject
	Control       *Control

	// HopLimit is the fixed header hop limit.
	// Zero means an.DefaultHopLimit when encoding.
	HopLimit uint8
}

// IsInterest determines whether this is an Interest.
func (msg *Message) IsInterest() bool {
	return msg != nil && msg.Interest != nil
}

// IsContentObject determines whether this is a ContentObject.
func (msg *Message) IsContentObject() bool {
	return msg != nil && msg.ContentObject != nil
}

// IsControl determines whether this is a control message.
func (msg *Message) IsControl() bool {
	return msg != nil && msg.Control != nil
}

// Name returns the message name, or nil for control messages.
func (msg *Message) Name() Name {
	switch {
	case msg.IsInterest():
		return msg.Interest.Name
	case msg.IsContentObject():
		return msg.ContentObject.Name
	}
	return nil
}

func (msg *Message) String() string {
	switch {
	case msg.IsInterest():
		return msg.Interest.String()
	case msg.IsContentObject():
		return msg.ContentObject.String()
	case msg.IsControl():
		return msg.Control.String()
	}
	return "(empty)"
}

func (msg *Message) packetType() (pt uint8, body tlv.Fielder, e error) {
	switch {
	case msg.IsInterest():
		return an.PtInterest, msg.Interest, nil
	case msg.IsContentObject():
		return an.PtContentObject, msg.ContentObject, nil
	case msg.IsControl():
		return an.PtControl, msg.Control, nil
	}
	return 0, nil, ErrNoMessageBody
}

// MarshalBinary encodes this message, including the fixed header.
func (msg *Message) MarshalBinary() (wire []byte, e error) {
	pt, body, e := msg.packetType()
	if e != nil {
		return nil, e
	}

	hopLimit := msg.HopLimit
	if hopLimit == 0 {
		hopLimit = an.DefaultHopLimit
	}

	wire = make([]byte, an.FixedHeaderLength, 256)
	if wire, e = body.Field().Encode(wire); e != nil {
		return nil, e
	}
	if len(wire) > tlv.MaxLength {
		return nil, tlv.ErrLength
	}

	wire[0] = an.FixedHeaderVersion
	wire[1] = pt
	binary.BigEndian.PutUint16(wire[2:], uint16(len(wire)))
	wire[4] = hopLimit
	wire[7] = an.FixedHeaderLength
	return wire, nil
}

// PacketLength reads the total packet length from a fixed header.
// It is used for framing messages over stream sockets.
func PacketLength(header []byte) (length int, e error) {
	if len(header) < an.FixedHeaderLength {
		return 0, tlv.ErrIncomplete
	}
	if header[0] != an.FixedHeaderVersion {
		return 0, fmt.Errorf("%w: version %d", ErrFixedHeader, header[0])
	}
	length = int(binary.BigEndian.Uint16(header[2:]))
	if length < int(header[7]) || int(header[7]) < an.FixedHeaderLength {
		return 0, fmt.Errorf("%w: length %d header %d", ErrFixedHeader, length, header[7])
	}
	return length, nil
}

// UnmarshalBinary decodes a message, including the fixed header.
func (msg *Message) UnmarshalBinary(wire []byte) error {
	*msg = Message{}
	length, e := PacketLength(wire)
	if e != nil {
		return e
	}
	if len(wire) < length {
		return tlv.ErrIncomplete
	}
	if len(wire) > length {
		return tlv.ErrTail
	}
	msg.HopLimit = wire[4]

	d := tlv.DecodingBuffer(wire[wire[7]:])
	de, e := d.Element()
	if e != nil {
		return e
	}

	switch pt := wire[1]; pt {
	case an.PtInterest:
		if de.Type != an.TtInterest {
			return tlv.ErrTypeExpect(an.TtInterest)
		}
		msg.Interest = &Interest{}
		return msg.Interest.UnmarshalBinary(de.Value)
	case an.PtContentObject:
		if de.Type != an.TtContentObject {
			return tlv.ErrTypeExpect(an.TtContentObject)
		}
		co := &ContentObject{}
		if e := co.UnmarshalBinary(de.Value); e != nil {
			return e
		}
		for _, de := range d.Elements() {
			switch de.Type {
			case an.TtValidationAlg:
				if e := co.unmarshalValidationAlg(de.Value); e != nil {
					return e
				}
			case an.TtValidationPayload:
				co.Signature = de.Value
			}
		}
		if e := d.ErrUnlessEOF(); e != nil {
			return e
		}
		msg.ContentObject = co
		return nil
	case an.PtControl:
		if de.Type != an.TtControl {
			return tlv.ErrTypeExpect(an.TtControl)
		}
		msg.Control = &Control{}
		return msg.Control.UnmarshalJSON(de.Value)
	default:
		return fmt.Errorf("%w: 0x%02X", ErrPacketType, pt)
	}
}
