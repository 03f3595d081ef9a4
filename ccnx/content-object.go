package ccnx

import (
	"fmt"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/tlv"
)

// Signer signs a message.
type Signer interface {
	// KeyID returns the key identifier placed in the validation algorithm.
	KeyID() []byte

	// Sign computes a signature over the input.
	Sign(input []byte) ([]byte, error)
}

// ContentObject represents a ContentObject message.
type ContentObject struct {
	Name        Name
	PayloadType uint8
	// ExpiryTime is milliseconds since Unix epoch, or zero if absent.
	ExpiryTime uint64
	Payload    []byte

	// EndChunk is the last chunk number of a segmented object, valid if HasEndChunk is true.
	EndChunk    uint64
	HasEndChunk bool

	KeyID     []byte
	Signature []byte
}

// NewContentObject creates a ContentObject of type DATA.
func NewContentObject(name Name, payload []byte) *ContentObject {
	return &ContentObject{
		Name:        name,
		PayloadType: an.PayloadData,
		Payload:     payload,
	}
}

// ToMessage wraps this ContentObject as a Message.
func (co *ContentObject) ToMessage() *Message {
	return &Message{ContentObject: co}
}

func (co ContentObject) String() string {
	return fmt.Sprintf("C %s", co.Name)
}

// IsSigned determines whether this ContentObject carries a signature.
func (co ContentObject) IsSigned() bool {
	return len(co.Signature) > 0
}

func (co ContentObject) bodyField() tlv.Field {
	fields := []tlv.Field{co.Name.Field()}
	if co.PayloadType != an.PayloadData {
		fields = append(fields, tlv.TLVNNI(an.TtPayloadType, uint64(co.PayloadType)))
	}
	if co.ExpiryTime != 0 {
		fields = append(fields, tlv.TLVNNI(an.TtExpiryTime, co.ExpiryTime))
	}
	if co.HasEndChunk {
		fields = append(fields, tlv.TLVNNI(an.TtEndChunkNumber, co.EndChunk))
	}
	if len(co.Payload) > 0 {
		fields = append(fields, tlv.TLVBytes(an.TtPayload, co.Payload))
	}
	return tlv.TLV(an.TtContentObject, fields...)
}

func (co ContentObject) signedPortion() tlv.Field {
	if len(co.KeyID) == 0 {
		return co.bodyField()
	}
	return tlv.FieldFunc(func(b []byte) ([]byte, error) {
		return tlv.Encode(tlv.Bytes(b), co.bodyField(), tlv.TLV(an.TtValidationAlg, tlv.TLVBytes(an.TtKeyID, co.KeyID)))
	})
}

// Sign computes the signature with the given signer.
// It assigns KeyID and Signature fields.
func (co *ContentObject) Sign(signer Signer) error {
	co.KeyID = signer.KeyID()
	input, e := tlv.Encode(co.signedPortion())
	if e != nil {
		return e
	}
	sig, e := signer.Sign(input)
	if e != nil {
		return e
	}
	co.Signature = sig
	return nil
}

// VerifyWith verifies the signature with a low-level verification function.
func (co ContentObject) VerifyWith(verify func(input, sig []byte) error) error {
	if !co.IsSigned() {
		return ErrNoSignature
	}
	input, e := tlv.Encode(co.signedPortion())
	if e != nil {
		return e
	}
	return verify(input, co.Signature)
}

// Field implements tlv.Fielder interface.
// It includes validation fields after the message TLV.
func (co ContentObject) Field() tlv.Field {
	if !co.IsSigned() {
		return co.signedPortion()
	}
	return tlv.FieldFunc(func(b []byte) ([]byte, error) {
		return tlv.Encode(tlv.Bytes(b), co.signedPortion(), tlv.TLVBytes(an.TtValidationPayload, co.Signature))
	})
}

// UnmarshalBinary decodes TLV-VALUE of ContentObject message.
func (co *ContentObject) UnmarshalBinary(wire []byte) error {
	*co = ContentObject{}
	d := tlv.DecodingBuffer(wire)
	for _, de := range d.Elements() {
		switch de.Type {
		case an.TtName:
			if e := de.UnmarshalValue(&co.Name); e != nil {
				return e
			}
		case an.TtPayloadType:
			var e error
			co.PayloadType = uint8(de.UnmarshalNNI(0xFF, &e, tlv.ErrRange))
			if e != nil {
				return e
			}
		case an.TtExpiryTime:
			var e error
			if co.ExpiryTime = de.UnmarshalNNI(^uint64(0), &e, tlv.ErrRange); e != nil {
				return e
			}
		case an.TtEndChunkNumber:
			var e error
			if co.EndChunk = de.UnmarshalNNI(^uint64(0), &e, tlv.ErrRange); e != nil {
				return e
			}
			co.HasEndChunk = true
		case an.TtPayload:
			co.Payload = de.Value
		}
	}
	return d.ErrUnlessEOF()
}

func (co *ContentObject) unmarshalValidationAlg(wire []byte) error {
	d := tlv.DecodingBuffer(wire)
	for _, de := range d.Elements() {
		if de.Type == an.TtKeyID {
			co.KeyID = de.Value
		}
	}
	return d.ErrUnlessEOF()
}
