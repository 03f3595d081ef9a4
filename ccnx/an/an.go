// Package an contains CCNx assigned numbers.
package an

// Fixed header fields.
const (
	FixedHeaderVersion = 1
	FixedHeaderLength  = 8
	DefaultHopLimit    = 255
)

// PacketType values in the fixed header.
const (
	PtInterest       = 0x00
	PtContentObject  = 0x01
	PtInterestReturn = 0x02
	PtControl        = 0xA4
)

// Top-level message TLV-TYPE assigned numbers.
const (
	TtInterest          = 0x0001
	TtContentObject     = 0x0002
	TtValidationAlg     = 0x0003
	TtValidationPayload = 0x0004
	TtControl           = 0xBEEF
)

// Message field TLV-TYPE assigned numbers.
const (
	TtName               = 0x0000
	TtPayload            = 0x0001
	TtKeyIDRestriction   = 0x0002
	TtObjHashRestriction = 0x0003
	TtPayloadType        = 0x0005
	TtExpiryTime         = 0x0006
	TtEndChunkNumber     = 0x0019
)

// Validation TLV-TYPE assigned numbers.
const (
	TtKeyID = 0x0009
)

// Name segment TLV-TYPE assigned numbers.
const (
	TtNameSegment = 0x0001
	TtIPID        = 0x0002
	TtChunk       = 0x0010
	TtVersion     = 0x0013
	TtAppMin      = 0x1000
	TtAppMax      = 0x1FFF
)

// PayloadType values.
const (
	PayloadData = 0
	PayloadKey  = 1
	PayloadLink = 2
)
