package ccnx

import (
	"errors"
)

// Simple error conditions.
var (
	ErrSegmentType   = errors.New("NameSegment TLV-TYPE out of range")
	ErrFixedHeader   = errors.New("bad fixed header")
	ErrPacketType    = errors.New("unknown packet type")
	ErrNoMessageBody = errors.New("message has no body")
	ErrControl       = errors.New("bad control message")
	ErrNoSignature   = errors.New("ContentObject is not signed")
)
